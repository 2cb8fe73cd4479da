package exporter

import (
	"math"

	"rostercli/pkg/contracts/domain"
)

// metricCell converts a metric into a workbook cell value: a number rounded
// to 2 decimal places, or the "n/a" text when undefined.
func metricCell(m domain.Metric) interface{} {
	if !m.Valid {
		return m.String()
	}
	return math.Round(m.Value*100) / 100
}
