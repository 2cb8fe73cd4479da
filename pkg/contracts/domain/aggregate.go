package domain

import "fmt"

// DefaultWeight applies to any subject without an explicit weight.
const DefaultWeight = 1.0

// WeightTable maps subject names to positive weights.
type WeightTable map[string]float64

// Weight returns the weight for subject, or DefaultWeight when the subject is
// not in the table.
func (w WeightTable) Weight(subject string) float64 {
	if v, ok := w[subject]; ok {
		return v
	}
	return DefaultWeight
}

// Clone returns a copy of the table. A nil table clones to an empty one.
func (w WeightTable) Clone() WeightTable {
	out := make(WeightTable, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}

// Metric is a derived value that may be undefined. A student with no marks
// has no average, which is different from an average of zero.
type Metric struct {
	Value float64
	Valid bool
}

// NoData is the sentinel for an undefined metric.
var NoData = Metric{}

// Of wraps a computed value as a defined Metric.
func Of(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// String renders the value with two decimals, or "n/a" for NoData.
func (a Metric) String() string {
	if !a.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", a.Value)
}

// AssignmentProgress is one step of a subject's mark history.
// Index is 1-based. Delta is NoData for the first assignment and whenever the
// previous mark is zero.
type AssignmentProgress struct {
	Index int
	Mark  int
	Delta Metric
}
