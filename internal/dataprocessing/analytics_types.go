package dataprocessing

import (
	"rostercli/pkg/contracts/domain"
)

// Summary holds the derived figures of one student
type Summary struct {
	ID    string
	Name  string
	Class string

	Simple   domain.Metric
	Weighted domain.Metric
	Total    int
	Progress domain.Metric
	// Grade is the letter of the weighted average
	Grade string
}
