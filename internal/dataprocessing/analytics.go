package dataprocessing

import (
	"fmt"
	"iter"

	apperrors "rostercli/internal/errors"
	"rostercli/pkg/contracts/domain"
)

// Grade boundaries, inclusive lower bounds.
const (
	gradeA = 90.0
	gradeB = 80.0
	gradeC = 70.0
	gradeD = 60.0
)

// maxSubjectScore is the nominal full score of one subject.
const maxSubjectScore = 100.0

// SimpleAverage is the mean of every mark across all subjects.
func SimpleAverage(s *domain.Student) domain.Metric {
	count := s.MarkCount()
	if count == 0 {
		return domain.NoData
	}
	return domain.Of(float64(TotalMarks(s)) / float64(count))
}

// WeightedAverage weights each subject by its mark count times its weight:
// sum(marks)*w over count(marks)*w, accumulated across subjects.
func WeightedAverage(s *domain.Student, weights domain.WeightTable) domain.Metric {
	var num, den float64
	for _, subject := range s.Subjects() {
		w := weights.Weight(subject.Name)
		num += float64(subject.Sum()) * w
		den += float64(len(subject.Marks)) * w
	}
	if den == 0 {
		return domain.NoData
	}
	return domain.Of(num / den)
}

// TotalMarks sums every mark of every subject.
func TotalMarks(s *domain.Student) int {
	total := 0
	for _, subject := range s.Subjects() {
		total += subject.Sum()
	}
	return total
}

// ProgressPercentage is total / (100 * subjects) * 100. The denominator does
// not depend on how many assignments each subject has. A student without
// subjects has no progress.
func ProgressPercentage(s *domain.Student) domain.Metric {
	n := s.SubjectCount()
	if n == 0 {
		return domain.NoData
	}
	return domain.Of(float64(TotalMarks(s)) / (maxSubjectScore * float64(n)) * 100)
}

// PerAssignmentProgress yields each assignment of subject with the
// percentage change from the previous mark. The first assignment, and any
// assignment following a zero mark, has no delta.
func PerAssignmentProgress(subject domain.Subject) iter.Seq[domain.AssignmentProgress] {
	marks := append([]int(nil), subject.Marks...)
	return func(yield func(domain.AssignmentProgress) bool) {
		for i, mark := range marks {
			step := domain.AssignmentProgress{Index: i + 1, Mark: mark, Delta: domain.NoData}
			if i > 0 && marks[i-1] != 0 {
				prev := float64(marks[i-1])
				step.Delta = domain.Of((float64(mark) - prev) / prev * 100)
			}
			if !yield(step) {
				return
			}
		}
	}
}

// Grade maps a 0-100 score to a letter.
func Grade(score float64) (string, error) {
	if score < 0 || score > maxSubjectScore {
		return "", fmt.Errorf("%w: %.2f", apperrors.ErrScoreOutOfRange, score)
	}
	switch {
	case score >= gradeA:
		return "A", nil
	case score >= gradeB:
		return "B", nil
	case score >= gradeC:
		return "C", nil
	case score >= gradeD:
		return "D", nil
	default:
		return "F", nil
	}
}

// GradeOf grades a metric for display: "-" for no data and "?" when the
// value is outside the gradable range.
func GradeOf(m domain.Metric) string {
	if !m.Valid {
		return "-"
	}
	g, err := Grade(m.Value)
	if err != nil {
		return "?"
	}
	return g
}

// Summarize computes every aggregate of one student.
func Summarize(s *domain.Student, weights domain.WeightTable) Summary {
	weighted := WeightedAverage(s, weights)
	return Summary{
		ID:       s.ID,
		Name:     s.Name,
		Class:    s.Class,
		Simple:   SimpleAverage(s),
		Weighted: weighted,
		Total:    TotalMarks(s),
		Progress: ProgressPercentage(s),
		Grade:    GradeOf(weighted),
	}
}
