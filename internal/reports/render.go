package reports

import (
	"fmt"
	"io"
	"iter"
	"strings"
	"text/tabwriter"

	"rostercli/internal/dataprocessing"
	"rostercli/pkg/contracts/domain"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// WriteRanked renders the ranked report as a table.
func WriteRanked(w io.Writer, entries []Entry) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "Rank\tStudentID\tName\tClass\tWeighted\tAverage\tGrade")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Rank, e.ID, e.Name, e.Class, e.Weighted, e.Simple, e.Grade)
	}
	return tw.Flush()
}

// WriteAlphabetical renders the alphabetical listing.
func WriteAlphabetical(w io.Writer, students []*domain.Student) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "Name\tStudentID\tClass\tSubjects")
	for _, s := range students {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", s.Name, s.ID, s.Class, s.SubjectCount())
	}
	return tw.Flush()
}

// WriteProgress renders progress blocks as they are produced.
func WriteProgress(w io.Writer, blocks iter.Seq[ProgressBlock]) error {
	for block := range blocks {
		s := block.Student
		if _, err := fmt.Fprintf(w, "%s %s (%s)\n  total %d, progress %s, weighted %s, grade %s\n",
			s.ID, s.Name, s.Class, block.Total, percent(block.Progress), block.Weighted, block.Grade); err != nil {
			return err
		}
		for _, subject := range block.Subjects {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", subject.Name, formatSteps(subject.Steps)); err != nil {
				return err
			}
		}
	}
	return nil
}

func percent(m domain.Metric) string {
	if !m.Valid {
		return m.String()
	}
	return m.String() + "%"
}

func formatSteps(steps iter.Seq[domain.AssignmentProgress]) string {
	var parts []string
	for step := range steps {
		delta := "-"
		if step.Delta.Valid {
			delta = fmt.Sprintf("%+.2f%%", step.Delta.Value)
		}
		parts = append(parts, fmt.Sprintf("#%d %d (%s)", step.Index, step.Mark, delta))
	}
	if len(parts) == 0 {
		return "no marks"
	}
	return strings.Join(parts, ", ")
}

// WriteCard renders one student with every subject's marks.
func WriteCard(w io.Writer, s *domain.Student, sum dataprocessing.Summary) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Student\t%s\n", s.ID)
	fmt.Fprintf(tw, "Name\t%s\n", s.Name)
	fmt.Fprintf(tw, "Class\t%s\n", s.Class)
	for _, subject := range s.Subjects() {
		fmt.Fprintf(tw, "%s\t%s\n", subject.Name, dataprocessing.FormatMarkList(subject.Marks))
	}
	fmt.Fprintf(tw, "Average\t%s\n", sum.Simple)
	fmt.Fprintf(tw, "Weighted\t%s\n", sum.Weighted)
	fmt.Fprintf(tw, "Total\t%d\n", sum.Total)
	fmt.Fprintf(tw, "Progress\t%s\n", percent(sum.Progress))
	fmt.Fprintf(tw, "Grade\t%s\n", sum.Grade)
	return tw.Flush()
}
