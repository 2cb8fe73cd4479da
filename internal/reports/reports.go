package reports

import (
	"cmp"
	"context"
	"iter"
	"log/slog"
	"slices"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"rostercli/internal/config"
	"rostercli/internal/dataprocessing"
	apperrors "rostercli/internal/errors"
	"rostercli/internal/infrastructure"
	"rostercli/pkg/contracts/domain"
)

// Report kinds, used for metrics and one-shot commands.
const (
	KindRanked       = "ranked"
	KindAlphabetical = "alpha"
	KindProgress     = "progress"
	KindStudent      = "student"
)

// Entry is one row of the ranked report.
type Entry struct {
	Rank    int
	Student *domain.Student
	dataprocessing.Summary
}

// SubjectProgress is the assignment history of one subject.
type SubjectProgress struct {
	Name  string
	Steps iter.Seq[domain.AssignmentProgress]
}

// ProgressBlock is the progress report of one student.
type ProgressBlock struct {
	Student  *domain.Student
	Total    int
	Progress domain.Metric
	Weighted domain.Metric
	Grade    string
	Subjects []SubjectProgress
}

// Options configures a Generator.
type Options struct {
	// Collation is a BCP 47 tag used for the alphabetical listing. Empty or
	// "binary" compares names byte by byte.
	Collation string
	Tracer    trace.Tracer
	Metrics   *infrastructure.RosterMetrics
}

// Generator produces reports for one weight table.
type Generator struct {
	weights  domain.WeightTable
	collator *collate.Collator
	tracer   trace.Tracer
	metrics  *infrastructure.RosterMetrics
	logger   *slog.Logger
}

// NewGenerator creates a report generator. An unparsable collation tag is a
// configuration error.
func NewGenerator(weights domain.WeightTable, opts Options, logger *slog.Logger) (*Generator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(infrastructure.TracerName)
	}

	g := &Generator{
		weights: weights.Clone(),
		tracer:  opts.Tracer,
		metrics: opts.Metrics,
		logger:  infrastructure.WithComponent(logger, "reports"),
	}

	if opts.Collation != "" && !strings.EqualFold(opts.Collation, config.CollationBinary) {
		tag, err := language.Parse(opts.Collation)
		if err != nil {
			return nil, apperrors.NewConfigError("invalid collation "+opts.Collation, err)
		}
		g.collator = collate.New(tag)
	}
	return g, nil
}

// Ranked orders students by weighted average, highest first. Students without
// marks come last. Ties, including among students without marks, are broken
// by id ascending.
func (g *Generator) Ranked(ctx context.Context, students []*domain.Student) []Entry {
	_, span := g.tracer.Start(ctx, "reports.ranked", trace.WithAttributes(attribute.Int("students", len(students))))
	defer span.End()
	g.metrics.RecordReport(ctx, KindRanked)

	entries := make([]Entry, len(students))
	for i, s := range students {
		entries[i] = Entry{Student: s, Summary: dataprocessing.Summarize(s, g.weights)}
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		if a.Weighted.Valid != b.Weighted.Valid {
			if a.Weighted.Valid {
				return -1
			}
			return 1
		}
		if a.Weighted.Valid {
			if c := cmp.Compare(b.Weighted.Value, a.Weighted.Value); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Alphabetical orders students by name. Equal names keep id order so the
// listing is the same on every run.
func (g *Generator) Alphabetical(ctx context.Context, students []*domain.Student) []*domain.Student {
	_, span := g.tracer.Start(ctx, "reports.alphabetical")
	defer span.End()
	g.metrics.RecordReport(ctx, KindAlphabetical)

	out := slices.Clone(students)
	compareNames := strings.Compare
	if g.collator != nil {
		compareNames = g.collator.CompareString
	}

	slices.SortFunc(out, func(a, b *domain.Student) int {
		if c := compareNames(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Progress yields one block per student, in the given order. Blocks and
// their assignment steps are computed as they are consumed.
func (g *Generator) Progress(ctx context.Context, students []*domain.Student) iter.Seq[ProgressBlock] {
	g.metrics.RecordReport(ctx, KindProgress)
	students = slices.Clone(students)

	return func(yield func(ProgressBlock) bool) {
		for _, s := range students {
			if !yield(g.progressBlock(s)) {
				return
			}
		}
	}
}

func (g *Generator) progressBlock(s *domain.Student) ProgressBlock {
	weighted := dataprocessing.WeightedAverage(s, g.weights)
	block := ProgressBlock{
		Student:  s,
		Total:    dataprocessing.TotalMarks(s),
		Progress: dataprocessing.ProgressPercentage(s),
		Weighted: weighted,
		Grade:    dataprocessing.GradeOf(weighted),
	}
	for _, subject := range s.Subjects() {
		block.Subjects = append(block.Subjects, SubjectProgress{
			Name:  subject.Name,
			Steps: dataprocessing.PerAssignmentProgress(subject),
		})
	}
	return block
}

// Card summarizes a single student.
func (g *Generator) Card(ctx context.Context, s *domain.Student) dataprocessing.Summary {
	g.metrics.RecordReport(ctx, KindStudent)
	return dataprocessing.Summarize(s, g.weights)
}
