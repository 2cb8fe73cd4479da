package exporter

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"rostercli/internal/reports"
	"rostercli/pkg/contracts/domain"
)

// Destinations lists the files ExportAll writes. An empty Workbook skips the
// workbook export.
type Destinations struct {
	CSV      string
	Workbook string
}

// ExportAll writes the delimited export and, when requested, the workbook
// export concurrently. Both are produced from the same snapshot of
// students; each writer gets its own copy. When any student is missing a
// subject, or either destination is unusable, nothing is written. A failed
// writer cancels the other before it commits its file.
func ExportAll(ctx context.Context, roster *RosterExporter, gen *reports.Generator, students []*domain.Student, dest Destinations) error {
	rows, err := roster.Rows(students)
	if err != nil {
		roster.metrics.RecordExport(ctx, FormatCSV, err)
		return err
	}
	if err := roster.validator.ValidateOutputPath(dest.CSV); err != nil {
		return err
	}
	if dest.Workbook != "" {
		if err := roster.validator.ValidateOutputPath(dest.Workbook); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return roster.Export(ctx, snapshot(students), dest.CSV)
	})

	if dest.Workbook != "" {
		ranked := gen.Ranked(ctx, snapshot(students))
		g.Go(func() error {
			return NewWorkbookExporter(roster).Export(ctx, rows, ranked, dest.Workbook)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	roster.logger.InfoContext(ctx, "Export finished",
		slog.String("csv", dest.CSV),
		slog.String("workbook", dest.Workbook))
	return nil
}

func snapshot(students []*domain.Student) []*domain.Student {
	out := make([]*domain.Student, len(students))
	for i, s := range students {
		out[i] = s.Clone()
	}
	return out
}
