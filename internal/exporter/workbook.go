package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "rostercli/internal/errors"
	"rostercli/internal/reports"
)

// Workbook sheet names
const (
	SheetMarks   = "Marks"
	SheetRanking = "Ranking"
)

var rankingHeader = []string{"Rank", "StudentID", "Name", "Class", "Weighted", "Average", "Total", "Grade"}

// WorkbookExporter writes the roster and its ranking to an .xlsx file
type WorkbookExporter struct {
	roster *RosterExporter
}

// NewWorkbookExporter creates a workbook exporter sharing the roster
// exporter's subjects, tracer and metrics
func NewWorkbookExporter(roster *RosterExporter) *WorkbookExporter {
	return &WorkbookExporter{roster: roster}
}

// Export writes the Marks sheet from rows and the Ranking sheet from ranked
func (w *WorkbookExporter) Export(ctx context.Context, rows [][]string, ranked []reports.Entry, path string) (err error) {
	e := w.roster
	ctx, span := e.tracer.Start(ctx, "export.xlsx", trace.WithAttributes(
		attribute.String("path", path),
		attribute.Int("students", len(rows)),
	))
	defer func() {
		e.metrics.RecordExport(ctx, FormatWorkbook, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := e.validator.ValidateOutputPath(path); err != nil {
		return err
	}

	f, err := w.build(rows, ranked)
	if err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeExport, "build workbook "+path, err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := writeAtomic(path, func(out *os.File) error {
		_, err := f.WriteTo(out)
		return err
	}); err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeExport, "write "+path, err)
	}

	e.logger.InfoContext(ctx, "Workbook exported",
		slog.String("path", path),
		slog.Int("students", len(rows)))
	return nil
}

func (w *WorkbookExporter) build(rows [][]string, ranked []reports.Entry) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetMarks); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(SheetRanking); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	marks := make([][]interface{}, 0, len(rows)+1)
	marks = append(marks, toCells(w.roster.Header()))
	for _, row := range rows {
		marks = append(marks, toCells(row))
	}

	ranking := make([][]interface{}, 0, len(ranked)+1)
	ranking = append(ranking, toCells(rankingHeader))
	for _, e := range ranked {
		ranking = append(ranking, []interface{}{
			e.Rank, e.ID, e.Name, e.Class,
			metricCell(e.Weighted), metricCell(e.Simple), e.Total, e.Grade,
		})
	}

	for sheet, data := range map[string][][]interface{}{SheetMarks: marks, SheetRanking: ranking} {
		if err := writeSheet(f, sheet, data, bold); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
