package exporter

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rostercli/internal/dataprocessing"
	apperrors "rostercli/internal/errors"
	"rostercli/internal/infrastructure"
	"rostercli/internal/validation"
	"rostercli/pkg/contracts/domain"
)

// Export formats, used for metrics.
const (
	FormatCSV      = "csv"
	FormatWorkbook = "xlsx"
)

// RosterExporter writes the roster in the shape of the marks source, with
// the identity columns in front.
type RosterExporter struct {
	writer    *CSVWriter
	subjects  []string
	validator *validation.FileValidator
	tracer    trace.Tracer
	metrics   *infrastructure.RosterMetrics
	logger    *slog.Logger
}

// RosterOptions configures a RosterExporter
type RosterOptions struct {
	CSV      CSVOptions
	Subjects []string
	Tracer   trace.Tracer
	Metrics  *infrastructure.RosterMetrics
}

// NewRosterExporter creates a roster exporter. An empty subject list means
// the default subject set.
func NewRosterExporter(opts RosterOptions, logger *slog.Logger) *RosterExporter {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Subjects) == 0 {
		opts.Subjects = domain.DefaultSubjects
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(infrastructure.TracerName)
	}
	logger = infrastructure.WithComponent(logger, "exporter")
	return &RosterExporter{
		writer:    NewCSVWriter(opts.CSV, logger),
		subjects:  append([]string(nil), opts.Subjects...),
		validator: validation.NewFileValidator(logger),
		tracer:    opts.Tracer,
		metrics:   opts.Metrics,
		logger:    logger,
	}
}

// Header returns the export header row
func (e *RosterExporter) Header() []string {
	header := []string{dataprocessing.ColStudentID, dataprocessing.ColName, dataprocessing.ColClass}
	return append(header, e.subjects...)
}

// Rows converts students into export rows. Every student must have marks for
// every subject; the first gap is reported as a MissingSubjectError.
func (e *RosterExporter) Rows(students []*domain.Student) ([][]string, error) {
	rows := make([][]string, 0, len(students))
	for _, s := range students {
		row := []string{s.ID, s.Name, s.Class}
		for _, name := range e.subjects {
			subject, ok := s.Subject(name)
			if !ok || len(subject.Marks) == 0 {
				return nil, &apperrors.MissingSubjectError{StudentID: s.ID, Subject: name}
			}
			row = append(row, dataprocessing.FormatMarkList(subject.Marks))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Export writes students to path. Nothing is written when any student is
// missing a subject.
func (e *RosterExporter) Export(ctx context.Context, students []*domain.Student, path string) (err error) {
	ctx, span := e.tracer.Start(ctx, "export.csv", trace.WithAttributes(
		attribute.String("path", path),
		attribute.Int("students", len(students)),
	))
	defer func() {
		e.metrics.RecordExport(ctx, FormatCSV, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	rows, err := e.Rows(students)
	if err != nil {
		return err
	}
	return e.writeRows(ctx, rows, path)
}

func (e *RosterExporter) writeRows(ctx context.Context, rows [][]string, path string) error {
	if err := e.validator.ValidateOutputPath(path); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.writer.WriteFile(path, e.Header(), rows); err != nil {
		return apperrors.NewAppError(apperrors.ErrTypeExport, "write "+path, err)
	}

	e.logger.InfoContext(ctx, "Roster exported",
		slog.String("path", path),
		slog.Int("students", len(rows)))
	return nil
}
