package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "rostercli/internal/errors"
	"rostercli/internal/infrastructure"
	"rostercli/internal/store"
	"rostercli/internal/validation"
	"rostercli/pkg/contracts/domain"
)

// Sources names the files of one load. Weights may be empty.
type Sources struct {
	Identity string
	Marks    string
	Weights  string
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	Parser *Parser
	// RejectUnknown makes a marks row for an id missing from the identity
	// source fatal. Otherwise a minimal student is created.
	RejectUnknown bool
	Tracer        trace.Tracer
	Metrics       *infrastructure.RosterMetrics
}

// Result is the outcome of a successful load.
type Result struct {
	Store   *store.Store
	Weights domain.WeightTable
	// Created lists ids that appeared only in the marks source.
	Created []string
	// WeightsErr is set when the weights source was unusable and every
	// subject fell back to the default weight.
	WeightsErr error
}

// Loader populates a sealed Store from the identity, marks and weights
// sources. A load either succeeds completely or returns no store.
type Loader struct {
	parser        *Parser
	rejectUnknown bool
	validator     *validation.FileValidator
	tracer        trace.Tracer
	metrics       *infrastructure.RosterMetrics
	logger        *slog.Logger
}

// NewLoader creates a loader.
func NewLoader(cfg LoaderConfig, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Parser == nil {
		cfg.Parser = NewParser(ParserConfig{}, logger)
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(infrastructure.TracerName)
	}
	return &Loader{
		parser:        cfg.Parser,
		rejectUnknown: cfg.RejectUnknown,
		validator:     validation.NewFileValidator(logger),
		tracer:        cfg.Tracer,
		metrics:       cfg.Metrics,
		logger:        infrastructure.WithComponent(logger, "loader"),
	}
}

// Load parses every source and returns the populated, sealed store.
func (l *Loader) Load(ctx context.Context, src Sources) (res *Result, err error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	ctx, span := l.tracer.Start(ctx, "roster.load", trace.WithAttributes(
		attribute.String("identity", src.Identity),
		attribute.String("marks", src.Marks),
		attribute.String("weights", src.Weights),
	))
	start := time.Now()
	defer func() {
		students := 0
		if res != nil {
			students = res.Store.Len()
		}
		l.metrics.RecordLoad(ctx, time.Since(start), students, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	l.logger.InfoContext(ctx, "Loading roster",
		slog.String("identity", src.Identity),
		slog.String("marks", src.Marks),
		slog.String("weights", src.Weights))

	for _, path := range []string{src.Identity, src.Marks} {
		if err := l.validator.ValidateSourceFile(path); err != nil {
			return nil, err
		}
	}

	identities, err := l.parser.ParseIdentityFile(src.Identity)
	if err != nil {
		return nil, fmt.Errorf("identity source: %w", err)
	}

	marks, err := l.parser.ParseMarksFile(src.Marks)
	if err != nil {
		return nil, fmt.Errorf("marks source: %w", err)
	}

	weights, weightsErr := l.loadWeights(ctx, src.Weights)

	st := store.New()
	for _, rec := range identities {
		if err := st.UpsertIdentity(rec.ID, rec.Name, rec.Class); err != nil {
			return nil, err
		}
	}

	var created []string
	for _, rec := range marks {
		if !st.Contains(rec.ID) {
			if l.rejectUnknown {
				return nil, &apperrors.UnknownStudentError{StudentID: rec.ID, Source: src.Marks, Line: rec.Line}
			}
			l.logger.WarnContext(ctx, "Marks for unknown student, creating it",
				slog.String("student_id", rec.ID),
				slog.String("source", src.Marks),
				slog.Int("line", rec.Line))
			if err := st.UpsertIdentity(rec.ID, "", ""); err != nil {
				return nil, err
			}
			created = append(created, rec.ID)
		}
		for _, subject := range rec.Subjects {
			if err := st.AttachSubject(rec.ID, subject.Name, subject.Marks); err != nil {
				return nil, err
			}
		}
	}
	st.Seal()

	l.logger.InfoContext(ctx, "Roster loaded",
		slog.Int("students", st.Len()),
		slog.Int("created", len(created)),
		slog.Int("weights", len(weights)),
		slog.Duration("duration", time.Since(start)))

	return &Result{Store: st, Weights: weights, Created: created, WeightsErr: weightsErr}, nil
}

// loadWeights never fails the load. Any problem with the weights source is
// logged and every subject keeps DefaultWeight.
func (l *Loader) loadWeights(ctx context.Context, path string) (domain.WeightTable, error) {
	if path == "" {
		return domain.WeightTable{}, nil
	}

	err := l.validator.ValidateSourceFile(path)
	var weights domain.WeightTable
	if err == nil {
		weights, err = l.parser.ParseWeightsFile(ctx, path)
	}
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", apperrors.ErrMissingWeightsSource, path, err)
		l.logger.WarnContext(ctx, "Weights source unusable, using default weights",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return domain.WeightTable{}, err
	}
	return weights, nil
}
