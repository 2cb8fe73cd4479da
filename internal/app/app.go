package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"rostercli/internal/config"
	"rostercli/internal/dataprocessing"
	apperrors "rostercli/internal/errors"
	"rostercli/internal/exporter"
	"rostercli/internal/files"
	"rostercli/internal/infrastructure"
	"rostercli/internal/reports"
	"rostercli/internal/store"
	"rostercli/pkg/contracts/domain"
)

const shutdownTimeout = 10 * time.Second

// Application represents the main application container
type Application struct {
	Config  *config.Config
	Paths   *config.Paths
	Logger  *slog.Logger
	OTel    *infrastructure.OTelProviders
	Store   *store.Store
	Weights domain.WeightTable
	Reports *reports.Generator
	Roster  *exporter.RosterExporter

	diagnostics *infrastructure.DiagnosticsServer
}

// Options overrides pieces of the environment, mainly for tests.
type Options struct {
	// Logger replaces the logger built from cfg.Logging.
	Logger *slog.Logger
	// TraceOut receives spans from the stdout trace exporter. Defaults to
	// os.Stderr.
	TraceOut io.Writer
}

// NewApplication initializes observability and loads the roster. Any load
// error is returned as is; the caller decides how to report it.
func NewApplication(ctx context.Context, cfg *config.Config, opts Options) (*Application, error) {
	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = infrastructure.InitializeLogger(cfg.Logging)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
	}
	if opts.TraceOut == nil {
		opts.TraceOut = os.Stderr
	}

	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Observability, logger, opts.TraceOut)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	a := &Application{
		Config: cfg,
		Paths:  cfg.GetPaths(),
		Logger: logger,
		OTel:   otelProviders,
	}
	a.Paths.LogPathResolution(logger)

	if err := a.load(ctx); err != nil {
		a.Close(ctx)
		return nil, err
	}

	if cfg.Observability.MetricsAddr != "" {
		router := infrastructure.NewDiagnosticsRouter(otelProviders, a.health)
		a.diagnostics, err = infrastructure.StartDiagnostics(cfg.Observability.MetricsAddr, router, logger)
		if err != nil {
			a.Close(ctx)
			return nil, apperrors.NewConfigError("start diagnostics listener on "+cfg.Observability.MetricsAddr, err)
		}
	}

	return a, nil
}

func (a *Application) load(ctx context.Context) error {
	parser := dataprocessing.NewParser(dataprocessing.ParserConfig{
		Delimiter: a.Config.DelimiterRune(),
		Subjects:  a.Config.Parsing.Subjects,
	}, a.Logger)

	loader := dataprocessing.NewLoader(dataprocessing.LoaderConfig{
		Parser:        parser,
		RejectUnknown: a.Config.RejectUnknownStudents(),
		Tracer:        a.OTel.Tracer,
		Metrics:       a.OTel.Metrics,
	}, a.Logger)

	discovery := files.NewDiscovery(a.Logger)
	for _, p := range []*string{&a.Paths.IdentityFile, &a.Paths.MarksFile, &a.Paths.WeightsFile} {
		*p, _ = discovery.ResolveSource(*p)
	}

	res, err := loader.Load(ctx, dataprocessing.Sources{
		Identity: a.Paths.IdentityFile,
		Marks:    a.Paths.MarksFile,
		Weights:  a.Paths.WeightsFile,
	})
	if err != nil {
		return err
	}

	gen, err := reports.NewGenerator(res.Weights, reports.Options{
		Collation: a.Config.Reports.Collation,
		Tracer:    a.OTel.Tracer,
		Metrics:   a.OTel.Metrics,
	}, a.Logger)
	if err != nil {
		return err
	}

	a.Store = res.Store
	a.Weights = res.Weights
	a.Reports = gen
	a.Roster = exporter.NewRosterExporter(exporter.RosterOptions{
		CSV: exporter.CSVOptions{
			Delimiter: a.Config.DelimiterRune(),
			BOMPrefix: a.Config.Export.BOM,
		},
		Subjects: a.Config.Parsing.Subjects,
		Tracer:   a.OTel.Tracer,
		Metrics:  a.OTel.Metrics,
	}, a.Logger)
	return nil
}

func (a *Application) health(ctx context.Context) infrastructure.HealthStatus {
	status := infrastructure.HealthStatus{
		Status:  "ok",
		Version: config.AppVersion,
		TraceID: infrastructure.GetTraceID(ctx),
	}
	if a.Store != nil {
		status.Students = a.Store.Len()
	}
	return status
}

// Close stops the diagnostics listener and flushes telemetry.
func (a *Application) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := a.diagnostics.Close(ctx); err != nil {
		a.Logger.ErrorContext(ctx, "Error stopping diagnostics listener", slog.String("error", err.Error()))
	}
	if a.OTel != nil {
		if err := a.OTel.Shutdown(ctx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
			return err
		}
	}
	a.Logger.DebugContext(ctx, "Application shutdown complete")
	return nil
}
