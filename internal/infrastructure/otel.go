package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"

	"rostercli/internal/config"
)

const (
	ServiceName = config.AppName
	MeterName   = "rostercli"
	TracerName  = "rostercli"
)

// OTelProviders holds the OpenTelemetry providers
type OTelProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	PrometheusHTTP http.Handler
	Metrics        *RosterMetrics
	Logger         *slog.Logger
}

// InitializeOTel sets up tracing and metrics. Disabled exporters leave the
// global no-op providers in place, so instrumented code always works.
// Spans are written to traceOut when the stdout exporter is selected.
func InitializeOTel(cfg config.ObservabilityConfig, logger *slog.Logger, traceOut io.Writer) (*OTelProviders, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ctx := context.Background()

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(config.AppVersion),
	)

	providers := &OTelProviders{
		Tracer: otel.Tracer(TracerName),
		Meter:  noop.NewMeterProvider().Meter(MeterName),
		Logger: logger,
	}

	if err := initializeTracing(ctx, cfg, res, providers, traceOut); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := initializeMetrics(ctx, cfg, res, providers); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	metrics, err := CreateRosterMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create roster metrics: %w", err)
	}
	providers.Metrics = metrics

	logger.DebugContext(ctx, "OpenTelemetry initialized",
		slog.String("trace_exporter", cfg.TraceExporter),
		slog.String("metric_exporter", cfg.MetricExporter))

	return providers, nil
}

// initializeTracing sets up OpenTelemetry tracing
func initializeTracing(ctx context.Context, cfg config.ObservabilityConfig, res *resource.Resource, providers *OTelProviders, out io.Writer) error {
	switch cfg.TraceExporter {
	case "", "none":
		return nil
	case "stdout":
	default:
		return fmt.Errorf("unsupported trace exporter: %s", cfg.TraceExporter)
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out), stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	providers.TracerProvider = tp
	providers.Tracer = tp.Tracer(TracerName, trace.WithInstrumentationVersion(config.AppVersion))
	otel.SetTracerProvider(tp)

	providers.Logger.DebugContext(ctx, "Tracing initialized",
		slog.String("exporter", cfg.TraceExporter),
		slog.Float64("sample_ratio", cfg.SampleRatio))
	return nil
}

// initializeMetrics sets up OpenTelemetry metrics backed by a private
// Prometheus registry
func initializeMetrics(ctx context.Context, cfg config.ObservabilityConfig, res *resource.Resource, providers *OTelProviders) error {
	switch cfg.MetricExporter {
	case "", "none":
		return nil
	case "prometheus":
	default:
		return fmt.Errorf("unsupported metric exporter: %s", cfg.MetricExporter)
	}

	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	providers.MeterProvider = mp
	providers.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))
	providers.PrometheusHTTP = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	otel.SetMeterProvider(mp)

	providers.Logger.DebugContext(ctx, "Metrics initialized",
		slog.String("exporter", cfg.MetricExporter))
	return nil
}

// Shutdown flushes and stops the providers
func (p *OTelProviders) Shutdown(ctx context.Context) error {
	var errs []error

	if p.TracerProvider != nil {
		if err := p.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if p.MeterProvider != nil {
		if err := p.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}

// RosterMetrics holds the application metrics. A nil *RosterMetrics records
// nothing.
type RosterMetrics struct {
	LoadsTotal     metric.Int64Counter
	LoadDuration   metric.Float64Histogram
	StudentsLoaded metric.Int64Gauge
	ReportsTotal   metric.Int64Counter
	ExportsTotal   metric.Int64Counter
}

// CreateRosterMetrics creates application-specific metrics
func CreateRosterMetrics(meter metric.Meter) (*RosterMetrics, error) {
	loadsTotal, err := meter.Int64Counter(
		"roster_loads_total",
		metric.WithDescription("Total number of roster loads by status"),
	)
	if err != nil {
		return nil, err
	}

	loadDuration, err := meter.Float64Histogram(
		"roster_load_duration_seconds",
		metric.WithDescription("Roster load duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	studentsLoaded, err := meter.Int64Gauge(
		"roster_students",
		metric.WithDescription("Number of students in the loaded roster"),
	)
	if err != nil {
		return nil, err
	}

	reportsTotal, err := meter.Int64Counter(
		"roster_reports_total",
		metric.WithDescription("Total number of generated reports by kind"),
	)
	if err != nil {
		return nil, err
	}

	exportsTotal, err := meter.Int64Counter(
		"roster_exports_total",
		metric.WithDescription("Total number of exports by format and status"),
	)
	if err != nil {
		return nil, err
	}

	return &RosterMetrics{
		LoadsTotal:     loadsTotal,
		LoadDuration:   loadDuration,
		StudentsLoaded: studentsLoaded,
		ReportsTotal:   reportsTotal,
		ExportsTotal:   exportsTotal,
	}, nil
}

// RecordLoad records the outcome of one load
func (m *RosterMetrics) RecordLoad(ctx context.Context, d time.Duration, students int, err error) {
	if m == nil {
		return
	}
	status := attribute.String("status", statusOf(err))
	m.LoadsTotal.Add(ctx, 1, metric.WithAttributes(status))
	m.LoadDuration.Record(ctx, d.Seconds(), metric.WithAttributes(status))
	if err == nil {
		m.StudentsLoaded.Record(ctx, int64(students))
	}
}

// RecordReport counts one generated report
func (m *RosterMetrics) RecordReport(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.ReportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordExport counts one export attempt
func (m *RosterMetrics) RecordExport(ctx context.Context, format string, err error) {
	if m == nil {
		return
	}
	m.ExportsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("status", statusOf(err)),
	))
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
