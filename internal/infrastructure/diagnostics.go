package infrastructure

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

const diagnosticsShutdownTimeout = 5 * time.Second

// HealthStatus is the /healthz payload
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Students int    `json:"students"`
	TraceID  string `json:"trace_id,omitempty"`
}

// HealthFunc reports the current health of the application
type HealthFunc func(ctx context.Context) HealthStatus

// NewDiagnosticsRouter builds the router for the diagnostics listener.
// /metrics is mounted only when a Prometheus handler is available.
func NewDiagnosticsRouter(providers *OTelProviders, health HealthFunc) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			status := HealthStatus{Status: "ok"}
			if health != nil {
				status = health(r.Context())
			}
			render.JSON(w, r, status)
		})
	})

	if providers != nil && providers.PrometheusHTTP != nil {
		r.Handle("/metrics", providers.PrometheusHTTP)
	}

	return r
}

// DiagnosticsServer serves health and metrics on a side listener
type DiagnosticsServer struct {
	server   *http.Server
	listener net.Listener
	logger   *slog.Logger
	done     chan struct{}
}

// StartDiagnostics binds addr and serves handler in the background
func StartDiagnostics(addr string, handler http.Handler, logger *slog.Logger) (*DiagnosticsServer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	d := &DiagnosticsServer{
		server: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		listener: ln,
		logger:   logger,
		done:     make(chan struct{}),
	}

	go func() {
		defer close(d.done)
		if err := d.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Diagnostics listener failed", slog.String("error", err.Error()))
		}
	}()

	logger.Info("Diagnostics listener started", slog.String("addr", ln.Addr().String()))
	return d, nil
}

// Addr returns the bound address
func (d *DiagnosticsServer) Addr() string {
	return d.listener.Addr().String()
}

// Close shuts the listener down and waits for the serve loop to exit
func (d *DiagnosticsServer) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, diagnosticsShutdownTimeout)
	defer cancel()

	err := d.server.Shutdown(ctx)
	<-d.done
	return err
}
