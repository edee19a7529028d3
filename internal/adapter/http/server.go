package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/fdv-converter/internal/domain"
	"github.com/couchcryptid/fdv-converter/internal/pipeline"
)

// ReadinessChecker reports whether the converter has completed a batch.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// ReportSource exposes the most recent batch report, nil before the first run.
type ReportSource interface {
	LastReport() *pipeline.Report
}

// Server exposes health, readiness, metrics and last-run endpoints while a
// batch is running.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /runs/latest routes. reports may be nil.
func NewServer(addr string, ready ReadinessChecker, reports ReportSource, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.HandleFunc("GET /runs/latest", handleLatestRun(reports))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

type runSummary struct {
	RunID      string            `json:"run_id"`
	Archive    string            `json:"archive,omitempty"`
	Succeeded  int               `json:"succeeded"`
	Failed     int               `json:"failed"`
	DurationMS float64           `json:"duration_ms"`
	Jobs       []domain.JobEvent `json:"jobs"`
}

func handleLatestRun(source ReportSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		var report *pipeline.Report
		if source != nil {
			report = source.LastReport()
		}
		if report == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no batch has run"})
			return
		}
		writeJSON(w, http.StatusOK, runSummary{
			RunID:      report.RunID,
			Archive:    report.Archive,
			Succeeded:  report.Succeeded(),
			Failed:     report.Failed(),
			DurationMS: float64(report.Duration) / float64(time.Millisecond),
			Jobs:       report.Jobs,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort health response
}
