// Package web implements the debug/status HTTP surface of §6.2: a
// small, purely observational API distinct from the MQTT wire
// contract and from any map-rendering console, following the
// teacher's own web server's route-registration and graceful-shutdown
// shape.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/skywatch/dronerid/internal/core/domain"
	"github.com/skywatch/dronerid/internal/reporting"
)

// DetectionSource is read by the HTTP surface to answer
// /api/detections and to seed the WebSocket stream; the Orchestrator
// satisfies it.
type DetectionSource interface {
	Detections() []domain.Detection
	Stats() *domain.Stats
	SessionID() string
}

// Server hosts the §6.2 debug/status HTTP surface.
type Server struct {
	Addr   string
	source DetectionSource
	hub    *Hub
	srv    *http.Server
}

// NewServer builds a Server bound to addr and source. hub may be nil
// to disable the /ws/detections endpoint.
func NewServer(addr string, source DetectionSource, hub *Hub) *Server {
	return &Server{Addr: addr, source: source, hub: hub}
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/api/detections", s.handleDetections).Methods(http.MethodGet)
	r.HandleFunc("/api/report", s.handleReport).Methods(http.MethodPost)
	if s.hub != nil {
		r.HandleFunc("/ws/detections", s.hub.HandleWebSocket)
	}
	return r
}

// Run starts the HTTP server and blocks until ctx is cancelled, then
// performs a graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           otelhttp.NewHandler(s.routes(), "dronerid.debug_http"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("debug HTTP server shutdown error", "error", err)
		}
	}()

	slog.Info("debug HTTP surface listening", "addr", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// detectionsLimit bounds /api/detections per §6.2's "most recent N".
const detectionsLimit = 200

func (s *Server) handleDetections(w http.ResponseWriter, r *http.Request) {
	all := s.source.Detections()
	if len(all) > detectionsLimit {
		all = all[len(all)-detectionsLimit:]
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(all); err != nil {
		slog.Warn("encoding /api/detections response failed", "error", err)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	detections := s.source.Detections()
	stats := s.source.Stats().Snapshot()

	pdf := reporting.NewSessionReport(s.source.SessionID(), detections, stats)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="dronerid-session-report.pdf"`)
	if err := pdf.Output(w); err != nil {
		http.Error(w, "report generation failed", http.StatusInternalServerError)
		slog.Warn("PDF report generation failed", "error", err)
	}
}
