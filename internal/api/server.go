// Package api exposes the barpath pipeline over HTTP: session control,
// frame ingestion, live snapshots for overlay rendering, session history,
// and report downloads.
package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/liftlab-data/barpath.report/internal/metrics"
	"github.com/liftlab-data/barpath.report/internal/motion/detect"
	"github.com/liftlab-data/barpath.report/internal/session"
	storage "github.com/liftlab-data/barpath.report/internal/storage/sqlite"
	"github.com/liftlab-data/barpath.report/internal/units"
)

// ANSI escape codes for the request log line
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// History is the slice of the session store the API reads. The sqlite
// SessionStore satisfies it; tests substitute a stub.
type History interface {
	GetSession(ctx context.Context, sessionID string) (storage.SessionRow, error)
	ListSessions(ctx context.Context, limit int) ([]storage.SessionRow, error)
	SessionReps(ctx context.Context, sessionID string) ([]storage.RepRow, error)
}

// Server serves the barpath HTTP API for one session manager.
type Server struct {
	manager *session.Manager
	history History          // nil when running without persistence
	metrics *metrics.Metrics // nil when metrics are disabled
	units   string

	// lastFrame caches the most recent frame result so the snapshot
	// endpoint can include current detections alongside active paths.
	mu        sync.RWMutex
	lastFrame frameSnapshot
}

type frameSnapshot struct {
	TimestampMs int64              `json:"timestamp_ms"`
	Detections  []detect.Detection `json:"detections"`
}

// NewServer creates an API server. history and m may be nil.
func NewServer(manager *session.Manager, history History, m *metrics.Metrics, displayUnits string) *Server {
	if !units.IsValid(displayUnits) {
		displayUnits = units.Meters
	}
	return &Server{
		manager: manager,
		history: history,
		metrics: m,
		units:   displayUnits,
	}
}

// ServeMux mounts all API routes on a fresh mux.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.health)
	mux.HandleFunc("/api/session/start", s.startSession)
	mux.HandleFunc("/api/session/stop", s.stopSession)
	mux.HandleFunc("/api/session/reset", s.resetSession)
	mux.HandleFunc("/api/session/stats", s.sessionStats)
	mux.HandleFunc("/api/session/snapshot", s.sessionSnapshot)
	mux.HandleFunc("/api/frames", s.ingestFrame)
	mux.HandleFunc("/api/sessions", s.listSessions)
	mux.HandleFunc("/api/sessions/", s.sessionReps) // /api/sessions/{id}/reps
	mux.HandleFunc("/api/report/csv", s.reportCSV)
	mux.HandleFunc("/api/report/chart", s.reportChart)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler(s.syncMetrics))
	}
	return mux
}

// syncMetrics refreshes session-scoped gauges before a scrape.
func (s *Server) syncMetrics() {
	st, err := s.manager.Stats()
	if err != nil {
		return
	}
	s.metrics.SyncStats(st.Stats)
}

// displayUnits resolves the target units for a request: the ?units= query
// parameter when valid, the server default otherwise.
func (s *Server) displayUnits(r *http.Request) string {
	if u := r.URL.Query().Get("units"); units.IsValid(u) {
		return u
	}
	return s.units
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		log.Printf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}
