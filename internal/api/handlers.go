package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/liftlab-data/barpath.report/internal/httputil"
	"github.com/liftlab-data/barpath.report/internal/motion/detect"
	"github.com/liftlab-data/barpath.report/internal/motion/paths"
	"github.com/liftlab-data/barpath.report/internal/motion/pipeline"
	"github.com/liftlab-data/barpath.report/internal/motion/reps"
	"github.com/liftlab-data/barpath.report/internal/report"
	"github.com/liftlab-data/barpath.report/internal/session"
	storage "github.com/liftlab-data/barpath.report/internal/storage/sqlite"
	"github.com/liftlab-data/barpath.report/internal/units"
	"github.com/liftlab-data/barpath.report/internal/version"
)

// FrameRequest is the wire form of one raw detector frame. The replay
// tool writes the same shape as JSONL.
type FrameRequest struct {
	CX          []float32 `json:"cx"`
	CY          []float32 `json:"cy"`
	W           []float32 `json:"w"`
	H           []float32 `json:"h"`
	Conf        []float32 `json:"conf"`
	TimestampMs int64     `json:"timestamp_ms"`
}

// Raw converts the request into the pipeline's frame type.
func (f FrameRequest) Raw() detect.RawFrame {
	return detect.RawFrame{
		CX:          f.CX,
		CY:          f.CY,
		W:           f.W,
		H:           f.H,
		Conf:        f.Conf,
		TimestampMs: f.TimestampMs,
	}
}

// FrameResponse reports what one ingested frame produced.
type FrameResponse struct {
	Accepted    bool               `json:"accepted"`
	Detections  []detect.Detection `json:"detections,omitempty"`
	ActivePaths int                `json:"active_paths"`
	RepCount    int                `json:"rep_count"`
	Completed   []reps.Record      `json:"completed,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]interface{}{
		"status":  "ok",
		"version": version.Version,
		"active":  s.manager.Active(),
	})
}

type startRequest struct {
	Exercise string `json:"exercise"`
	Tempo    string `json:"tempo"`
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	sess, err := s.manager.Start(req.Exercise, req.Tempo)
	if errors.Is(err, session.ErrSessionActive) {
		httputil.Conflict(w, "a session is already active")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("start session: %v", err))
		return
	}
	httputil.WriteJSONOK(w, sess)
}

func (s *Server) stopSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	sum, err := s.manager.Stop(r.Context())
	if errors.Is(err, session.ErrNoActiveSession) {
		httputil.NotFound(w, "no active session")
		return
	}
	if err != nil {
		// Persistence failed; the session is still active and Stop can be
		// retried without losing the recorded reps.
		httputil.InternalServerError(w, fmt.Sprintf("stop session: %v", err))
		return
	}
	httputil.WriteJSONOK(w, sum)
}

func (s *Server) resetSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	if err := s.manager.Reset(); err != nil {
		httputil.NotFound(w, "no active session")
		return
	}

	s.mu.Lock()
	s.lastFrame = frameSnapshot{}
	s.mu.Unlock()

	httputil.WriteJSONOK(w, map[string]string{"status": "reset"})
}

func (s *Server) sessionStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	stats, err := s.manager.Stats()
	if errors.Is(err, session.ErrNoActiveSession) {
		httputil.NotFound(w, "no active session")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("session stats: %v", err))
		return
	}
	httputil.WriteJSONOK(w, stats)
}

// snapshotResponse is the rendering collaborator surface: copies only,
// mutation by the consumer changes nothing in the tracker.
type snapshotResponse struct {
	TimestampMs int64              `json:"timestamp_ms"`
	Detections  []detect.Detection `json:"detections"`
	ActivePaths []paths.Path       `json:"active_paths"`
}

func (s *Server) sessionSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	active, err := s.manager.ActivePaths()
	if errors.Is(err, session.ErrNoActiveSession) {
		httputil.NotFound(w, "no active session")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("session snapshot: %v", err))
		return
	}

	s.mu.RLock()
	last := s.lastFrame
	s.mu.RUnlock()

	httputil.WriteJSONOK(w, snapshotResponse{
		TimestampMs: last.TimestampMs,
		Detections:  last.Detections,
		ActivePaths: active,
	})
}

func (s *Server) ingestFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req FrameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid frame body: %v", err))
		return
	}

	res, accepted, err := s.manager.IngestFrame(req.Raw())
	if errors.Is(err, session.ErrNoActiveSession) {
		httputil.NotFound(w, "no active session")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("ingest frame: %v", err))
		return
	}

	resp := FrameResponse{Accepted: accepted}
	if accepted {
		resp.Detections = res.Detections
		resp.ActivePaths = len(res.ActivePaths)
		resp.Completed = res.Completed

		s.mu.Lock()
		s.lastFrame = frameSnapshot{TimestampMs: res.TimestampMs, Detections: res.Detections}
		s.mu.Unlock()
	}
	if stats, err := s.manager.Stats(); err == nil {
		resp.RepCount = stats.CompletedReps
	}
	httputil.WriteJSONOK(w, resp)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.history == nil {
		httputil.NotFound(w, "no session store configured")
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if _, err := fmt.Sscanf(l, "%d", &limit); err != nil || limit < 1 {
			httputil.BadRequest(w, "invalid 'limit' parameter")
			return
		}
	}

	rows, err := s.history.ListSessions(r.Context(), limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("list sessions: %v", err))
		return
	}
	if rows == nil {
		rows = []storage.SessionRow{}
	}
	httputil.WriteJSONOK(w, rows)
}

// repView is a RepRow with distances converted for display.
type repView struct {
	storage.RepRow
	Units         string  `json:"units"`
	TotalDistance float64 `json:"total_distance"`
	VerticalRange float64 `json:"vertical_range"`
}

// sessionReps handles /api/sessions/{id}/reps.
func (s *Server) sessionReps(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.history == nil {
		httputil.NotFound(w, "no session store configured")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	id, tail, found := strings.Cut(rest, "/")
	if !found || tail != "reps" || id == "" {
		httputil.NotFound(w, "not found")
		return
	}

	rows, err := s.history.SessionReps(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		httputil.NotFound(w, fmt.Sprintf("session %s not found", id))
		return
	}
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("session reps: %v", err))
		return
	}

	target := s.displayUnits(r)
	views := make([]repView, 0, len(rows))
	for _, row := range rows {
		views = append(views, repView{
			RepRow:        row,
			Units:         target,
			TotalDistance: units.ConvertDistance(row.TotalDistanceM, target),
			VerticalRange: units.ConvertDistance(row.VerticalRangeM, target),
		})
	}
	httputil.WriteJSONOK(w, views)
}

// reportSummary resolves the session a report should cover: an explicit
// session_id loads from storage; otherwise the live (or last finished)
// session is used.
func (s *Server) reportSummary(r *http.Request) (session.Summary, int, error) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		sum, err := s.manager.Report()
		if errors.Is(err, session.ErrNoData) {
			return session.Summary{}, http.StatusNotFound, fmt.Errorf("no session data to report")
		}
		if err != nil {
			return session.Summary{}, http.StatusInternalServerError, err
		}
		return sum, http.StatusOK, nil
	}

	if s.history == nil {
		return session.Summary{}, http.StatusNotFound, fmt.Errorf("no session store configured")
	}

	row, err := s.history.GetSession(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return session.Summary{}, http.StatusNotFound, fmt.Errorf("session %s not found", id)
	}
	if err != nil {
		return session.Summary{}, http.StatusInternalServerError, err
	}

	repRows, err := s.history.SessionReps(r.Context(), id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return session.Summary{}, http.StatusInternalServerError, err
	}

	sum := session.Summary{
		Session: session.Session{
			ID:        row.ID,
			Exercise:  row.Exercise,
			Tempo:     row.Tempo,
			StartedAt: time.UnixMilli(row.StartedUnixMs),
			StoppedAt: time.UnixMilli(row.EndedUnixMs),
		},
		Stats: session.Stats{
			SessionID: row.ID,
			Exercise:  row.Exercise,
			Tempo:     row.Tempo,
			ElapsedMs: row.EndedUnixMs - row.StartedUnixMs,
			Elapsed:   units.FormatElapsed(time.Duration(row.EndedUnixMs-row.StartedUnixMs) * time.Millisecond),
			Stats: pipeline.Stats{
				CompletedReps: row.RepCount,
				AverageScore:  row.AvgScore,
			},
		},
	}
	for _, rr := range repRows {
		sum.Reps = append(sum.Reps, rr.Record(row.Exercise, row.Tempo))
		p, err := rr.DecodePath()
		if err != nil {
			continue // rep stays in the report, its path just cannot be plotted
		}
		sum.Paths = append(sum.Paths, p)
	}
	return sum, http.StatusOK, nil
}

func (s *Server) reportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	sum, status, err := s.reportSummary(r)
	if err != nil {
		httputil.WriteJSONError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%s", report.Filename(sum, "csv")))
	if err := report.WriteCSV(w, sum, s.displayUnits(r)); err != nil {
		// Headers are gone; the best we can do is log via the middleware's
		// status and abort the body.
		http.Error(w, fmt.Sprintf("write csv: %v", err), http.StatusInternalServerError)
	}
}

func (s *Server) reportChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	sum, status, err := s.reportSummary(r)
	if err != nil {
		httputil.WriteJSONError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := report.RenderChart(w, sum); err != nil {
		http.Error(w, fmt.Sprintf("render chart: %v", err), http.StatusInternalServerError)
	}
}
