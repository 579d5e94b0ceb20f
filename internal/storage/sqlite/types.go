package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/liftlab-data/barpath.report/internal/motion/paths"
	"github.com/liftlab-data/barpath.report/internal/motion/reps"
)

// SessionRow is the persisted form of a finished session.
type SessionRow struct {
	ID            string  `json:"session_id"`
	Exercise      string  `json:"exercise"`
	Tempo         string  `json:"tempo"`
	StartedUnixMs int64   `json:"started_unix_ms"`
	EndedUnixMs   int64   `json:"ended_unix_ms"`
	RepCount      int     `json:"rep_count"`
	AvgScore      float64 `json:"avg_score"`
}

// RepRow is the persisted form of a single rep, including the bar path
// serialized as JSON so reports can re-plot it later.
type RepRow struct {
	SessionID      string  `json:"session_id"`
	RepNumber      int     `json:"rep_number"`
	PathID         int64   `json:"path_id"`
	TotalDistanceM float64 `json:"total_distance_m"`
	VerticalRangeM float64 `json:"vertical_range_m"`
	DurationMs     int64   `json:"duration_ms"`
	PointCount     int     `json:"point_count"`
	CompletedAtMs  int64   `json:"completed_at_ms"`
	Score          int     `json:"score"`
	Completeness   int     `json:"completeness"`
	Efficiency     int     `json:"efficiency"`
	Density        int     `json:"density"`
	Smoothness     int     `json:"smoothness"`
	PathJSON       string  `json:"-"`
}

// Record rebuilds the in-memory rep record from the row. Exercise and
// tempo live on the session row, so the caller supplies them.
func (r RepRow) Record(exercise, tempo string) reps.Record {
	return reps.Record{
		RepNumber:      r.RepNumber,
		PathID:         r.PathID,
		Exercise:       exercise,
		Tempo:          tempo,
		TotalDistanceM: r.TotalDistanceM,
		VerticalRangeM: r.VerticalRangeM,
		DurationMs:     r.DurationMs,
		PointCount:     r.PointCount,
		CompletedAtMs:  r.CompletedAtMs,
		Score:          r.Score,
		Completeness:   r.Completeness,
		Efficiency:     r.Efficiency,
		Density:        r.Density,
		Smoothness:     r.Smoothness,
	}
}

// DecodePath unmarshals the stored bar path. Rows persisted without a
// path decode to an empty path rather than an error.
func (r RepRow) DecodePath() (paths.Path, error) {
	if r.PathJSON == "" {
		return paths.Path{ID: r.PathID}, nil
	}
	var p paths.Path
	if err := json.Unmarshal([]byte(r.PathJSON), &p); err != nil {
		return paths.Path{}, fmt.Errorf("decode path for rep %d: %w", r.RepNumber, err)
	}
	return p, nil
}
