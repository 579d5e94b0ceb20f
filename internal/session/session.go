// Package session owns the lifecycle of one recording session: it wires a
// fresh pipeline per session, exposes session-level statistics, and hands
// finished sessions to a persistence store. All mutating calls are safe
// for concurrent use; frame ingestion stays on the pipeline's own
// single-writer discipline.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/liftlab-data/barpath.report/internal/motion/paths"
	"github.com/liftlab-data/barpath.report/internal/motion/pipeline"
	"github.com/liftlab-data/barpath.report/internal/motion/reps"
	"github.com/liftlab-data/barpath.report/internal/units"
)

var (
	// ErrNoActiveSession is returned by operations that need a running
	// session when none is active.
	ErrNoActiveSession = errors.New("no active session")
	// ErrSessionActive is returned by Start when a session is already
	// running.
	ErrSessionActive = errors.New("session already active")
	// ErrNoData is returned when a report is requested but no session data
	// exists, neither active nor finished.
	ErrNoData = errors.New("no session data")
)

// Session identifies one recording session and its labels.
type Session struct {
	ID        string    `json:"id"`
	Exercise  string    `json:"exercise"`
	Tempo     string    `json:"tempo"`
	StartedAt time.Time `json:"started_at"`
	StoppedAt time.Time `json:"stopped_at,omitempty"` // zero while active
}

// Stats is the session-level aggregate handed to the API: identity plus
// the pipeline counters and a human-readable elapsed time.
type Stats struct {
	SessionID string `json:"session_id"`
	Exercise  string `json:"exercise"`
	Tempo     string `json:"tempo"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Elapsed   string `json:"elapsed"`
	pipeline.Stats
}

// Summary is everything a finished session hands to persistence and
// reporting: identity, final counters, and the immutable rep records with
// their paths.
type Summary struct {
	Session Session       `json:"session"`
	Stats   Stats         `json:"stats"`
	Reps    []reps.Record `json:"reps"`
	Paths   []paths.Path  `json:"paths"`
}

// Store persists finished sessions. Implementations live outside this
// package (internal/storage/sqlite); a nil store keeps sessions in memory
// only.
type Store interface {
	// SaveSession writes one finished session and its rep records.
	SaveSession(ctx context.Context, s Summary) error
}

// statsFor assembles session stats from the pipeline counters at a given
// elapsed duration.
func statsFor(sess Session, ps pipeline.Stats, elapsed time.Duration) Stats {
	return Stats{
		SessionID: sess.ID,
		Exercise:  sess.Exercise,
		Tempo:     sess.Tempo,
		ElapsedMs: elapsed.Milliseconds(),
		Elapsed:   units.FormatElapsed(elapsed),
		Stats:     ps,
	}
}
