package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/liftlab-data/barpath.report/internal/config"
	"github.com/liftlab-data/barpath.report/internal/monitoring"
	"github.com/liftlab-data/barpath.report/internal/motion/detect"
	"github.com/liftlab-data/barpath.report/internal/motion/pipeline"
	"github.com/liftlab-data/barpath.report/internal/motion/paths"
	"github.com/liftlab-data/barpath.report/internal/motion/reps"
	"github.com/liftlab-data/barpath.report/internal/timeutil"
)

// Config holds the manager's dependencies.
type Config struct {
	// Tuning supplies the pipeline thresholds. Nil loads the canonical
	// defaults file.
	Tuning *config.TuningConfig
	// Store, when non-nil, receives every cleanly stopped session. Optional.
	Store Store
	// RenderSink, when non-nil, is attached to every session's pipeline. Optional.
	RenderSink pipeline.RenderSink
	// RecordSink, when non-nil, is attached to every session's pipeline. Optional.
	RecordSink pipeline.RecordSink
	// Clock substitutes a test clock for session timestamps. Nil uses the
	// real one.
	Clock timeutil.Clock
}

// Manager coordinates session lifecycle: at most one active session, each
// with its own pipeline instance. It is safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	cfg    Config
	tuning *config.TuningConfig

	current *active  // nil when no session is running
	last    *Summary // most recently stopped session, for report retries

	clock timeutil.Clock
}

type active struct {
	sess Session
	pipe *pipeline.Pipeline
}

// NewManager creates a Manager. Panics only if cfg.Tuning is nil and the
// defaults file cannot be found.
func NewManager(cfg Config) *Manager {
	tuning := cfg.Tuning
	if tuning == nil {
		tuning = config.MustLoadDefaultConfig()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Manager{
		cfg:    cfg,
		tuning: tuning,
		clock:  clock,
	}
}

// Start begins a new session with the given labels. Fails with
// ErrSessionActive when one is already running.
func (m *Manager) Start(exercise, tempo string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		return Session{}, ErrSessionActive
	}

	pcfg := pipeline.ConfigFromTuning(m.tuning)
	pcfg.Exercise = exercise
	pcfg.Tempo = tempo
	pcfg.RenderSink = m.cfg.RenderSink
	pcfg.RecordSink = m.cfg.RecordSink

	sess := Session{
		ID:        uuid.New().String(),
		Exercise:  exercise,
		Tempo:     tempo,
		StartedAt: m.clock.Now(),
	}
	m.current = &active{sess: sess, pipe: pipeline.New(pcfg)}

	monitoring.Logf("[session] started %s exercise=%q tempo=%q", sess.ID, exercise, tempo)
	return sess, nil
}

// Stop finishes the active session and persists it. On a store failure the
// session stays active with all data intact, so Stop can be retried
// without re-recording the workout.
func (m *Manager) Stop(ctx context.Context) (Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return Summary{}, ErrNoActiveSession
	}

	sess := m.current.sess
	sess.StoppedAt = m.clock.Now()
	recs, pts := m.current.pipe.SnapshotCompleted()
	sum := Summary{
		Session: sess,
		Stats:   statsFor(sess, m.current.pipe.Stats(), sess.StoppedAt.Sub(sess.StartedAt)),
		Reps:    recs,
		Paths:   pts,
	}

	if m.cfg.Store != nil {
		if err := m.cfg.Store.SaveSession(ctx, sum); err != nil {
			monitoring.Logf("[session] save failed for %s, session kept active: %v", sess.ID, err)
			return Summary{}, fmt.Errorf("saving session %s: %w", sess.ID, err)
		}
	}

	m.last = &sum
	m.current = nil
	monitoring.Logf("[session] stopped %s: %d reps over %s", sess.ID, len(recs), sum.Stats.Elapsed)
	return sum, nil
}

// Reset clears the active session's pipeline in place: active paths,
// completed reps and all counters go to zero and rep numbering restarts at
// 1. The session identity and labels are kept.
func (m *Manager) Reset() error {
	m.mu.RLock()
	cur := m.current
	m.mu.RUnlock()

	if cur == nil {
		return ErrNoActiveSession
	}
	cur.pipe.Reset()
	monitoring.Logf("[session] reset %s", cur.sess.ID)
	return nil
}

// IngestFrame feeds one detector frame into the active session. The frame
// is dropped with ok=false when a previous frame is still in flight.
func (m *Manager) IngestFrame(frame detect.RawFrame) (pipeline.FrameResult, bool, error) {
	m.mu.RLock()
	cur := m.current
	m.mu.RUnlock()

	if cur == nil {
		return pipeline.FrameResult{}, false, ErrNoActiveSession
	}
	res, ok := cur.pipe.IngestFrame(frame)
	return res, ok, nil
}

// Active reports whether a session is running.
func (m *Manager) Active() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil
}

// Current returns the active session's identity.
func (m *Manager) Current() (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Session{}, false
	}
	return m.current.sess, true
}

// Stats returns live statistics for the active session.
func (m *Manager) Stats() (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return Stats{}, ErrNoActiveSession
	}
	sess := m.current.sess
	return statsFor(sess, m.current.pipe.Stats(), m.clock.Since(sess.StartedAt)), nil
}

// Snapshot returns the active session's completed reps and their paths.
func (m *Manager) Snapshot() ([]reps.Record, []paths.Path, error) {
	m.mu.RLock()
	cur := m.current
	m.mu.RUnlock()

	if cur == nil {
		return nil, nil, ErrNoActiveSession
	}
	recs, pts := cur.pipe.SnapshotCompleted()
	return recs, pts, nil
}

// ActivePaths returns the active session's live paths for rendering.
func (m *Manager) ActivePaths() ([]paths.Path, error) {
	m.mu.RLock()
	cur := m.current
	m.mu.RUnlock()

	if cur == nil {
		return nil, ErrNoActiveSession
	}
	return cur.pipe.ActivePaths(), nil
}

// Last returns the most recently stopped session, if any. Report
// generation uses this after a session ends without hitting storage.
func (m *Manager) Last() (Summary, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.last == nil {
		return Summary{}, false
	}
	return *m.last, true
}

// Report returns the data a report should cover: the active session's
// snapshot when one is running, otherwise the last finished session.
// Returns ErrNoData when neither exists.
func (m *Manager) Report() (Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current != nil {
		sess := m.current.sess
		recs, pts := m.current.pipe.SnapshotCompleted()
		return Summary{
			Session: sess,
			Stats:   statsFor(sess, m.current.pipe.Stats(), m.clock.Since(sess.StartedAt)),
			Reps:    recs,
			Paths:   pts,
		}, nil
	}
	if m.last != nil {
		return *m.last, nil
	}
	return Summary{}, ErrNoData
}
