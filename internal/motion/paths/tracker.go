package paths

import (
	"math"
	"sync"
	"time"

	"github.com/liftlab-data/barpath.report/internal/config"
	"github.com/liftlab-data/barpath.report/internal/motion"
)

// Config holds configuration parameters for the path tracker.
type Config struct {
	MaxJumpDistance    float64       // Maximum distance from the last accepted observation
	MaxSpeed           float64       // Maximum implied speed (normalized units per second)
	TrackingTolerance  float64       // Maximum distance for association with an active path
	RecencyWindow      time.Duration // How recent a path's last point must be to associate
	MaxActivePaths     int           // Maximum concurrent active paths
	MaxPathPoints      int           // Point cap per path before trimming
	KeepWindowFraction float64       // Fraction of the cap kept when trimming
	MinPathPoints      int           // Paths shorter than this are prunable after the grace period
	InactiveTimeout    time.Duration // Idle time after which a path is discarded
	CreationGrace      time.Duration // Age before short paths become prunable
	CleanupInterval    time.Duration // Minimum time between cleanup sweeps
}

// DefaultConfig returns tracker configuration loaded from the canonical
// tuning defaults file (config/tuning.defaults.json).
// Panics if the file cannot be found — intended for tests and binaries
// that have already validated config availability.
func DefaultConfig() Config {
	cfg := config.MustLoadDefaultConfig()
	return ConfigFromTuning(cfg)
}

// ConfigFromTuning builds a tracker Config from a loaded TuningConfig.
// Use this in production code where the TuningConfig is already loaded.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		MaxJumpDistance:    cfg.GetMaxJumpDistance(),
		MaxSpeed:           cfg.GetMaxSpeed(),
		TrackingTolerance:  cfg.GetTrackingTolerance(),
		RecencyWindow:      cfg.GetRecencyWindow(),
		MaxActivePaths:     cfg.GetMaxActivePaths(),
		MaxPathPoints:      cfg.GetMaxPathPoints(),
		KeepWindowFraction: cfg.GetKeepWindowFraction(),
		MinPathPoints:      cfg.GetMinPathPoints(),
		InactiveTimeout:    cfg.GetInactiveTimeout(),
		CreationGrace:      cfg.GetCreationGrace(),
		CleanupInterval:    cfg.GetCleanupInterval(),
	}
}

// Tracker assembles bar position observations into paths. One goroutine
// feeds Ingest; Snapshot serves concurrent readers through the RWMutex.
type Tracker struct {
	mu  sync.RWMutex
	cfg Config

	active []*Path
	nextID int64

	lastAccepted  *Point // last observation that passed the noise gate
	lastCleanupMs int64

	misses    int64 // observations rejected by the noise gate
	created   int64 // paths started
	discarded int64 // paths removed by cleanup
}

// NewTracker creates a tracker with the specified configuration.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{cfg: cfg, nextID: 1}
}

// Ingest feeds one bar observation into the tracker. It returns the ID of
// the path the point was appended to and true, or 0 and false when the
// noise gate rejected the observation. Timestamps must increase between
// accepted observations; stale or duplicate timestamps are rejected.
func (t *Tracker) Ingest(x, y float64, tsMs int64) (int64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.passesGate(x, y, tsMs) {
		t.misses++
		return 0, false
	}

	path := t.associate(x, y, tsMs)
	t.append(path, Point{X: x, Y: y, TimestampMs: tsMs})
	t.lastAccepted = &Point{X: x, Y: y, TimestampMs: tsMs}

	t.maybeCleanup(tsMs)
	return path.ID, true
}

// passesGate applies the noise gate against the last accepted observation.
// The first observation always passes.
func (t *Tracker) passesGate(x, y float64, tsMs int64) bool {
	last := t.lastAccepted
	if last == nil {
		return true
	}
	if tsMs <= last.TimestampMs {
		motion.Tracef("rejecting stale observation at %d (last accepted %d)", tsMs, last.TimestampMs)
		return false
	}

	dist := math.Hypot(x-last.X, y-last.Y)
	if t.cfg.MaxJumpDistance > 0 && dist > t.cfg.MaxJumpDistance {
		motion.Tracef("rejecting jump of %.3f at %d (max %.3f)", dist, tsMs, t.cfg.MaxJumpDistance)
		return false
	}

	if t.cfg.MaxSpeed > 0 {
		dtSec := float64(tsMs-last.TimestampMs) / 1000.0
		if dist/dtSec > t.cfg.MaxSpeed {
			motion.Tracef("rejecting implied speed %.3f/s at %d (max %.3f)", dist/dtSec, tsMs, t.cfg.MaxSpeed)
			return false
		}
	}
	return true
}

// associate finds the path an accepted observation belongs to: the nearest
// active path updated within the recency window wins if it is inside the
// tracking tolerance. Otherwise a new path starts, unless the tracker is at
// capacity, in which case the most recently updated path absorbs the point.
func (t *Tracker) associate(x, y float64, tsMs int64) *Path {
	cutoff := tsMs - t.cfg.RecencyWindow.Milliseconds()

	var nearest *Path
	nearestDist := math.MaxFloat64
	for _, p := range t.active {
		last := p.Last()
		if last.TimestampMs < cutoff || last.TimestampMs >= tsMs {
			continue
		}
		d := math.Hypot(x-last.X, y-last.Y)
		if d < nearestDist {
			nearest = p
			nearestDist = d
		}
	}
	if nearest != nil && nearestDist <= t.cfg.TrackingTolerance {
		return nearest
	}

	if len(t.active) < t.cfg.MaxActivePaths {
		return t.startPath(tsMs)
	}

	// At capacity: fall back to the most recently updated path so the
	// observation is not lost.
	recent := t.active[0]
	for _, p := range t.active[1:] {
		if p.Last().TimestampMs > recent.Last().TimestampMs {
			recent = p
		}
	}
	motion.Diagf("path capacity %d reached, folding observation into path %d",
		t.cfg.MaxActivePaths, recent.ID)
	return recent
}

// startPath creates and registers a new active path.
func (t *Tracker) startPath(tsMs int64) *Path {
	p := &Path{
		ID:        t.nextID,
		CreatedMs: tsMs,
		Color:     colorForID(t.nextID),
	}
	t.nextID++
	t.created++
	t.active = append(t.active, p)
	motion.Tracef("started path %d at %d", p.ID, tsMs)
	return p
}

// append adds the point and trims the path to the keep window when it
// exceeds the point cap.
func (t *Tracker) append(p *Path, pt Point) {
	p.Points = append(p.Points, pt)
	if len(p.Points) <= t.cfg.MaxPathPoints {
		return
	}
	keep := int(float64(t.cfg.MaxPathPoints) * t.cfg.KeepWindowFraction)
	if keep < 1 {
		keep = 1
	}
	p.Points = p.Points[len(p.Points)-keep:]
	motion.Diagf("path %d hit point cap %d, trimmed to %d points", p.ID, t.cfg.MaxPathPoints, keep)
}

// maybeCleanup prunes abandoned paths at most once per cleanup interval:
// paths idle past the inactive timeout, and paths that stayed under the
// minimum point count past the creation grace period.
func (t *Tracker) maybeCleanup(nowMs int64) {
	if nowMs-t.lastCleanupMs < t.cfg.CleanupInterval.Milliseconds() {
		return
	}
	t.lastCleanupMs = nowMs

	inactiveCutoff := nowMs - t.cfg.InactiveTimeout.Milliseconds()
	graceCutoff := nowMs - t.cfg.CreationGrace.Milliseconds()

	kept := t.active[:0]
	for _, p := range t.active {
		idle := p.Last().TimestampMs < inactiveCutoff
		shortAndOld := len(p.Points) < t.cfg.MinPathPoints && p.CreatedMs < graceCutoff
		if idle || shortAndOld {
			t.discarded++
			motion.Diagf("discarding path %d (points=%d idle=%t)", p.ID, len(p.Points), idle)
			continue
		}
		kept = append(kept, p)
	}
	// Zero the tail so discarded paths do not linger in the backing array.
	for i := len(kept); i < len(t.active); i++ {
		t.active[i] = nil
	}
	t.active = kept
}

// Snapshot returns deep copies of all active paths, ordered by creation.
// The copies share no memory with tracker state.
func (t *Tracker) Snapshot() []Path {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Path, 0, len(t.active))
	for _, p := range t.active {
		out = append(out, p.Clone())
	}
	return out
}

// Detach removes the path with the given ID from the active set and
// returns it. The caller becomes the sole owner. Returns nil when no
// active path has that ID.
func (t *Tracker) Detach(id int64) *Path {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, p := range t.active {
		if p.ID == id {
			t.active = append(t.active[:i], t.active[i+1:]...)
			return p
		}
	}
	return nil
}

// Reset discards all active paths, gate state and counters. Path IDs keep
// counting up so detached paths from before the reset stay unambiguous.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = nil
	t.lastAccepted = nil
	t.lastCleanupMs = 0
	t.misses = 0
	t.created = 0
	t.discarded = 0
}

// ActiveCount returns the number of active paths.
func (t *Tracker) ActiveCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.active)
}

// Misses returns how many observations the noise gate has rejected.
func (t *Tracker) Misses() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.misses
}

// Created returns how many paths the tracker has started.
func (t *Tracker) Created() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.created
}

// Discarded returns how many paths cleanup has removed.
func (t *Tracker) Discarded() int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.discarded
}
