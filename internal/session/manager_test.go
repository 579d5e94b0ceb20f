package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlab-data/barpath.report/internal/motion/detect"
	"github.com/liftlab-data/barpath.report/internal/timeutil"
)

type fakeStore struct {
	mu    sync.Mutex
	saved []Summary
	err   error
}

func (f *fakeStore) SaveSession(ctx context.Context, s Summary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, s)
	return nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saved)
}

func boxFrame(tsMs int64, cx, cy float64) detect.RawFrame {
	return detect.RawFrame{
		CX:          []float32{float32(cx)},
		CY:          []float32{float32(cy)},
		W:           []float32{0.1},
		H:           []float32{0.05},
		Conf:        []float32{0.9},
		TimestampMs: tsMs,
	}
}

// feedCycle drives one clean down-up cycle through the active session and
// keeps feeding empty frames until the stability window elapses under the
// default tuning.
func feedCycle(t *testing.T, m *Manager, startMs int64) {
	t.Helper()

	ts := startMs
	for i := 0; i < 10; i++ {
		y := 0.3 + 0.4*float64(i)/9
		_, ok, err := m.IngestFrame(boxFrame(ts, 0.5, y))
		require.NoError(t, err)
		require.True(t, ok)
		ts += 100
	}
	for i := 0; i < 10; i++ {
		y := 0.7 - 0.4*float64(i+1)/10
		_, ok, err := m.IngestFrame(boxFrame(ts, 0.5, y))
		require.NoError(t, err)
		require.True(t, ok)
		ts += 100
	}
	for i := 0; i < 14; i++ {
		_, _, err := m.IngestFrame(detect.RawFrame{TimestampMs: ts})
		require.NoError(t, err)
		ts += 100
	}
}

func TestStartStopLifecycle(t *testing.T) {
	t.Parallel()
	store := &fakeStore{}
	m := NewManager(Config{Store: store})

	sess, err := m.Start("deadlift", "3-1-1")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "deadlift", sess.Exercise)
	assert.True(t, m.Active())

	_, err = m.Start("squat", "")
	assert.ErrorIs(t, err, ErrSessionActive)

	feedCycle(t, m, 1000)

	stats, err := m.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CompletedReps)
	assert.Equal(t, sess.ID, stats.SessionID)

	sum, err := m.Stop(context.Background())
	require.NoError(t, err)
	assert.False(t, m.Active())
	assert.Equal(t, sess.ID, sum.Session.ID)
	assert.False(t, sum.Session.StoppedAt.IsZero())
	require.Len(t, sum.Reps, 1)
	assert.Equal(t, 1, sum.Reps[0].RepNumber)
	assert.Equal(t, "deadlift", sum.Reps[0].Exercise)
	require.Len(t, sum.Paths, 1)

	assert.Equal(t, 1, store.count())

	last, ok := m.Last()
	require.True(t, ok)
	assert.Equal(t, sum.Session.ID, last.Session.ID)
}

func TestOperationsWithoutSession(t *testing.T) {
	t.Parallel()
	m := NewManager(Config{})

	_, err := m.Stop(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.ErrorIs(t, m.Reset(), ErrNoActiveSession)

	_, _, err = m.IngestFrame(boxFrame(1000, 0.5, 0.5))
	assert.ErrorIs(t, err, ErrNoActiveSession)

	_, err = m.Stats()
	assert.ErrorIs(t, err, ErrNoActiveSession)

	_, _, err = m.Snapshot()
	assert.ErrorIs(t, err, ErrNoActiveSession)

	_, err = m.ActivePaths()
	assert.ErrorIs(t, err, ErrNoActiveSession)

	_, err = m.Report()
	assert.ErrorIs(t, err, ErrNoData)

	_, ok := m.Current()
	assert.False(t, ok)
	_, ok = m.Last()
	assert.False(t, ok)
}

func TestStopRetriesAfterStoreFailure(t *testing.T) {
	t.Parallel()
	store := &fakeStore{err: errors.New("disk full")}
	m := NewManager(Config{Store: store})

	_, err := m.Start("squat", "")
	require.NoError(t, err)
	feedCycle(t, m, 1000)

	_, err = m.Stop(context.Background())
	require.Error(t, err)
	assert.True(t, m.Active(), "session stays active so the stop can be retried")

	// The recorded reps survive the failed stop.
	recs, _, err := m.Snapshot()
	require.NoError(t, err)
	require.Len(t, recs, 1)

	store.mu.Lock()
	store.err = nil
	store.mu.Unlock()

	sum, err := m.Stop(context.Background())
	require.NoError(t, err)
	assert.Len(t, sum.Reps, 1)
	assert.Equal(t, 1, store.count())
	assert.False(t, m.Active())
}

func TestResetClearsPipelineKeepsSession(t *testing.T) {
	t.Parallel()
	m := NewManager(Config{})

	sess, err := m.Start("squat", "")
	require.NoError(t, err)
	feedCycle(t, m, 1000)

	stats, err := m.Stats()
	require.NoError(t, err)
	require.Equal(t, 1, stats.CompletedReps)

	require.NoError(t, m.Reset())

	cur, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, sess.ID, cur.ID)

	stats, err = m.Stats()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.CompletedReps)
	assert.Equal(t, int64(0), stats.Frames)
	assert.Equal(t, 0, stats.ActivePaths)

	// Rep numbering restarts at 1 after a reset.
	feedCycle(t, m, 60_000)
	recs, _, err := m.Snapshot()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 1, recs[0].RepNumber)
}

func TestReportPrefersActiveSession(t *testing.T) {
	t.Parallel()
	m := NewManager(Config{})

	_, err := m.Start("bench", "")
	require.NoError(t, err)
	feedCycle(t, m, 1000)
	_, err = m.Stop(context.Background())
	require.NoError(t, err)

	// With no active session the report covers the last finished one.
	sum, err := m.Report()
	require.NoError(t, err)
	assert.Equal(t, "bench", sum.Session.Exercise)
	assert.Len(t, sum.Reps, 1)

	// A new active session takes precedence even before any reps complete.
	_, err = m.Start("squat", "")
	require.NoError(t, err)
	sum, err = m.Report()
	require.NoError(t, err)
	assert.Equal(t, "squat", sum.Session.Exercise)
	assert.Empty(t, sum.Reps)
}

func TestStatsElapsed(t *testing.T) {
	t.Parallel()
	t0 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	clock := timeutil.NewMockClock(t0)
	m := NewManager(Config{Clock: clock})

	sess, err := m.Start("squat", "")
	require.NoError(t, err)
	assert.Equal(t, t0, sess.StartedAt)

	clock.Advance(90 * time.Second)
	stats, err := m.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(90_000), stats.ElapsedMs)
	assert.Equal(t, "1:30", stats.Elapsed)

	sum, err := m.Stop(context.Background())
	require.NoError(t, err)
	assert.Equal(t, t0.Add(90*time.Second), sum.Session.StoppedAt)
	assert.Equal(t, "1:30", sum.Stats.Elapsed)
}
