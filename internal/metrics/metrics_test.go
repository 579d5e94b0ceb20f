package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlab-data/barpath.report/internal/motion/paths"
	"github.com/liftlab-data/barpath.report/internal/motion/pipeline"
	"github.com/liftlab-data/barpath.report/internal/motion/reps"
)

func scrape(t *testing.T, m *Metrics, updateGauges func()) string {
	t.Helper()

	srv := httptest.NewServer(m.Handler(updateGauges))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestSinksDriveCounters(t *testing.T) {
	t.Parallel()
	m := New()

	active := []paths.Path{{ID: 1}}
	m.PublishFrame(1000, nil, active)
	m.PublishFrame(1100, nil, active)
	m.RecordCompleted(reps.Record{RepNumber: 1, Score: 92}, paths.Path{ID: 1})

	body := scrape(t, m, nil)
	assert.Contains(t, body, "barpath_frames_total 2")
	assert.Contains(t, body, "barpath_reps_completed_total 1")
	assert.Contains(t, body, "barpath_active_paths 1")
	assert.Contains(t, body, "barpath_rep_score_sum 92")
	assert.Contains(t, body, "barpath_rep_score_count 1")
}

func TestSyncStatsSetsGauges(t *testing.T) {
	t.Parallel()
	m := New()

	m.SyncStats(pipeline.Stats{ActivePaths: 3, Dropped: 4, RejectedPoints: 5})

	body := scrape(t, m, nil)
	assert.Contains(t, body, "barpath_active_paths 3")
	assert.Contains(t, body, "barpath_frames_dropped 4")
	assert.Contains(t, body, "barpath_points_rejected 5")
}

func TestHandlerRefreshesGaugesBeforeScrape(t *testing.T) {
	t.Parallel()
	m := New()

	called := false
	body := scrape(t, m, func() {
		called = true
		m.SyncStats(pipeline.Stats{ActivePaths: 2})
	})

	assert.True(t, called)
	assert.Contains(t, body, "barpath_active_paths 2")
}
