package reps

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlab-data/barpath.report/internal/motion/paths"
)

func testCompletionConfig() CompletionConfig {
	return CompletionConfig{
		StabilityWindow:  700 * time.Millisecond,
		LargePathPoints:  120,
		MinVerticalRange: 0.06,
		MinMovement:      0.02,
		MinRepDuration:   500 * time.Millisecond,
		MaxRepDuration:   30 * time.Second,
		MinShapePoints:   10,
	}
}

// pathFromYs builds a path with constant x and the given y samples spaced
// stepMs apart.
func pathFromYs(id int64, ys []float64, startMs, stepMs int64) paths.Path {
	pts := make([]paths.Point, len(ys))
	for i, y := range ys {
		pts[i] = paths.Point{X: 0.5, Y: y, TimestampMs: startMs + int64(i)*stepMs}
	}
	return paths.Path{ID: id, Points: pts, CreatedMs: startMs}
}

// triangleYs produces n samples moving from base to peak and back: the
// first half ascends to the peak, the second half descends to base.
func triangleYs(n int, base, peak float64) []float64 {
	ys := make([]float64, n)
	up := n / 2
	down := n - up
	for i := 0; i < up; i++ {
		ys[i] = base + (peak-base)*float64(i)/float64(up-1)
	}
	for i := 0; i < down; i++ {
		ys[up+i] = peak - (peak-base)*float64(i+1)/float64(down)
	}
	return ys
}

// flatYs produces n identical samples.
func flatYs(n int, y float64) []float64 {
	ys := make([]float64, n)
	for i := range ys {
		ys[i] = y
	}
	return ys
}

// rampYs produces n samples climbing monotonically from start to end.
func rampYs(n int, start, end float64) []float64 {
	ys := make([]float64, n)
	for i := range ys {
		ys[i] = start + (end-start)*float64(i)/float64(n-1)
	}
	return ys
}

func TestEvaluateFullCycle(t *testing.T) {
	t.Parallel()
	d := NewDetector(testCompletionConfig())

	// 20 points dipping 0.3 -> 0.7 -> 0.3 (screen y grows downward, so the
	// bar went down and came back up), 100ms apart, judged 800ms after the
	// last point.
	p := pathFromYs(1, triangleYs(20, 0.3, 0.7), 1000, 100)
	ev := d.Evaluate(p, p.Last().TimestampMs+800)

	assert.Equal(t, VerdictAccepted, ev.Verdict)
	assert.True(t, ev.Accepted())
	assert.Equal(t, PatternDownUp, ev.Pattern)
	assert.InDelta(t, 0.4, ev.VerticalRange, 1e-9)
	assert.Equal(t, int64(1900), ev.DurationMs)
	assert.True(t, ev.AmplitudeOK)
	assert.True(t, ev.ShapeOK)
	assert.True(t, ev.DurationOK)
	assert.True(t, ev.DensityOK)
}

func TestEvaluateInvertedCycle(t *testing.T) {
	t.Parallel()
	d := NewDetector(testCompletionConfig())

	// Bar rises first, then returns: y 0.7 -> 0.3 -> 0.7.
	p := pathFromYs(1, triangleYs(20, 0.7, 0.3), 1000, 100)
	ev := d.Evaluate(p, p.Last().TimestampMs+800)

	assert.Equal(t, VerdictAccepted, ev.Verdict)
	assert.Equal(t, PatternUpDown, ev.Pattern)
}

func TestEvaluateStaysGrowing(t *testing.T) {
	t.Parallel()
	d := NewDetector(testCompletionConfig())

	t.Run("points still arriving", func(t *testing.T) {
		t.Parallel()
		p := pathFromYs(1, triangleYs(20, 0.3, 0.7), 1000, 100)
		// Judged 100ms after the last point: inside the stability window
		// and under the large-path size.
		ev := d.Evaluate(p, p.Last().TimestampMs+100)
		assert.Equal(t, VerdictGrowing, ev.Verdict)
	})

	t.Run("too few points never judged", func(t *testing.T) {
		t.Parallel()
		p := pathFromYs(1, triangleYs(9, 0.3, 0.7), 1000, 100)
		ev := d.Evaluate(p, p.Last().TimestampMs+10_000)
		assert.Equal(t, VerdictGrowing, ev.Verdict)
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()
		ev := d.Evaluate(paths.Path{ID: 1}, 5000)
		assert.Equal(t, VerdictGrowing, ev.Verdict)
	})
}

func TestEvaluateLargePathJudgedWhileActive(t *testing.T) {
	t.Parallel()
	cfg := testCompletionConfig()
	cfg.LargePathPoints = 20
	d := NewDetector(cfg)

	// Judged at the very moment the last point arrived: no idle time, but
	// the path hit the large-path size, covering slow continuous reps.
	p := pathFromYs(1, triangleYs(20, 0.3, 0.7), 1000, 100)
	ev := d.Evaluate(p, p.Last().TimestampMs)
	assert.Equal(t, VerdictAccepted, ev.Verdict)
}

func TestEvaluateZeroRangeNeverAccepted(t *testing.T) {
	t.Parallel()
	d := NewDetector(testCompletionConfig())

	// Plenty of points and duration, zero vertical range.
	p := pathFromYs(1, flatYs(20, 0.5), 1000, 100)
	ev := d.Evaluate(p, p.Last().TimestampMs+800)

	assert.Equal(t, VerdictCandidate, ev.Verdict)
	assert.False(t, ev.Accepted())
	assert.False(t, ev.AmplitudeOK)
	assert.False(t, ev.ShapeOK)
	assert.True(t, ev.DurationOK)
	assert.True(t, ev.DensityOK)
}

func TestEvaluateCriteria(t *testing.T) {
	t.Parallel()
	d := NewDetector(testCompletionConfig())

	tests := []struct {
		name      string
		path      paths.Path
		amplitude bool
		shape     bool
		duration  bool
	}{
		{
			// Clear down-up shape but peak-to-peak under 0.06.
			name:      "amplitude too small",
			path:      pathFromYs(1, triangleYs(20, 0.30, 0.35), 1000, 100),
			amplitude: false,
			shape:     true,
			duration:  true,
		},
		{
			// Monotone ramp: big amplitude, no return movement.
			name:      "no cycle shape",
			path:      pathFromYs(1, rampYs(20, 0.3, 0.7), 1000, 100),
			amplitude: true,
			shape:     false,
			duration:  true,
		},
		{
			// Full cycle squeezed into 190ms.
			name:      "too fast",
			path:      pathFromYs(1, triangleYs(20, 0.3, 0.7), 1000, 10),
			amplitude: true,
			shape:     true,
			duration:  false,
		},
		{
			// Full cycle stretched over 38s.
			name:      "too slow",
			path:      pathFromYs(1, triangleYs(20, 0.3, 0.7), 1000, 2000),
			amplitude: true,
			shape:     true,
			duration:  false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ev := d.Evaluate(tc.path, tc.path.Last().TimestampMs+800)
			require.Equal(t, VerdictCandidate, ev.Verdict)
			assert.Equal(t, tc.amplitude, ev.AmplitudeOK, "amplitude")
			assert.Equal(t, tc.shape, ev.ShapeOK, "shape")
			assert.Equal(t, tc.duration, ev.DurationOK, "duration")
			assert.False(t, ev.Accepted())
		})
	}
}

func TestSweep(t *testing.T) {
	t.Parallel()
	d := NewDetector(testCompletionConfig())

	accepted := pathFromYs(7, triangleYs(20, 0.3, 0.7), 1000, 100)
	flat := pathFromYs(8, flatYs(20, 0.5), 1000, 100)
	growing := pathFromYs(9, triangleYs(20, 0.3, 0.7), 1800, 100)

	// Judged 800ms after the first two paths went quiet; the third path's
	// last point is only 100ms old.
	nowMs := accepted.Last().TimestampMs + 800
	out := d.Sweep([]paths.Path{accepted, flat, growing}, nowMs)

	require.Len(t, out, 2)
	assert.Equal(t, int64(7), out[0].PathID)
	assert.True(t, out[0].Accepted())
	assert.Equal(t, int64(8), out[1].PathID)
	assert.Equal(t, VerdictCandidate, out[1].Verdict)
}

func TestShapePattern(t *testing.T) {
	t.Parallel()

	toPoints := func(ys []float64) []paths.Point {
		pts := make([]paths.Point, len(ys))
		for i, y := range ys {
			pts[i] = paths.Point{X: 0.5, Y: y, TimestampMs: int64(i)}
		}
		return pts
	}

	assert.Equal(t, PatternDownUp, shapePattern(toPoints(triangleYs(20, 0.3, 0.7)), 0.02))
	assert.Equal(t, PatternUpDown, shapePattern(toPoints(triangleYs(20, 0.7, 0.3)), 0.02))
	assert.Equal(t, PatternNone, shapePattern(toPoints(flatYs(20, 0.5)), 0.02))
	assert.Equal(t, PatternNone, shapePattern(toPoints(rampYs(20, 0.3, 0.7)), 0.02))
	assert.Equal(t, PatternNone, shapePattern(nil, 0.02))
	// Movement exactly at the threshold does not register: the middle must
	// clear the edges by more than minMovement.
	assert.Equal(t, PatternNone, shapePattern(toPoints(triangleYs(20, 0.5, 0.5)), 0))
}

func TestCompletionConfigFromTuning(t *testing.T) {
	cfg := DefaultCompletionConfig()
	assert.Equal(t, 700*time.Millisecond, cfg.StabilityWindow)
	assert.Equal(t, 120, cfg.LargePathPoints)
	assert.InDelta(t, 0.06, cfg.MinVerticalRange, 1e-9)
	assert.InDelta(t, 0.02, cfg.MinMovement, 1e-9)
	assert.Equal(t, 500*time.Millisecond, cfg.MinRepDuration)
	assert.Equal(t, 30*time.Second, cfg.MaxRepDuration)
	assert.Equal(t, 10, cfg.MinShapePoints)
}
