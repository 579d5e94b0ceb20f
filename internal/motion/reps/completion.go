package reps

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/liftlab-data/barpath.report/internal/config"
	"github.com/liftlab-data/barpath.report/internal/motion"
	"github.com/liftlab-data/barpath.report/internal/motion/paths"
)

// Verdict classifies a path on the way to becoming a repetition.
type Verdict int

const (
	// VerdictGrowing means the path is still accumulating points and is
	// not ready to be judged.
	VerdictGrowing Verdict = iota
	// VerdictCandidate means the path is stable enough to judge but fails
	// at least one completion criterion. It stays active.
	VerdictCandidate
	// VerdictAccepted means all four completion criteria hold.
	VerdictAccepted
)

func (v Verdict) String() string {
	switch v {
	case VerdictGrowing:
		return "growing"
	case VerdictCandidate:
		return "candidate"
	case VerdictAccepted:
		return "accepted"
	default:
		return "unknown"
	}
}

// Pattern is the vertical shape class of a path. Screen y grows downward,
// so a bar that dips and comes back up has its middle y average above both
// edge averages.
type Pattern int

const (
	PatternNone Pattern = iota
	PatternDownUp
	PatternUpDown
)

func (p Pattern) String() string {
	switch p {
	case PatternDownUp:
		return "down-up"
	case PatternUpDown:
		return "up-down"
	default:
		return "none"
	}
}

// CompletionConfig holds configuration parameters for the completion
// detector.
type CompletionConfig struct {
	StabilityWindow  time.Duration // Idle time before a path is judged as a candidate
	LargePathPoints  int           // Size at which a still-growing path is judged anyway
	MinVerticalRange float64       // Peak-to-peak y amplitude floor (normalized)
	MinMovement      float64       // Middle-vs-edge y delta the shape test must exceed
	MinRepDuration   time.Duration // Shortest plausible rep
	MaxRepDuration   time.Duration // Longest plausible rep
	MinShapePoints   int           // Points needed for the shape test to be meaningful
}

// DefaultCompletionConfig returns completion configuration loaded from the
// canonical tuning defaults file (config/tuning.defaults.json).
// Panics if the file cannot be found — intended for tests and binaries
// that have already validated config availability.
func DefaultCompletionConfig() CompletionConfig {
	cfg := config.MustLoadDefaultConfig()
	return CompletionConfigFromTuning(cfg)
}

// CompletionConfigFromTuning builds a CompletionConfig from a loaded
// TuningConfig. Use this in production code where the TuningConfig is
// already loaded.
func CompletionConfigFromTuning(cfg *config.TuningConfig) CompletionConfig {
	return CompletionConfig{
		StabilityWindow:  cfg.GetStabilityWindow(),
		LargePathPoints:  cfg.GetLargePathPoints(),
		MinVerticalRange: cfg.GetMinVerticalRange(),
		MinMovement:      cfg.GetMinMovement(),
		MinRepDuration:   cfg.GetMinRepDuration(),
		MaxRepDuration:   cfg.GetMaxRepDuration(),
		MinShapePoints:   cfg.GetMinShapePoints(),
	}
}

// Evaluation is the result of judging one path at one instant.
type Evaluation struct {
	Verdict       Verdict
	Pattern       Pattern
	VerticalRange float64 // normalized peak-to-peak y amplitude
	DurationMs    int64   // first-to-last point span

	// Per-criterion breakdown, meaningful once Verdict is at least
	// candidate.
	AmplitudeOK bool
	ShapeOK     bool
	DurationOK  bool
	DensityOK   bool
}

// Accepted reports whether all four completion criteria hold.
func (e Evaluation) Accepted() bool { return e.Verdict == VerdictAccepted }

// Candidate pairs an evaluation with the path it judged.
type Candidate struct {
	PathID int64
	Evaluation
}

// Detector judges path snapshots for completed repetitions. It holds no
// per-path state: a path's verdict is a pure function of the snapshot and
// the evaluation instant, so the pipeline can re-judge the same path every
// frame without bookkeeping.
type Detector struct {
	cfg CompletionConfig
}

// NewDetector creates a Detector with the given configuration.
func NewDetector(cfg CompletionConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Sweep evaluates every path in a snapshot and returns the ones that
// reached at least candidate state. Accepted candidates are the caller's
// cue to detach the path from the tracker and hand it to the analyzer.
func (d *Detector) Sweep(active []paths.Path, nowMs int64) []Candidate {
	var out []Candidate
	for i := range active {
		ev := d.Evaluate(active[i], nowMs)
		if ev.Verdict == VerdictGrowing {
			continue
		}
		out = append(out, Candidate{PathID: active[i].ID, Evaluation: ev})
	}
	return out
}

// Evaluate judges one path at the given instant. A path becomes a
// candidate once it has the minimum point count and has either gone quiet
// for the stability window or grown past the large-path size. A candidate
// is accepted only when amplitude, shape, duration and density all pass.
func (d *Detector) Evaluate(p paths.Path, nowMs int64) Evaluation {
	ev := Evaluation{Verdict: VerdictGrowing, Pattern: PatternNone}

	n := p.Len()
	if n == 0 || n < d.cfg.MinShapePoints {
		return ev
	}
	idleMs := nowMs - p.Last().TimestampMs
	if idleMs < d.cfg.StabilityWindow.Milliseconds() && n < d.cfg.LargePathPoints {
		return ev
	}

	ev.Verdict = VerdictCandidate
	ev.VerticalRange = verticalRange(p.Points)
	ev.Pattern = shapePattern(p.Points, d.cfg.MinMovement)
	ev.DurationMs = p.DurationMs()

	dur := time.Duration(ev.DurationMs) * time.Millisecond
	ev.AmplitudeOK = ev.VerticalRange >= d.cfg.MinVerticalRange
	ev.ShapeOK = ev.Pattern != PatternNone
	ev.DurationOK = dur >= d.cfg.MinRepDuration && dur <= d.cfg.MaxRepDuration
	ev.DensityOK = n >= d.cfg.MinShapePoints

	if ev.AmplitudeOK && ev.ShapeOK && ev.DurationOK && ev.DensityOK {
		ev.Verdict = VerdictAccepted
	} else {
		motion.Tracef("path %d stayed candidate (amplitude=%t shape=%t duration=%t density=%t)",
			p.ID, ev.AmplitudeOK, ev.ShapeOK, ev.DurationOK, ev.DensityOK)
	}
	return ev
}

// verticalRange returns the peak-to-peak y amplitude of a point sequence.
func verticalRange(points []paths.Point) float64 {
	if len(points) == 0 {
		return 0
	}
	minY, maxY := points[0].Y, points[0].Y
	for _, pt := range points[1:] {
		if pt.Y < minY {
			minY = pt.Y
		}
		if pt.Y > maxY {
			maxY = pt.Y
		}
	}
	return maxY - minY
}

// shapePattern splits the sequence into leading, middle and trailing
// segments (outer quartiles vs the rest) and compares their mean y values.
// The middle must clear both edges by more than minMovement for a pattern
// to register; anything flatter classifies as no pattern.
func shapePattern(points []paths.Point, minMovement float64) Pattern {
	n := len(points)
	q := n / 4
	if q < 1 {
		return PatternNone
	}

	lead := meanY(points[:q])
	mid := meanY(points[q : n-q])
	trail := meanY(points[n-q:])

	if mid-lead > minMovement && mid-trail > minMovement {
		return PatternDownUp
	}
	if lead-mid > minMovement && trail-mid > minMovement {
		return PatternUpDown
	}
	return PatternNone
}

// meanY averages the y coordinates of a segment.
func meanY(points []paths.Point) float64 {
	ys := make([]float64, len(points))
	for i, pt := range points {
		ys[i] = pt.Y
	}
	return stat.Mean(ys, nil)
}
