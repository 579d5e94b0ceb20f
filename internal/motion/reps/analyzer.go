package reps

import (
	"math"

	"github.com/liftlab-data/barpath.report/internal/config"
	"github.com/liftlab-data/barpath.report/internal/motion"
	"github.com/liftlab-data/barpath.report/internal/motion/paths"
	"github.com/liftlab-data/barpath.report/internal/units"
)

// reversalNoise is the vertical wiggle, in normalized units, below which a
// direction change counts as sensor noise rather than bar movement.
const reversalNoise = 0.005

// Record is the immutable outcome of analyzing one completed repetition.
// Distances are calibrated to meters; the display layer converts to other
// units on demand.
type Record struct {
	RepNumber int    `json:"rep_number"`
	PathID    int64  `json:"path_id"`
	Exercise  string `json:"exercise"`
	Tempo     string `json:"tempo"`

	TotalDistanceM float64 `json:"total_distance_m"`
	VerticalRangeM float64 `json:"vertical_range_m"`
	DurationMs     int64   `json:"duration_ms"`
	PointCount     int     `json:"point_count"`
	CompletedAtMs  int64   `json:"completed_at_ms"`

	Score        int `json:"score"`
	Completeness int `json:"completeness"`
	Efficiency   int `json:"efficiency"`
	Density      int `json:"density"`
	Smoothness   int `json:"smoothness"`
}

// ScoreScale maps a metric value onto a bucket score. Edges and Scores
// are parallel: Scores carries one more entry than Edges, the last being
// the floor for values that reach no edge. Descending edges bucket with
// >= (bigger is better), ascending edges with <= (smaller is better).
type ScoreScale struct {
	Edges  []float64
	Scores []int
}

// Score returns the bucket score for v. A zero-value scale scores 0.
func (s ScoreScale) Score(v float64) int {
	if len(s.Scores) == 0 {
		return 0
	}
	ascending := len(s.Edges) >= 2 && s.Edges[0] < s.Edges[1]
	for i, edge := range s.Edges {
		if ascending && v <= edge {
			return s.Scores[i]
		}
		if !ascending && v >= edge {
			return s.Scores[i]
		}
	}
	return s.Scores[len(s.Scores)-1]
}

// AnalyzerConfig holds configuration parameters for the quality analyzer.
// The validity floors apply to normalized values, before calibration.
type AnalyzerConfig struct {
	CalibrationMetersPerUnit float64 // Physical meters per normalized frame unit
	MinPoints                int     // Points below which a path is not analyzable
	MinValidDistance         float64 // Total travel floor (normalized)
	MinValidRange            float64 // Vertical amplitude floor (normalized)

	// Sub-score weights. They should sum to 1; the composite is clamped
	// either way.
	CompletenessWeight float64
	EfficiencyWeight   float64
	DensityWeight      float64
	SmoothnessWeight   float64

	// Bucket scales for the four sub-scores. Completeness buckets the
	// calibrated vertical range in meters, efficiency the range/distance
	// ratio, density the point count, smoothness the reversals-per-point
	// ratio.
	CompletenessScale ScoreScale
	EfficiencyScale   ScoreScale
	DensityScale      ScoreScale
	SmoothnessScale   ScoreScale
}

// DefaultAnalyzerConfig returns analyzer configuration loaded from the
// canonical tuning defaults file (config/tuning.defaults.json).
// Panics if the file cannot be found — intended for tests and binaries
// that have already validated config availability.
func DefaultAnalyzerConfig() AnalyzerConfig {
	cfg := config.MustLoadDefaultConfig()
	return AnalyzerConfigFromTuning(cfg)
}

// AnalyzerConfigFromTuning builds an AnalyzerConfig from a loaded
// TuningConfig.
func AnalyzerConfigFromTuning(cfg *config.TuningConfig) AnalyzerConfig {
	return AnalyzerConfig{
		CalibrationMetersPerUnit: cfg.GetCalibrationMetersPerUnit(),
		MinPoints:                cfg.GetAnalysisMinPoints(),
		MinValidDistance:         cfg.GetMinValidDistance(),
		MinValidRange:            cfg.GetMinValidRange(),

		CompletenessWeight: cfg.GetScoreCompletenessWeight(),
		EfficiencyWeight:   cfg.GetScoreEfficiencyWeight(),
		DensityWeight:      cfg.GetScoreDensityWeight(),
		SmoothnessWeight:   cfg.GetScoreSmoothnessWeight(),

		CompletenessScale: ScoreScale{
			Edges:  cfg.GetCompletenessBucketEdgesM(),
			Scores: cfg.GetCompletenessBucketScores(),
		},
		EfficiencyScale: ScoreScale{
			Edges:  cfg.GetEfficiencyBucketEdges(),
			Scores: cfg.GetEfficiencyBucketScores(),
		},
		DensityScale: ScoreScale{
			Edges:  cfg.GetDensityBucketEdges(),
			Scores: cfg.GetDensityBucketScores(),
		},
		SmoothnessScale: ScoreScale{
			Edges:  cfg.GetSmoothnessBucketEdges(),
			Scores: cfg.GetSmoothnessBucketScores(),
		},
	}
}

// Analyzer converts completed paths into scored repetition records. It is
// stateless and safe for concurrent use: a record is a pure function of
// the path and labels.
type Analyzer struct {
	cfg AnalyzerConfig
}

// NewAnalyzer creates an Analyzer with the given configuration.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze scores one completed path. It returns false for degenerate
// input: too few points, or total travel or vertical amplitude under the
// validity floors. Such paths slipped past a loosely configured completion
// detector and are excluded from the report rather than treated as errors.
func (a *Analyzer) Analyze(p paths.Path, exercise, tempo string, repNumber int) (Record, bool) {
	n := p.Len()
	if n == 0 || n < a.cfg.MinPoints {
		motion.Diagf("rep %d rejected: %d points under analysis minimum %d",
			repNumber, n, a.cfg.MinPoints)
		return Record{}, false
	}

	dist := totalDistance(p.Points)
	rng := verticalRange(p.Points)
	if dist < a.cfg.MinValidDistance || rng < a.cfg.MinValidRange {
		motion.Diagf("rep %d rejected: degenerate path (distance=%.4f range=%.4f)",
			repNumber, dist, rng)
		return Record{}, false
	}

	// A clean full cycle travels about twice its vertical range, so this
	// ratio clusters near 0.5 for a tight bar path and falls toward zero
	// as the path wanders.
	ratio := 0.0
	if dist > 0 {
		ratio = rng / dist
	}
	revRatio := float64(countReversals(p.Points, reversalNoise)) / float64(n)

	cal := a.cfg.CalibrationMetersPerUnit
	rec := Record{
		RepNumber: repNumber,
		PathID:    p.ID,
		Exercise:  exercise,
		Tempo:     tempo,

		TotalDistanceM: units.Calibrate(dist, cal),
		VerticalRangeM: units.Calibrate(rng, cal),
		DurationMs:     p.DurationMs(),
		PointCount:     n,
		CompletedAtMs:  p.Last().TimestampMs,

		Completeness: a.cfg.CompletenessScale.Score(units.Calibrate(rng, cal)),
		Efficiency:   a.cfg.EfficiencyScale.Score(ratio),
		Density:      a.cfg.DensityScale.Score(float64(n)),
		Smoothness:   a.cfg.SmoothnessScale.Score(revRatio),
	}
	rec.Score = clampScore(a.cfg.CompletenessWeight*float64(rec.Completeness) +
		a.cfg.EfficiencyWeight*float64(rec.Efficiency) +
		a.cfg.DensityWeight*float64(rec.Density) +
		a.cfg.SmoothnessWeight*float64(rec.Smoothness))

	motion.Diagf("rep %d scored %d (completeness=%d efficiency=%d density=%d smoothness=%d)",
		repNumber, rec.Score, rec.Completeness, rec.Efficiency, rec.Density, rec.Smoothness)
	return rec, true
}

// totalDistance sums consecutive point-to-point distances in normalized
// units.
func totalDistance(points []paths.Point) float64 {
	var sum float64
	for i := 1; i < len(points); i++ {
		sum += math.Hypot(points[i].X-points[i-1].X, points[i].Y-points[i-1].Y)
	}
	return sum
}

// countReversals counts vertical direction changes larger than the noise
// floor.
func countReversals(points []paths.Point, noise float64) int {
	reversals := 0
	prevDir := 0
	for i := 1; i < len(points); i++ {
		dy := points[i].Y - points[i-1].Y
		if math.Abs(dy) < noise {
			continue
		}
		dir := 1
		if dy < 0 {
			dir = -1
		}
		if prevDir != 0 && dir != prevDir {
			reversals++
		}
		prevDir = dir
	}
	return reversals
}

// clampScore rounds the weighted sum and clamps it to the score range.
func clampScore(v float64) int {
	s := int(math.Round(v))
	if s < 10 {
		return 10
	}
	if s > 100 {
		return 100
	}
	return s
}
