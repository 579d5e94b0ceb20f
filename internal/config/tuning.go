package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for pipeline tuning
// parameters. The schema matches the /api/pipeline/params endpoint so the
// same JSON can be used for both startup configuration and runtime updates.
type TuningConfig struct {
	// Detection params
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty"`
	IoUThreshold        *float64 `json:"iou_threshold,omitempty"`
	MaxDetections       *int     `json:"max_detections,omitempty"`
	MinBoxArea          *float64 `json:"min_box_area,omitempty"`
	MaxBoxArea          *float64 `json:"max_box_area,omitempty"`
	MinAspect           *float64 `json:"min_aspect,omitempty"`
	MaxAspect           *float64 `json:"max_aspect,omitempty"`
	MaxCenterDrift      *float64 `json:"max_center_drift,omitempty"`
	RecentCenters       *int     `json:"recent_centers,omitempty"`
	HoldLastFrames      *int     `json:"hold_last_frames,omitempty"`

	// Path tracker params
	MaxJumpDistance    *float64 `json:"max_jump_distance,omitempty"`
	MaxSpeed           *float64 `json:"max_speed,omitempty"` // normalized units per second
	TrackingTolerance  *float64 `json:"tracking_tolerance,omitempty"`
	RecencyWindow      *string  `json:"recency_window,omitempty"` // duration string like "300ms"
	MaxActivePaths     *int     `json:"max_active_paths,omitempty"`
	MaxPathPoints      *int     `json:"max_path_points,omitempty"`
	KeepWindowFraction *float64 `json:"keep_window_fraction,omitempty"`
	MinPathPoints      *int     `json:"min_path_points,omitempty"`
	InactiveTimeout    *string  `json:"inactive_timeout,omitempty"` // duration string like "3s"
	CreationGrace      *string  `json:"creation_grace,omitempty"`
	CleanupInterval    *string  `json:"cleanup_interval,omitempty"`

	// Rep completion params
	StabilityWindow  *string  `json:"stability_window,omitempty"`
	LargePathPoints  *int     `json:"large_path_points,omitempty"`
	MinVerticalRange *float64 `json:"min_vertical_range,omitempty"`
	MinMovement      *float64 `json:"min_movement,omitempty"`
	MinRepDuration   *string  `json:"min_rep_duration,omitempty"`
	MaxRepDuration   *string  `json:"max_rep_duration,omitempty"`
	MinShapePoints   *int     `json:"min_shape_points,omitempty"`

	// Quality analyzer params
	CalibrationMetersPerUnit *float64 `json:"calibration_m_per_unit,omitempty"`
	AnalysisMinPoints        *int     `json:"analysis_min_points,omitempty"`
	MinValidDistance         *float64 `json:"min_valid_distance,omitempty"`
	MinValidRange            *float64 `json:"min_valid_range,omitempty"`

	// Sub-score weights for the composite quality score.
	ScoreCompletenessWeight *float64 `json:"score_completeness_weight,omitempty"`
	ScoreEfficiencyWeight   *float64 `json:"score_efficiency_weight,omitempty"`
	ScoreDensityWeight      *float64 `json:"score_density_weight,omitempty"`
	ScoreSmoothnessWeight   *float64 `json:"score_smoothness_weight,omitempty"`

	// Sub-score bucket scales. Edges and scores are parallel: the scores
	// array carries one more entry than the edges array, the last entry
	// being the floor for values that reach no edge. Completeness,
	// efficiency and density edges are descending (value >= edge wins);
	// smoothness edges are ascending (value <= edge wins). A nil slice
	// keeps the built-in scale.
	CompletenessBucketEdgesM []float64 `json:"completeness_bucket_edges_m,omitempty"` // calibrated vertical range, meters
	CompletenessBucketScores []int     `json:"completeness_bucket_scores,omitempty"`
	EfficiencyBucketEdges    []float64 `json:"efficiency_bucket_edges,omitempty"` // vertical-range / total-distance ratio
	EfficiencyBucketScores   []int     `json:"efficiency_bucket_scores,omitempty"`
	DensityBucketEdges       []float64 `json:"density_bucket_edges,omitempty"` // path point count
	DensityBucketScores      []int     `json:"density_bucket_scores,omitempty"`
	SmoothnessBucketEdges    []float64 `json:"smoothness_bucket_edges,omitempty"` // reversals per point
	SmoothnessBucketScores   []int     `json:"smoothness_bucket_scores,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field set to its
// built-in default. The values mirror config/tuning.defaults.json.
func DefaultTuningConfig() *TuningConfig {
	return &TuningConfig{
		ConfidenceThreshold: ptrFloat64(0.25),
		IoUThreshold:        ptrFloat64(0.45),
		MaxDetections:       ptrInt(5),
		MinBoxArea:          ptrFloat64(0.0004),
		MaxBoxArea:          ptrFloat64(0.25),
		MinAspect:           ptrFloat64(0.25),
		MaxAspect:           ptrFloat64(4.0),
		MaxCenterDrift:      ptrFloat64(0.25),
		RecentCenters:       ptrInt(5),
		HoldLastFrames:      ptrInt(5),

		MaxJumpDistance:    ptrFloat64(0.12),
		MaxSpeed:           ptrFloat64(1.5),
		TrackingTolerance:  ptrFloat64(0.05),
		RecencyWindow:      ptrString("300ms"),
		MaxActivePaths:     ptrInt(4),
		MaxPathPoints:      ptrInt(900),
		KeepWindowFraction: ptrFloat64(0.7),
		MinPathPoints:      ptrInt(10),
		InactiveTimeout:    ptrString("3s"),
		CreationGrace:      ptrString("1500ms"),
		CleanupInterval:    ptrString("1s"),

		StabilityWindow:  ptrString("700ms"),
		LargePathPoints:  ptrInt(120),
		MinVerticalRange: ptrFloat64(0.06),
		MinMovement:      ptrFloat64(0.02),
		MinRepDuration:   ptrString("500ms"),
		MaxRepDuration:   ptrString("30s"),
		MinShapePoints:   ptrInt(10),

		CalibrationMetersPerUnit: ptrFloat64(2.0),
		AnalysisMinPoints:        ptrInt(5),
		MinValidDistance:         ptrFloat64(0.01),
		MinValidRange:            ptrFloat64(0.005),

		ScoreCompletenessWeight: ptrFloat64(0.3),
		ScoreEfficiencyWeight:   ptrFloat64(0.3),
		ScoreDensityWeight:      ptrFloat64(0.2),
		ScoreSmoothnessWeight:   ptrFloat64(0.2),

		CompletenessBucketEdgesM: []float64{0.6, 0.45, 0.3, 0.18, 0.12},
		CompletenessBucketScores: []int{100, 90, 75, 60, 45, 30},
		EfficiencyBucketEdges:    []float64{0.45, 0.35, 0.25, 0.15},
		EfficiencyBucketScores:   []int{100, 85, 70, 55, 40},
		DensityBucketEdges:       []float64{60, 40, 25, 15},
		DensityBucketScores:      []int{100, 90, 75, 60, 45},
		SmoothnessBucketEdges:    []float64{0.05, 0.1, 0.2, 0.35},
		SmoothnessBucketScores:   []int{100, 85, 70, 50, 30},
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON into empty config. The Get* methods provide fallback
	// defaults for any fields not specified in the JSON.
	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	// Try paths from current dir up to repo root
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/motion/paths/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	unit := func(name string, v *float64) error {
		if v != nil && (*v < 0 || *v > 1) {
			return fmt.Errorf("%s must be between 0 and 1, got %f", name, *v)
		}
		return nil
	}
	if err := unit("confidence_threshold", c.ConfidenceThreshold); err != nil {
		return err
	}
	if err := unit("iou_threshold", c.IoUThreshold); err != nil {
		return err
	}
	if err := unit("tracking_tolerance", c.TrackingTolerance); err != nil {
		return err
	}
	if err := unit("max_jump_distance", c.MaxJumpDistance); err != nil {
		return err
	}
	if err := unit("max_center_drift", c.MaxCenterDrift); err != nil {
		return err
	}
	if err := unit("min_vertical_range", c.MinVerticalRange); err != nil {
		return err
	}
	if err := unit("min_movement", c.MinMovement); err != nil {
		return err
	}

	if c.KeepWindowFraction != nil {
		if *c.KeepWindowFraction <= 0 || *c.KeepWindowFraction > 1 {
			return fmt.Errorf("keep_window_fraction must be in (0, 1], got %f", *c.KeepWindowFraction)
		}
	}

	positive := func(name string, v *int) error {
		if v != nil && *v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, *v)
		}
		return nil
	}
	for name, v := range map[string]*int{
		"max_detections":      c.MaxDetections,
		"recent_centers":      c.RecentCenters,
		"max_active_paths":    c.MaxActivePaths,
		"max_path_points":     c.MaxPathPoints,
		"min_path_points":     c.MinPathPoints,
		"large_path_points":   c.LargePathPoints,
		"min_shape_points":    c.MinShapePoints,
		"analysis_min_points": c.AnalysisMinPoints,
	} {
		if err := positive(name, v); err != nil {
			return err
		}
	}
	if c.HoldLastFrames != nil && *c.HoldLastFrames < 0 {
		return fmt.Errorf("hold_last_frames must be non-negative, got %d", *c.HoldLastFrames)
	}

	durations := map[string]*string{
		"recency_window":   c.RecencyWindow,
		"inactive_timeout": c.InactiveTimeout,
		"creation_grace":   c.CreationGrace,
		"cleanup_interval": c.CleanupInterval,
		"stability_window": c.StabilityWindow,
		"min_rep_duration": c.MinRepDuration,
		"max_rep_duration": c.MaxRepDuration,
	}
	for name, v := range durations {
		if v != nil && *v != "" {
			if _, err := time.ParseDuration(*v); err != nil {
				return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
			}
		}
	}

	if c.GetMinRepDuration() >= c.GetMaxRepDuration() {
		return fmt.Errorf("min_rep_duration %v must be below max_rep_duration %v",
			c.GetMinRepDuration(), c.GetMaxRepDuration())
	}
	if c.GetMinBoxArea() >= c.GetMaxBoxArea() {
		return fmt.Errorf("min_box_area %f must be below max_box_area %f",
			c.GetMinBoxArea(), c.GetMaxBoxArea())
	}
	if c.GetMinAspect() >= c.GetMaxAspect() {
		return fmt.Errorf("min_aspect %f must be below max_aspect %f",
			c.GetMinAspect(), c.GetMaxAspect())
	}

	for name, v := range map[string]*float64{
		"score_completeness_weight": c.ScoreCompletenessWeight,
		"score_efficiency_weight":   c.ScoreEfficiencyWeight,
		"score_density_weight":      c.ScoreDensityWeight,
		"score_smoothness_weight":   c.ScoreSmoothnessWeight,
	} {
		if err := unit(name, v); err != nil {
			return err
		}
	}

	scales := []struct {
		name   string
		edges  []float64
		scores []int
	}{
		{"completeness_bucket", c.CompletenessBucketEdgesM, c.CompletenessBucketScores},
		{"efficiency_bucket", c.EfficiencyBucketEdges, c.EfficiencyBucketScores},
		{"density_bucket", c.DensityBucketEdges, c.DensityBucketScores},
		{"smoothness_bucket", c.SmoothnessBucketEdges, c.SmoothnessBucketScores},
	}
	for _, s := range scales {
		if s.edges == nil && s.scores == nil {
			continue
		}
		if len(s.edges) == 0 {
			return fmt.Errorf("%s_edges must have at least one edge", s.name)
		}
		if len(s.scores) != len(s.edges)+1 {
			return fmt.Errorf("%s_scores must have %d entries (edges+1), got %d",
				s.name, len(s.edges)+1, len(s.scores))
		}
		ascending := len(s.edges) >= 2 && s.edges[0] < s.edges[1]
		for i := 1; i < len(s.edges); i++ {
			if ascending && s.edges[i] <= s.edges[i-1] {
				return fmt.Errorf("%s_edges must be strictly monotonic", s.name)
			}
			if !ascending && s.edges[i] >= s.edges[i-1] {
				return fmt.Errorf("%s_edges must be strictly monotonic", s.name)
			}
		}
		for _, score := range s.scores {
			if score < 0 || score > 100 {
				return fmt.Errorf("%s_scores entries must be in [0, 100], got %d", s.name, score)
			}
		}
	}

	return nil
}

func (c *TuningConfig) duration(v *string, fallback time.Duration) time.Duration {
	if v == nil || *v == "" {
		return fallback
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fallback
	}
	return d
}

// GetConfidenceThreshold returns the confidence_threshold value or the default.
func (c *TuningConfig) GetConfidenceThreshold() float64 {
	if c.ConfidenceThreshold == nil {
		return 0.25
	}
	return *c.ConfidenceThreshold
}

// GetIoUThreshold returns the iou_threshold value or the default.
func (c *TuningConfig) GetIoUThreshold() float64 {
	if c.IoUThreshold == nil {
		return 0.45
	}
	return *c.IoUThreshold
}

// GetMaxDetections returns the max_detections value or the default.
func (c *TuningConfig) GetMaxDetections() int {
	if c.MaxDetections == nil {
		return 5
	}
	return *c.MaxDetections
}

// GetMinBoxArea returns the min_box_area value or the default.
func (c *TuningConfig) GetMinBoxArea() float64 {
	if c.MinBoxArea == nil {
		return 0.0004
	}
	return *c.MinBoxArea
}

// GetMaxBoxArea returns the max_box_area value or the default.
func (c *TuningConfig) GetMaxBoxArea() float64 {
	if c.MaxBoxArea == nil {
		return 0.25
	}
	return *c.MaxBoxArea
}

// GetMinAspect returns the min_aspect value or the default.
func (c *TuningConfig) GetMinAspect() float64 {
	if c.MinAspect == nil {
		return 0.25
	}
	return *c.MinAspect
}

// GetMaxAspect returns the max_aspect value or the default.
func (c *TuningConfig) GetMaxAspect() float64 {
	if c.MaxAspect == nil {
		return 4.0
	}
	return *c.MaxAspect
}

// GetMaxCenterDrift returns the max_center_drift value or the default.
func (c *TuningConfig) GetMaxCenterDrift() float64 {
	if c.MaxCenterDrift == nil {
		return 0.25
	}
	return *c.MaxCenterDrift
}

// GetRecentCenters returns the recent_centers value or the default.
func (c *TuningConfig) GetRecentCenters() int {
	if c.RecentCenters == nil {
		return 5
	}
	return *c.RecentCenters
}

// GetHoldLastFrames returns the hold_last_frames value or the default.
func (c *TuningConfig) GetHoldLastFrames() int {
	if c.HoldLastFrames == nil {
		return 5
	}
	return *c.HoldLastFrames
}

// GetMaxJumpDistance returns the max_jump_distance value or the default.
func (c *TuningConfig) GetMaxJumpDistance() float64 {
	if c.MaxJumpDistance == nil {
		return 0.12
	}
	return *c.MaxJumpDistance
}

// GetMaxSpeed returns the max_speed value or the default.
func (c *TuningConfig) GetMaxSpeed() float64 {
	if c.MaxSpeed == nil {
		return 1.5
	}
	return *c.MaxSpeed
}

// GetTrackingTolerance returns the tracking_tolerance value or the default.
func (c *TuningConfig) GetTrackingTolerance() float64 {
	if c.TrackingTolerance == nil {
		return 0.05
	}
	return *c.TrackingTolerance
}

// GetRecencyWindow parses and returns the RecencyWindow as a time.Duration.
func (c *TuningConfig) GetRecencyWindow() time.Duration {
	return c.duration(c.RecencyWindow, 300*time.Millisecond)
}

// GetMaxActivePaths returns the max_active_paths value or the default.
// One path is the bar; the spare slots absorb transient ghost detections
// without evicting it.
func (c *TuningConfig) GetMaxActivePaths() int {
	if c.MaxActivePaths == nil {
		return 4
	}
	return *c.MaxActivePaths
}

// GetMaxPathPoints returns the max_path_points value or the default.
func (c *TuningConfig) GetMaxPathPoints() int {
	if c.MaxPathPoints == nil {
		return 900
	}
	return *c.MaxPathPoints
}

// GetKeepWindowFraction returns the keep_window_fraction value or the default.
func (c *TuningConfig) GetKeepWindowFraction() float64 {
	if c.KeepWindowFraction == nil {
		return 0.7
	}
	return *c.KeepWindowFraction
}

// GetMinPathPoints returns the min_path_points value or the default.
func (c *TuningConfig) GetMinPathPoints() int {
	if c.MinPathPoints == nil {
		return 10
	}
	return *c.MinPathPoints
}

// GetInactiveTimeout parses and returns the InactiveTimeout as a time.Duration.
func (c *TuningConfig) GetInactiveTimeout() time.Duration {
	return c.duration(c.InactiveTimeout, 3*time.Second)
}

// GetCreationGrace parses and returns the CreationGrace as a time.Duration.
func (c *TuningConfig) GetCreationGrace() time.Duration {
	return c.duration(c.CreationGrace, 1500*time.Millisecond)
}

// GetCleanupInterval parses and returns the CleanupInterval as a time.Duration.
func (c *TuningConfig) GetCleanupInterval() time.Duration {
	return c.duration(c.CleanupInterval, time.Second)
}

// GetStabilityWindow parses and returns the StabilityWindow as a time.Duration.
func (c *TuningConfig) GetStabilityWindow() time.Duration {
	return c.duration(c.StabilityWindow, 700*time.Millisecond)
}

// GetLargePathPoints returns the large_path_points value or the default.
func (c *TuningConfig) GetLargePathPoints() int {
	if c.LargePathPoints == nil {
		return 120
	}
	return *c.LargePathPoints
}

// GetMinVerticalRange returns the min_vertical_range value or the default.
func (c *TuningConfig) GetMinVerticalRange() float64 {
	if c.MinVerticalRange == nil {
		return 0.06
	}
	return *c.MinVerticalRange
}

// GetMinMovement returns the min_movement value or the default.
func (c *TuningConfig) GetMinMovement() float64 {
	if c.MinMovement == nil {
		return 0.02
	}
	return *c.MinMovement
}

// GetMinRepDuration parses and returns the MinRepDuration as a time.Duration.
func (c *TuningConfig) GetMinRepDuration() time.Duration {
	return c.duration(c.MinRepDuration, 500*time.Millisecond)
}

// GetMaxRepDuration parses and returns the MaxRepDuration as a time.Duration.
func (c *TuningConfig) GetMaxRepDuration() time.Duration {
	return c.duration(c.MaxRepDuration, 30*time.Second)
}

// GetMinShapePoints returns the min_shape_points value or the default.
func (c *TuningConfig) GetMinShapePoints() int {
	if c.MinShapePoints == nil {
		return 10
	}
	return *c.MinShapePoints
}

// GetCalibrationMetersPerUnit returns the calibration_m_per_unit value or the default.
func (c *TuningConfig) GetCalibrationMetersPerUnit() float64 {
	if c.CalibrationMetersPerUnit == nil {
		return 2.0
	}
	return *c.CalibrationMetersPerUnit
}

// GetAnalysisMinPoints returns the analysis_min_points value or the default.
func (c *TuningConfig) GetAnalysisMinPoints() int {
	if c.AnalysisMinPoints == nil {
		return 5
	}
	return *c.AnalysisMinPoints
}

// GetMinValidDistance returns the min_valid_distance value or the default.
func (c *TuningConfig) GetMinValidDistance() float64 {
	if c.MinValidDistance == nil {
		return 0.01
	}
	return *c.MinValidDistance
}

// GetMinValidRange returns the min_valid_range value or the default.
func (c *TuningConfig) GetMinValidRange() float64 {
	if c.MinValidRange == nil {
		return 0.005
	}
	return *c.MinValidRange
}

// GetScoreCompletenessWeight returns the score_completeness_weight value or the default.
func (c *TuningConfig) GetScoreCompletenessWeight() float64 {
	if c.ScoreCompletenessWeight == nil {
		return 0.3
	}
	return *c.ScoreCompletenessWeight
}

// GetScoreEfficiencyWeight returns the score_efficiency_weight value or the default.
func (c *TuningConfig) GetScoreEfficiencyWeight() float64 {
	if c.ScoreEfficiencyWeight == nil {
		return 0.3
	}
	return *c.ScoreEfficiencyWeight
}

// GetScoreDensityWeight returns the score_density_weight value or the default.
func (c *TuningConfig) GetScoreDensityWeight() float64 {
	if c.ScoreDensityWeight == nil {
		return 0.2
	}
	return *c.ScoreDensityWeight
}

// GetScoreSmoothnessWeight returns the score_smoothness_weight value or the default.
func (c *TuningConfig) GetScoreSmoothnessWeight() float64 {
	if c.ScoreSmoothnessWeight == nil {
		return 0.2
	}
	return *c.ScoreSmoothnessWeight
}

// GetCompletenessBucketEdgesM returns the completeness bucket edges or the default.
func (c *TuningConfig) GetCompletenessBucketEdgesM() []float64 {
	if c.CompletenessBucketEdgesM == nil {
		return []float64{0.6, 0.45, 0.3, 0.18, 0.12}
	}
	return c.CompletenessBucketEdgesM
}

// GetCompletenessBucketScores returns the completeness bucket scores or the default.
func (c *TuningConfig) GetCompletenessBucketScores() []int {
	if c.CompletenessBucketScores == nil {
		return []int{100, 90, 75, 60, 45, 30}
	}
	return c.CompletenessBucketScores
}

// GetEfficiencyBucketEdges returns the efficiency bucket edges or the default.
func (c *TuningConfig) GetEfficiencyBucketEdges() []float64 {
	if c.EfficiencyBucketEdges == nil {
		return []float64{0.45, 0.35, 0.25, 0.15}
	}
	return c.EfficiencyBucketEdges
}

// GetEfficiencyBucketScores returns the efficiency bucket scores or the default.
func (c *TuningConfig) GetEfficiencyBucketScores() []int {
	if c.EfficiencyBucketScores == nil {
		return []int{100, 85, 70, 55, 40}
	}
	return c.EfficiencyBucketScores
}

// GetDensityBucketEdges returns the density bucket edges or the default.
func (c *TuningConfig) GetDensityBucketEdges() []float64 {
	if c.DensityBucketEdges == nil {
		return []float64{60, 40, 25, 15}
	}
	return c.DensityBucketEdges
}

// GetDensityBucketScores returns the density bucket scores or the default.
func (c *TuningConfig) GetDensityBucketScores() []int {
	if c.DensityBucketScores == nil {
		return []int{100, 90, 75, 60, 45}
	}
	return c.DensityBucketScores
}

// GetSmoothnessBucketEdges returns the smoothness bucket edges or the default.
func (c *TuningConfig) GetSmoothnessBucketEdges() []float64 {
	if c.SmoothnessBucketEdges == nil {
		return []float64{0.05, 0.1, 0.2, 0.35}
	}
	return c.SmoothnessBucketEdges
}

// GetSmoothnessBucketScores returns the smoothness bucket scores or the default.
func (c *TuningConfig) GetSmoothnessBucketScores() []int {
	if c.SmoothnessBucketScores == nil {
		return []int{100, 85, 70, 50, 30}
	}
	return c.SmoothnessBucketScores
}
