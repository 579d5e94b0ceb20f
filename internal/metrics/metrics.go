// Package metrics exposes Prometheus instrumentation for the frame
// pipeline. The Metrics type implements the pipeline sink interfaces so
// it can be wired in as a RenderSink and RecordSink without the pipeline
// knowing about Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/liftlab-data/barpath.report/internal/motion/detect"
	"github.com/liftlab-data/barpath.report/internal/motion/paths"
	"github.com/liftlab-data/barpath.report/internal/motion/pipeline"
	"github.com/liftlab-data/barpath.report/internal/motion/reps"
)

// Metrics holds Prometheus counters and gauges for the barpath pipeline.
type Metrics struct {
	registry       *prometheus.Registry
	framesTotal    prometheus.Counter
	repsTotal      prometheus.Counter
	repScore       prometheus.Histogram
	activePaths    prometheus.Gauge
	droppedFrames  prometheus.Gauge
	rejectedPoints prometheus.Gauge
}

// New creates and registers the pipeline metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	framesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "barpath_frames_total",
		Help: "Total number of frames processed by the pipeline",
	})
	repsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "barpath_reps_completed_total",
		Help: "Total number of repetitions accepted and scored",
	})
	repScore := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "barpath_rep_score",
		Help:    "Distribution of repetition quality scores",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})
	activePaths := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "barpath_active_paths",
		Help: "Number of paths currently tracked",
	})
	droppedFrames := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "barpath_frames_dropped",
		Help: "Frames dropped by the in-flight latch this session",
	})
	rejectedPoints := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "barpath_points_rejected",
		Help: "Points rejected by the tracker noise gate this session",
	})

	registry.MustRegister(
		framesTotal,
		repsTotal,
		repScore,
		activePaths,
		droppedFrames,
		rejectedPoints,
	)

	return &Metrics{
		registry:       registry,
		framesTotal:    framesTotal,
		repsTotal:      repsTotal,
		repScore:       repScore,
		activePaths:    activePaths,
		droppedFrames:  droppedFrames,
		rejectedPoints: rejectedPoints,
	}
}

// PublishFrame implements pipeline.RenderSink.
func (m *Metrics) PublishFrame(tsMs int64, detections []detect.Detection, active []paths.Path) {
	m.framesTotal.Inc()
	m.activePaths.Set(float64(len(active)))
}

// RecordCompleted implements pipeline.RecordSink.
func (m *Metrics) RecordCompleted(rec reps.Record, path paths.Path) {
	m.repsTotal.Inc()
	m.repScore.Observe(float64(rec.Score))
}

// SyncStats refreshes the session-scoped gauges from a pipeline stats
// snapshot. Dropped and rejected totals reset with the session, so they
// are gauges rather than counters.
func (m *Metrics) SyncStats(st pipeline.Stats) {
	m.activePaths.Set(float64(st.ActivePaths))
	m.droppedFrames.Set(float64(st.Dropped))
	m.rejectedPoints.Set(float64(st.RejectedPoints))
}

// Handler returns an http.Handler that serves the metrics. updateGauges
// is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
