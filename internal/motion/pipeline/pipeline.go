package pipeline

import (
	"sync"
	"sync/atomic"

	"gonum.org/v1/gonum/stat"

	"github.com/liftlab-data/barpath.report/internal/config"
	"github.com/liftlab-data/barpath.report/internal/motion"
	"github.com/liftlab-data/barpath.report/internal/motion/detect"
	"github.com/liftlab-data/barpath.report/internal/motion/paths"
	"github.com/liftlab-data/barpath.report/internal/motion/reps"
)

// RenderSink receives read-only frame snapshots for overlay drawing.
// Implementations must not mutate the slices they are handed.
type RenderSink interface {
	// PublishFrame delivers one processed frame's detections and active
	// paths to external subscribers.
	PublishFrame(tsMs int64, detections []detect.Detection, active []paths.Path)
}

// RecordSink receives each repetition as it completes, together with the
// path that produced it.
type RecordSink interface {
	// RecordCompleted is called once per accepted repetition, in rep order.
	RecordCompleted(rec reps.Record, path paths.Path)
}

// Config holds the stage configurations and optional sinks for one
// pipeline instance.
type Config struct {
	Detect     detect.Config
	Tracker    paths.Config
	Completion reps.CompletionConfig
	Analyzer   reps.AnalyzerConfig

	// Exercise and Tempo label every record this pipeline produces.
	Exercise string
	Tempo    string

	// RenderSink, when non-nil, receives every processed frame. Optional.
	RenderSink RenderSink
	// RecordSink, when non-nil, receives every completed repetition. Optional.
	RecordSink RecordSink
}

// DefaultConfig returns pipeline configuration loaded from the canonical
// tuning defaults file (config/tuning.defaults.json).
// Panics if the file cannot be found — intended for tests and binaries
// that have already validated config availability.
func DefaultConfig() Config {
	cfg := config.MustLoadDefaultConfig()
	return ConfigFromTuning(cfg)
}

// ConfigFromTuning builds the full stage configuration from one loaded
// TuningConfig. Labels and sinks start empty; callers fill them in.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		Detect:     detect.ConfigFromTuning(cfg),
		Tracker:    paths.ConfigFromTuning(cfg),
		Completion: reps.CompletionConfigFromTuning(cfg),
		Analyzer:   reps.AnalyzerConfigFromTuning(cfg),
	}
}

// FrameResult is what one ingested frame produced.
type FrameResult struct {
	TimestampMs int64
	Detections  []detect.Detection
	ActivePaths []paths.Path
	Completed   []reps.Record // repetitions accepted during this frame
}

// Stats summarizes pipeline activity since the last reset.
type Stats struct {
	Frames         int64   `json:"frames"`
	Dropped        int64   `json:"dropped"`
	RejectedPoints int64   `json:"rejected_points"`
	ActivePaths    int     `json:"active_paths"`
	CompletedReps  int     `json:"completed_reps"`
	AverageScore   float64 `json:"average_score"`
}

// Pipeline owns one frame-processing chain: post-processor, tracker,
// completion detector and quality analyzer, plus the completed-rep list.
// Frame mutation follows single-writer discipline: IngestFrame and Reset
// serialize on an internal mutex, and an atomic latch sheds frames that
// arrive while one is still being processed. Snapshot reads take a
// separate read lock so report generation never blocks ingestion.
type Pipeline struct {
	cfg Config

	mu        sync.Mutex // serializes frame processing and reset
	post      *detect.PostProcessor
	tracker   *paths.Tracker
	detector  *reps.Detector
	analyzer  *reps.Analyzer
	repNumber int

	cmu            sync.RWMutex // guards the completed lists
	completed      []reps.Record
	completedPaths []paths.Path

	busy    atomic.Bool
	frames  atomic.Int64
	dropped atomic.Int64
}

// New builds a pipeline from the given configuration.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		post:     detect.New(cfg.Detect),
		tracker:  paths.NewTracker(cfg.Tracker),
		detector: reps.NewDetector(cfg.Completion),
		analyzer: reps.NewAnalyzer(cfg.Analyzer),
	}
}

// IngestFrame runs one detector frame through the pipeline: screen the
// anchors, feed the best detection to the tracker, judge the active paths
// and score anything that completed. When a frame is already in flight the
// new frame is dropped, not queued, and ok is false; dropping bounds
// latency and memory under backpressure.
func (p *Pipeline) IngestFrame(frame detect.RawFrame) (FrameResult, bool) {
	if !p.busy.CompareAndSwap(false, true) {
		p.dropped.Add(1)
		motion.Diagf("frame %d dropped: previous frame still in flight", frame.TimestampMs)
		return FrameResult{}, false
	}
	defer p.busy.Store(false)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.frames.Add(1)
	res := FrameResult{TimestampMs: frame.TimestampMs}
	res.Detections = p.post.Process(frame)

	if len(res.Detections) > 0 {
		cx, cy := res.Detections[0].Center()
		p.tracker.Ingest(cx, cy, frame.TimestampMs)
	}

	res.Completed = p.sweepCompleted(frame.TimestampMs)
	res.ActivePaths = p.tracker.Snapshot()

	if p.cfg.RenderSink != nil {
		p.cfg.RenderSink.PublishFrame(res.TimestampMs, res.Detections, res.ActivePaths)
	}
	return res, true
}

// sweepCompleted judges the active paths and promotes accepted ones into
// the completed list. Called with p.mu held.
func (p *Pipeline) sweepCompleted(nowMs int64) []reps.Record {
	candidates := p.detector.Sweep(p.tracker.Snapshot(), nowMs)

	var out []reps.Record
	for _, c := range candidates {
		if !c.Accepted() {
			continue
		}
		path := p.tracker.Detach(c.PathID)
		if path == nil {
			continue
		}
		rec, ok := p.analyzer.Analyze(*path, p.cfg.Exercise, p.cfg.Tempo, p.repNumber+1)
		if !ok {
			// Accepted by the completion detector but degenerate under the
			// analyzer's floors. The path is gone; rep numbering is not
			// advanced.
			motion.Diagf("path %d completed but failed analysis, excluded", c.PathID)
			continue
		}
		p.repNumber++
		p.appendCompleted(rec, *path)
		out = append(out, rec)
		motion.Opsf("rep %d completed: score=%d range=%.2fm duration=%dms (path %d)",
			rec.RepNumber, rec.Score, rec.VerticalRangeM, rec.DurationMs, c.PathID)
	}
	return out
}

// appendCompleted stores one scored repetition and notifies the record
// sink.
func (p *Pipeline) appendCompleted(rec reps.Record, path paths.Path) {
	p.cmu.Lock()
	p.completed = append(p.completed, rec)
	p.completedPaths = append(p.completedPaths, path)
	p.cmu.Unlock()

	if p.cfg.RecordSink != nil {
		p.cfg.RecordSink.RecordCompleted(rec, path)
	}
}

// SnapshotCompleted returns copies of the completed repetition records and
// their paths, in completion order. Records are immutable once created, so
// this snapshot stays valid while ingestion continues.
func (p *Pipeline) SnapshotCompleted() ([]reps.Record, []paths.Path) {
	p.cmu.RLock()
	defer p.cmu.RUnlock()

	recs := make([]reps.Record, len(p.completed))
	copy(recs, p.completed)
	out := make([]paths.Path, 0, len(p.completedPaths))
	for i := range p.completedPaths {
		out = append(out, p.completedPaths[i].Clone())
	}
	return recs, out
}

// ActivePaths returns a deep-copied snapshot of the live paths for
// rendering.
func (p *Pipeline) ActivePaths() []paths.Path {
	return p.tracker.Snapshot()
}

// Stats returns a consistent summary of pipeline activity.
func (p *Pipeline) Stats() Stats {
	p.cmu.RLock()
	scores := make([]float64, len(p.completed))
	for i, rec := range p.completed {
		scores[i] = float64(rec.Score)
	}
	p.cmu.RUnlock()

	avg := 0.0
	if len(scores) > 0 {
		avg = stat.Mean(scores, nil)
	}
	return Stats{
		Frames:         p.frames.Load(),
		Dropped:        p.dropped.Load(),
		RejectedPoints: p.tracker.Misses(),
		ActivePaths:    p.tracker.ActiveCount(),
		CompletedReps:  len(scores),
		AverageScore:   avg,
	}
}

// Reset returns the pipeline to its initial state: no recent-center
// history, no active paths, no completed repetitions, rep numbering back
// at 1. It waits for any frame in flight, so no caller observes a
// partially cleared pipeline.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cmu.Lock()
	defer p.cmu.Unlock()

	p.post.Reset()
	p.tracker.Reset()
	p.completed = nil
	p.completedPaths = nil
	p.repNumber = 0
	p.frames.Store(0)
	p.dropped.Store(0)
	motion.Opsf("pipeline reset")
}
