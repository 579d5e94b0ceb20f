package detect

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/liftlab-data/barpath.report/internal/config"
	"github.com/liftlab-data/barpath.report/internal/motion"
)

// Config holds configuration parameters for the detection post-processor.
type Config struct {
	ConfidenceThreshold float64 // Minimum confidence to keep an anchor
	IoUThreshold        float64 // Overlap above which the lower-confidence box is suppressed
	MaxDetections       int     // Maximum boxes surviving suppression per frame
	MinBoxArea          float64 // Minimum plausible bar area (normalized²)
	MaxBoxArea          float64 // Maximum plausible bar area (normalized²)
	MinAspect           float64 // Minimum width/height ratio
	MaxAspect           float64 // Maximum width/height ratio
	MaxCenterDrift      float64 // Maximum distance from the recent-center mean
	RecentCenters       int     // Accepted centers kept for the drift gate
	HoldLastFrames      int     // Empty frames bridged by re-emitting the last detection
}

// DefaultConfig returns post-processor configuration loaded from the
// canonical tuning defaults file (config/tuning.defaults.json).
// Panics if the file cannot be found — intended for tests and binaries
// that have already validated config availability.
func DefaultConfig() Config {
	cfg := config.MustLoadDefaultConfig()
	return ConfigFromTuning(cfg)
}

// ConfigFromTuning builds a post-processor Config from a loaded TuningConfig.
// Use this in production code where the TuningConfig is already loaded.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		ConfidenceThreshold: cfg.GetConfidenceThreshold(),
		IoUThreshold:        cfg.GetIoUThreshold(),
		MaxDetections:       cfg.GetMaxDetections(),
		MinBoxArea:          cfg.GetMinBoxArea(),
		MaxBoxArea:          cfg.GetMaxBoxArea(),
		MinAspect:           cfg.GetMinAspect(),
		MaxAspect:           cfg.GetMaxAspect(),
		MaxCenterDrift:      cfg.GetMaxCenterDrift(),
		RecentCenters:       cfg.GetRecentCenters(),
		HoldLastFrames:      cfg.GetHoldLastFrames(),
	}
}

// PostProcessor turns raw anchor-major detector output into a small set of
// non-overlapping bar detections. It carries two pieces of state between
// frames: the recent accepted centers used by the drift gate, and the last
// detection re-emitted during detector dropout. It is not safe for
// concurrent use; the pipeline serializes frames before they reach it.
type PostProcessor struct {
	cfg Config

	recentXs  []float64  // ring of accepted center xs, oldest first
	recentYs  []float64  // ring of accepted center ys, parallel to recentXs
	lastBest  *Detection // best detection of the last non-empty frame
	holdCount int        // consecutive empty frames bridged so far
}

// New creates a PostProcessor with the given configuration.
func New(cfg Config) *PostProcessor {
	return &PostProcessor{cfg: cfg}
}

// Process screens one raw frame and returns the surviving detections sorted
// by descending confidence. The returned slice is owned by the caller. An
// empty frame inside the hold-last window re-emits the previous best
// detection; past the window it returns nil.
func (p *PostProcessor) Process(frame RawFrame) []Detection {
	candidates := p.screen(frame)
	valid := p.filterValid(candidates)
	kept := p.suppress(valid)

	if len(kept) == 0 {
		return p.bridgeDropout(frame.TimestampMs)
	}

	best := kept[0]
	p.lastBest = &best
	p.holdCount = 0
	p.rememberCenter(best)
	return kept
}

// Reset clears all cross-frame state. Call when a session resets so stale
// centers do not gate the next lift.
func (p *PostProcessor) Reset() {
	p.recentXs = nil
	p.recentYs = nil
	p.lastBest = nil
	p.holdCount = 0
}

// screen applies the confidence threshold and converts surviving anchors
// from center format to clamped corner format. Malformed values (NaN, Inf,
// confidence outside [0,1]) are treated as below threshold rather than
// panicking on bad detector output.
func (p *PostProcessor) screen(frame RawFrame) []Detection {
	n := frame.Anchors()
	out := make([]Detection, 0, 8)

	for i := 0; i < n; i++ {
		conf := float64(frame.Conf[i])
		if !finite(conf) || conf < p.cfg.ConfidenceThreshold || conf > 1 {
			continue
		}

		cx := float64(frame.CX[i])
		cy := float64(frame.CY[i])
		w := float64(frame.W[i])
		h := float64(frame.H[i])
		if !finite(cx) || !finite(cy) || !finite(w) || !finite(h) {
			continue
		}

		d := Detection{
			Left:       clamp01(cx - w/2),
			Top:        clamp01(cy - h/2),
			Right:      clamp01(cx + w/2),
			Bottom:     clamp01(cy + h/2),
			Confidence: conf,
		}
		// Degenerate after clamping: zero width or height.
		if d.Right <= d.Left || d.Bottom <= d.Top {
			continue
		}
		out = append(out, d)
	}
	return out
}

// filterValid drops boxes that cannot plausibly be a barbell: wrong size,
// wrong shape, or too far from where the bar has recently been.
func (p *PostProcessor) filterValid(candidates []Detection) []Detection {
	out := candidates[:0]
	for _, d := range candidates {
		area := d.Area()
		if area < p.cfg.MinBoxArea || area > p.cfg.MaxBoxArea {
			continue
		}
		h := d.Height()
		if h <= 0 {
			continue
		}
		aspect := d.Width() / h
		if aspect < p.cfg.MinAspect || aspect > p.cfg.MaxAspect {
			continue
		}
		if !p.withinDrift(d) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// withinDrift applies the temporal center gate. With no history the gate is
// open so the first detection of a lift is never rejected.
func (p *PostProcessor) withinDrift(d Detection) bool {
	if len(p.recentXs) == 0 || p.cfg.MaxCenterDrift <= 0 {
		return true
	}
	mx := stat.Mean(p.recentXs, nil)
	my := stat.Mean(p.recentYs, nil)

	cx, cy := d.Center()
	dx := cx - mx
	dy := cy - my
	return dx*dx+dy*dy <= p.cfg.MaxCenterDrift*p.cfg.MaxCenterDrift
}

// suppress performs greedy non-maximum suppression: highest confidence
// first, keeping a box only while its overlap with every kept box stays at
// or below the IoU threshold, up to MaxDetections survivors.
func (p *PostProcessor) suppress(candidates []Detection) []Detection {
	if len(candidates) == 0 {
		return nil
	}

	// Stable sort keeps equal-confidence boxes in anchor order so the same
	// frame always produces the same output.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})

	kept := make([]Detection, 0, p.cfg.MaxDetections)
	for _, d := range candidates {
		if len(kept) >= p.cfg.MaxDetections {
			break
		}
		overlaps := false
		for _, k := range kept {
			if d.IoU(k) > p.cfg.IoUThreshold {
				overlaps = true
				break
			}
		}
		if !overlaps {
			kept = append(kept, d)
		}
	}
	return kept
}

// bridgeDropout re-emits the last best detection for a bounded number of
// consecutive empty frames so a flickering detector does not sever the path.
func (p *PostProcessor) bridgeDropout(tsMs int64) []Detection {
	if p.lastBest == nil || p.holdCount >= p.cfg.HoldLastFrames {
		return nil
	}
	p.holdCount++
	motion.Tracef("frame %d empty, holding last detection (%d/%d)",
		tsMs, p.holdCount, p.cfg.HoldLastFrames)
	return []Detection{*p.lastBest}
}

// rememberCenter appends an accepted center to the drift-gate ring.
func (p *PostProcessor) rememberCenter(d Detection) {
	if p.cfg.RecentCenters <= 0 {
		return
	}
	cx, cy := d.Center()
	p.recentXs = append(p.recentXs, cx)
	p.recentYs = append(p.recentYs, cy)
	if len(p.recentXs) > p.cfg.RecentCenters {
		p.recentXs = p.recentXs[len(p.recentXs)-p.cfg.RecentCenters:]
		p.recentYs = p.recentYs[len(p.recentYs)-p.cfg.RecentCenters:]
	}
}
