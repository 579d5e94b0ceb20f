package detect

import "math"

// RawFrame carries one frame of raw detector output in anchor-major layout:
// element i of each slice describes anchor i. A YOLO-style export produces
// 8400 anchors per frame, but any length works. Slices of unequal length are
// truncated to the shortest during processing rather than rejected.
type RawFrame struct {
	CX   []float32 // box center x, normalized [0,1]
	CY   []float32 // box center y, normalized [0,1]
	W    []float32 // box width, normalized
	H    []float32 // box height, normalized
	Conf []float32 // confidence score [0,1]

	TimestampMs int64 // capture time, Unix millis
}

// Anchors returns the number of usable anchors: the length of the shortest
// per-anchor slice.
func (f RawFrame) Anchors() int {
	n := len(f.CX)
	for _, l := range []int{len(f.CY), len(f.W), len(f.H), len(f.Conf)} {
		if l < n {
			n = l
		}
	}
	return n
}

// Detection is one screened bar candidate in normalized corner coordinates.
// Right > Left and Bottom > Top always hold for detections produced by the
// post-processor. A Detection is a value and is never mutated after creation.
type Detection struct {
	Left       float64
	Top        float64
	Right      float64
	Bottom     float64
	Confidence float64
	ClassID    int
}

// Width returns the box width in normalized units.
func (d Detection) Width() float64 { return d.Right - d.Left }

// Height returns the box height in normalized units.
func (d Detection) Height() float64 { return d.Bottom - d.Top }

// Area returns the box area in normalized units squared.
func (d Detection) Area() float64 { return d.Width() * d.Height() }

// Center returns the box center point.
func (d Detection) Center() (x, y float64) {
	return (d.Left + d.Right) / 2, (d.Top + d.Bottom) / 2
}

// IoU returns the intersection-over-union of two boxes. Non-overlapping or
// degenerate boxes yield 0.
func (d Detection) IoU(other Detection) float64 {
	x1 := math.Max(d.Left, other.Left)
	y1 := math.Max(d.Top, other.Top)
	x2 := math.Min(d.Right, other.Right)
	y2 := math.Min(d.Bottom, other.Bottom)

	if x2 <= x1 || y2 <= y1 {
		return 0.0
	}

	intersection := (x2 - x1) * (y2 - y1)
	union := d.Area() + other.Area() - intersection
	if union <= 0 {
		return 0.0
	}
	return intersection / union
}

// clamp01 clamps v into [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// finite reports whether v is a usable number (not NaN or Inf).
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
