package onnx

import (
	"testing"
)

func TestFrameFromOutput(t *testing.T) {
	// Two anchors in (1,5,2) layout: all cx, then all cy, w, h, conf.
	out := []float32{
		320, 160, // cx
		240, 480, // cy
		64, 32, // w
		32, 64, // h
		0.9, 0.4, // conf
	}

	frame := FrameFromOutput(out, 2, 640, 640, 1234)

	if frame.TimestampMs != 1234 {
		t.Errorf("timestamp = %d, want 1234", frame.TimestampMs)
	}
	if frame.Anchors() != 2 {
		t.Fatalf("anchors = %d, want 2", frame.Anchors())
	}
	if frame.CX[0] != 0.5 || frame.CY[0] != 0.375 {
		t.Errorf("anchor 0 center = (%v, %v), want (0.5, 0.375)", frame.CX[0], frame.CY[0])
	}
	if frame.W[0] != 0.1 || frame.H[0] != 0.05 {
		t.Errorf("anchor 0 size = (%v, %v), want (0.1, 0.05)", frame.W[0], frame.H[0])
	}
	if frame.Conf[1] != 0.4 {
		t.Errorf("anchor 1 conf = %v, want 0.4", frame.Conf[1])
	}
}

func TestFrameFromOutputShortBuffer(t *testing.T) {
	// Buffer only holds one full anchor's worth of values when asked for
	// two: truncate rather than read out of bounds.
	out := []float32{320, 240, 64, 32, 0.9}
	frame := FrameFromOutput(out, 2, 640, 640, 1)
	if frame.Anchors() != 1 {
		t.Errorf("anchors = %d, want 1", frame.Anchors())
	}
}

func TestFrameFromOutputEmpty(t *testing.T) {
	frame := FrameFromOutput(nil, 8400, 640, 640, 7)
	if frame.Anchors() != 0 {
		t.Errorf("anchors = %d, want 0", frame.Anchors())
	}
	if frame.TimestampMs != 7 {
		t.Errorf("timestamp = %d, want 7", frame.TimestampMs)
	}
}
