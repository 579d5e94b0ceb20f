package motion

import (
	"bytes"
	"strings"
	"testing"
)

func resetLogWriters() {
	SetLogWriters(LogWriters{})
}

func TestSetLogWritersRoutesStreams(t *testing.T) {
	defer resetLogWriters()

	var ops, diag, trace bytes.Buffer
	SetLogWriters(LogWriters{Ops: &ops, Diag: &diag, Trace: &trace})

	Opsf("session %s stopped", "abc")
	Diagf("path %d trimmed to %d points", 4, 630)
	Tracef("frame at %d: %d detections", 1234, 2)

	if !strings.Contains(ops.String(), "session abc stopped") {
		t.Errorf("ops stream = %q, want session line", ops.String())
	}
	if !strings.Contains(diag.String(), "path 4 trimmed to 630 points") {
		t.Errorf("diag stream = %q, want trim line", diag.String())
	}
	if !strings.Contains(trace.String(), "frame at 1234: 2 detections") {
		t.Errorf("trace stream = %q, want frame line", trace.String())
	}

	// Streams must not leak into each other
	if strings.Contains(ops.String(), "trimmed") || strings.Contains(diag.String(), "stopped") {
		t.Error("log lines crossed streams")
	}
}

func TestNilWritersDisableStreams(t *testing.T) {
	defer resetLogWriters()

	var diag bytes.Buffer
	SetLogWriters(LogWriters{Diag: &diag})

	// Ops and trace are nil; these must not panic.
	Opsf("dropped frame")
	Tracef("ingest x=%f", 0.5)
	Diagf("visible")

	if !strings.Contains(diag.String(), "visible") {
		t.Errorf("diag stream = %q, want 'visible'", diag.String())
	}
}

func TestLogPrefixAndConcurrency(t *testing.T) {
	defer resetLogWriters()

	var ops bytes.Buffer
	SetLogWriters(LogWriters{Ops: &ops})

	done := make(chan bool)
	for i := 0; i < 8; i++ {
		go func(id int) {
			for j := 0; j < 25; j++ {
				Opsf("writer %d line %d", id, j)
			}
			done <- true
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	out := ops.String()
	if !strings.Contains(out, "[motion] ") {
		t.Errorf("output missing stream prefix: %q", out[:min(len(out), 80)])
	}
	if !strings.Contains(out, "writer") {
		t.Error("expected concurrent writer output")
	}
}
