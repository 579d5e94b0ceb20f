package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var captured string
	SetLogger(func(format string, v ...interface{}) {
		captured = fmt.Sprintf(format, v...)
	})

	Logf("opened store at %s", "/tmp/reps.db")
	if captured != "opened store at /tmp/reps.db" {
		t.Errorf("captured %q, want formatted message", captured)
	}
}

func TestSetLoggerNilInstallsNoOp(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	called := false
	SetLogger(func(format string, v ...interface{}) { called = true })
	Logf("ping")
	if !called {
		t.Fatal("replacement logger was not called")
	}

	called = false
	SetLogger(nil)
	Logf("ping") // must not panic
	if called {
		t.Error("no-op logger invoked the previous callback")
	}
}

func TestLogfDefaultNotNil(t *testing.T) {
	if Logf == nil {
		t.Error("Logf should not be nil by default")
	}
}
