package timeutil

import (
	"testing"
	"time"
)

func TestRealClockNow(t *testing.T) {
	c := RealClock{}

	before := time.Now()
	got := c.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("Now() = %v, want between %v and %v", got, before, after)
	}
}

func TestRealClockSince(t *testing.T) {
	c := RealClock{}

	start := time.Now().Add(-time.Second)
	if d := c.Since(start); d < time.Second {
		t.Errorf("Since() = %v, want >= 1s", d)
	}
}

func TestMockClockAdvance(t *testing.T) {
	t0 := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	c := NewMockClock(t0)

	if !c.Now().Equal(t0) {
		t.Fatalf("Now() = %v, want %v", c.Now(), t0)
	}

	c.Advance(90 * time.Second)
	if got := c.Since(t0); got != 90*time.Second {
		t.Errorf("Since() = %v, want 90s", got)
	}
}

func TestMockClockSet(t *testing.T) {
	c := NewMockClock(time.Unix(0, 0))

	target := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.Set(target)

	if !c.Now().Equal(target) {
		t.Errorf("Now() = %v, want %v", c.Now(), target)
	}
}

func TestMockClockSleepRecords(t *testing.T) {
	c := NewMockClock(time.Unix(0, 0))

	start := time.Now()
	c.Sleep(time.Hour)
	c.Sleep(2 * time.Hour)
	if time.Since(start) > time.Second {
		t.Fatal("mock Sleep blocked")
	}

	sleeps := c.Sleeps()
	if len(sleeps) != 2 || sleeps[0] != time.Hour || sleeps[1] != 2*time.Hour {
		t.Errorf("Sleeps() = %v, want [1h 2h]", sleeps)
	}
}

func TestMockClockDoesNotTick(t *testing.T) {
	c := NewMockClock(time.Unix(1000, 0))

	first := c.Now()
	time.Sleep(10 * time.Millisecond)
	if !c.Now().Equal(first) {
		t.Error("mock clock moved without Advance")
	}
}
