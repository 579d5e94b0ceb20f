package report

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/liftlab-data/barpath.report/internal/fsutil"
	"github.com/liftlab-data/barpath.report/internal/motion/paths"
	"github.com/liftlab-data/barpath.report/internal/motion/reps"
	"github.com/liftlab-data/barpath.report/internal/session"
)

// testSummary builds a two-rep session with retained paths.
func testSummary() session.Summary {
	mkPath := func(id int64, startMs int64) paths.Path {
		p := paths.Path{ID: id, CreatedMs: startMs, Color: "#e6194b"}
		ys := []float64{0.3, 0.4, 0.5, 0.6, 0.7, 0.6, 0.5, 0.4, 0.3}
		for i, y := range ys {
			p.Points = append(p.Points, paths.Point{
				X:           0.5,
				Y:           y,
				TimestampMs: startMs + int64(i)*100,
			})
		}
		return p
	}

	sum := session.Summary{
		Session: session.Session{
			ID:        "11111111-2222-3333-4444-555555555555",
			Exercise:  "squat",
			Tempo:     "3-1-3",
			StartedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		},
		Paths: []paths.Path{mkPath(1, 1000), mkPath(2, 4000)},
	}
	for i := 1; i <= 2; i++ {
		sum.Reps = append(sum.Reps, reps.Record{
			RepNumber:      i,
			PathID:         int64(i),
			Exercise:       "squat",
			Tempo:          "3-1-3",
			TotalDistanceM: 1.6,
			VerticalRangeM: 0.8,
			DurationMs:     800,
			PointCount:     9,
			CompletedAtMs:  int64(i) * 3000,
			Score:          88,
			Completeness:   100,
			Efficiency:     100,
			Density:        60,
			Smoothness:     80,
		})
	}
	return sum
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testSummary(), "cm"); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse generated CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d rows", len(rows))
	}

	// 1.6m/0.8m converted to cm.
	wantRow := []string{
		"11111111-2222-3333-4444-555555555555",
		"squat", "3-1-3", "1",
		"160.000", "80.000", "0.80", "9",
		"100", "100", "60", "80", "88",
	}
	if diff := cmp.Diff(wantRow, rows[1]); diff != "" {
		t.Errorf("first rep row mismatch (-want +got):\n%s", diff)
	}
	if rows[0][4] != "total_distance_cm" {
		t.Errorf("distance header = %q, want total_distance_cm", rows[0][4])
	}
	if rows[2][3] != "2" {
		t.Errorf("second rep number = %q, want 2", rows[2][3])
	}
}

func TestWriteCSVEmptySession(t *testing.T) {
	sum := testSummary()
	sum.Reps = nil
	sum.Paths = nil

	var buf bytes.Buffer
	if err := WriteCSV(&buf, sum, "m"); err != nil {
		t.Fatalf("WriteCSV on empty session failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse generated CSV: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}

func TestWriteCSVUnknownUnitsFallsBackToMeters(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testSummary(), "furlongs"); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if !strings.Contains(buf.String(), "total_distance_m") {
		t.Error("expected meters fallback in header")
	}
}

func TestFilename(t *testing.T) {
	got := Filename(testSummary(), "csv")
	want := "barpath-squat-20260314-093000.csv"
	if got != want {
		t.Errorf("Filename = %q, want %q", got, want)
	}

	sum := testSummary()
	sum.Session.Exercise = ""
	if got := Filename(sum, "html"); !strings.HasPrefix(got, "barpath-session-") {
		t.Errorf("empty exercise filename = %q, want barpath-session- prefix", got)
	}

	sum.Session.Exercise = "clean & jerk"
	if got := Filename(sum, "csv"); !strings.HasPrefix(got, "barpath-clean_jerk-") {
		t.Errorf("sanitized filename = %q, want barpath-clean_jerk- prefix", got)
	}
}

func TestRenderChart(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderChart(&buf, testSummary()); err != nil {
		t.Fatalf("RenderChart failed: %v", err)
	}

	html := buf.String()
	for _, want := range []string{"Bar Height over Time", "Rep Quality Scores", "rep 1", "rep 2"} {
		if !strings.Contains(html, want) {
			t.Errorf("chart HTML missing %q", want)
		}
	}
}

func TestSavePathPlots(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	pw := NewPlotWriter(fs, t.TempDir())

	n, err := pw.SavePathPlots("session-plots", testSummary())
	if err != nil {
		t.Fatalf("SavePathPlots failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("wrote %d plots, want 2", n)
	}

	for _, name := range []string{"rep_01.png", "rep_02.png"} {
		path := filepath.Join(pw.baseDir, "session-plots", name)
		data, err := fs.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		// PNG magic bytes.
		if len(data) < 8 || string(data[1:4]) != "PNG" {
			t.Errorf("%s is not a PNG", name)
		}
	}
}

func TestSavePathPlotsRejectsEscape(t *testing.T) {
	pw := NewPlotWriter(fsutil.NewMemoryFileSystem(), t.TempDir())
	if _, err := pw.SavePathPlots("../../etc", testSummary()); err == nil {
		t.Fatal("expected traversal to be rejected")
	}
}

func TestSavePathPlotsSkipsMissingPaths(t *testing.T) {
	sum := testSummary()
	sum.Paths = sum.Paths[:1] // second rep's path not retained

	pw := NewPlotWriter(fsutil.NewMemoryFileSystem(), t.TempDir())
	n, err := pw.SavePathPlots("plots", sum)
	if err != nil {
		t.Fatalf("SavePathPlots failed: %v", err)
	}
	if n != 1 {
		t.Errorf("wrote %d plots, want 1", n)
	}
}
