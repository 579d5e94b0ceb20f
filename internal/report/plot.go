package report

import (
	"bytes"
	"fmt"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/liftlab-data/barpath.report/internal/fsutil"
	"github.com/liftlab-data/barpath.report/internal/motion/paths"
	"github.com/liftlab-data/barpath.report/internal/security"
	"github.com/liftlab-data/barpath.report/internal/session"
)

// PlotWriter renders per-rep trajectory PNGs. Output is restricted to a
// single base directory so callers cannot be tricked into writing plots
// outside controlled locations.
type PlotWriter struct {
	fs      fsutil.FileSystem
	baseDir string
}

// NewPlotWriter creates a PlotWriter rooted at baseDir. A nil fs uses the
// real filesystem.
func NewPlotWriter(fs fsutil.FileSystem, baseDir string) *PlotWriter {
	if fs == nil {
		fs = fsutil.OSFileSystem{}
	}
	return &PlotWriter{fs: fs, baseDir: filepath.Clean(baseDir)}
}

// SavePathPlots writes one PNG per rep into dir (resolved under the base
// directory), named rep_NN.png. Returns the number of plots written. Reps
// whose path was not retained are skipped, not errors.
func (pw *PlotWriter) SavePathPlots(dir string, sum session.Summary) (int, error) {
	outDir := filepath.Join(pw.baseDir, filepath.Clean(dir))
	if err := security.ValidatePathWithinDirectory(outDir, pw.baseDir); err != nil {
		return 0, fmt.Errorf("invalid plot directory %q: %w", dir, err)
	}
	if err := pw.fs.MkdirAll(outDir, 0755); err != nil {
		return 0, fmt.Errorf("create plot directory: %w", err)
	}

	byID := make(map[int64]paths.Path, len(sum.Paths))
	for _, p := range sum.Paths {
		byID[p.ID] = p
	}

	written := 0
	for _, rec := range sum.Reps {
		p, ok := byID[rec.PathID]
		if !ok || len(p.Points) == 0 {
			continue
		}

		png, err := renderTrajectory(p, rec.RepNumber, rec.Score, sum.Session.Exercise)
		if err != nil {
			return written, fmt.Errorf("render rep %d plot: %w", rec.RepNumber, err)
		}

		name := filepath.Join(outDir, fmt.Sprintf("rep_%02d.png", rec.RepNumber))
		if err := pw.fs.WriteFile(name, png, 0644); err != nil {
			return written, fmt.Errorf("write rep %d plot: %w", rec.RepNumber, err)
		}
		written++
	}
	return written, nil
}

// renderTrajectory draws one bar path in frame coordinates, height up.
func renderTrajectory(path paths.Path, repNumber, score int, exercise string) ([]byte, error) {
	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("%s rep %d (score %d)", exercise, repNumber, score)
	pl.X.Label.Text = "X (normalized)"
	pl.Y.Label.Text = "Height (normalized)"
	pl.X.Min, pl.X.Max = 0, 1
	pl.Y.Min, pl.Y.Max = 0, 1

	pts := make(plotter.XYs, 0, len(path.Points))
	for _, pt := range path.Points {
		pts = append(pts, plotter.XY{X: pt.X, Y: 1 - pt.Y})
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("build trajectory line: %w", err)
	}
	line.Width = vg.Points(1.5)
	pl.Add(line)

	wt, err := pl.WriterTo(6*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("encode plot: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write plot: %w", err)
	}
	return buf.Bytes(), nil
}
