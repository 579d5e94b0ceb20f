// Command replay runs recorded detector output through the bar tracking
// pipeline offline. Input is either a JSONL file of raw frames (the same
// shape the /api/frames endpoint accepts) or a directory of image frames
// run through an ONNX detector. Results are printed as a rep table and
// optionally written out as CSV, HTML chart, and PNG trajectory plots.
// With -server, frames are posted to a running barpath service instead of
// being processed locally.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/disintegration/imaging"

	"github.com/liftlab-data/barpath.report/internal/api"
	"github.com/liftlab-data/barpath.report/internal/config"
	"github.com/liftlab-data/barpath.report/internal/detector/onnx"
	"github.com/liftlab-data/barpath.report/internal/httputil"
	"github.com/liftlab-data/barpath.report/internal/motion"
	"github.com/liftlab-data/barpath.report/internal/report"
	"github.com/liftlab-data/barpath.report/internal/session"
	"github.com/liftlab-data/barpath.report/internal/units"
)

var (
	input        = flag.String("input", "", "JSONL file of raw frames (one frame per line)")
	imagesDir    = flag.String("images", "", "Directory of image frames (requires -model)")
	modelPath    = flag.String("model", "", "ONNX detector model for -images mode")
	fps          = flag.Float64("fps", 30, "Frame rate for synthesizing image timestamps")
	outDir       = flag.String("out", "", "Write CSV, chart HTML, and PNG plots into this directory")
	tuningPath   = flag.String("config", "", "Tuning config file (defaults to config/tuning.defaults.json)")
	displayUnits = flag.String("units", units.Meters, "Display units for distances (m, cm, in)")
	exercise     = flag.String("exercise", "squat", "Exercise label for the replayed session")
	tempo        = flag.String("tempo", "", "Tempo label for the replayed session")
	serverURL    = flag.String("server", "", "Post frames to a running barpath service instead of processing locally")
	verbose      = flag.Bool("verbose", false, "Enable diagnostic logging")
)

func main() {
	flag.Parse()

	if (*input == "") == (*imagesDir == "") {
		log.Fatal("exactly one of -input or -images is required")
	}
	if *imagesDir != "" && *modelPath == "" {
		log.Fatal("-images mode requires -model")
	}
	if !units.IsValid(*displayUnits) {
		log.Fatalf("invalid units %q, valid values: %s", *displayUnits, units.GetValidUnitsString())
	}

	var diag io.Writer
	if *verbose {
		diag = os.Stderr
	}
	motion.SetLogWriters(motion.LogWriters{Ops: os.Stderr, Diag: diag})

	frames, err := loadFrames()
	if err != nil {
		log.Fatalf("failed to load frames: %v", err)
	}
	if len(frames) == 0 {
		log.Fatal("no frames to replay")
	}
	log.Printf("replaying %d frames", len(frames))

	if *serverURL != "" {
		if err := streamToServer(httputil.NewStandardClient(nil), *serverURL, frames); err != nil {
			log.Fatalf("stream to server failed: %v", err)
		}
		return
	}

	sum, err := runLocal(frames)
	if err != nil {
		log.Fatalf("replay failed: %v", err)
	}

	printRepTable(os.Stdout, sum, *displayUnits)

	if *outDir != "" {
		if err := writeArtifacts(*outDir, sum); err != nil {
			log.Fatalf("failed to write artifacts: %v", err)
		}
	}
}

// loadFrames reads the frame sequence from JSONL or an image directory.
func loadFrames() ([]api.FrameRequest, error) {
	if *input != "" {
		return loadJSONL(*input)
	}
	return loadImages(*imagesDir, *modelPath, *fps)
}

func loadJSONL(path string) ([]api.FrameRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var frames []api.FrameRequest
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var frame api.FrameRequest
		if err := json.Unmarshal([]byte(text), &frame); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		frames = append(frames, frame)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return frames, nil
}

// loadImages runs the ONNX detector over every image in dir, in filename
// order, timestamping frames at the given rate.
func loadImages(dir, model string, fps float64) ([]api.FrameRequest, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("no image frames in %s", dir)
	}

	det, err := onnx.New(onnx.Config{ModelPath: model})
	if err != nil {
		return nil, fmt.Errorf("load detector: %w", err)
	}
	defer det.Destroy()

	msPerFrame := 1000.0 / fps
	frames := make([]api.FrameRequest, 0, len(names))
	for i, name := range names {
		img, err := imaging.Open(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("open image %s: %w", name, err)
		}
		raw, err := det.ProcessImage(img, int64(float64(i)*msPerFrame))
		if err != nil {
			return nil, fmt.Errorf("detect on %s: %w", name, err)
		}
		frames = append(frames, api.FrameRequest{
			CX:          raw.CX,
			CY:          raw.CY,
			W:           raw.W,
			H:           raw.H,
			Conf:        raw.Conf,
			TimestampMs: raw.TimestampMs,
		})
	}
	return frames, nil
}

// runLocal feeds the frames through an in-process session and returns its
// summary.
func runLocal(frames []api.FrameRequest) (session.Summary, error) {
	var tuning *config.TuningConfig
	if *tuningPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*tuningPath)
		if err != nil {
			return session.Summary{}, fmt.Errorf("load tuning config: %w", err)
		}
	} else {
		tuning = config.MustLoadDefaultConfig()
	}

	manager := session.NewManager(session.Config{Tuning: tuning})
	if _, err := manager.Start(*exercise, *tempo); err != nil {
		return session.Summary{}, err
	}

	for _, frame := range frames {
		// Sequential calls never trip the in-flight latch; ok is always true.
		if _, _, err := manager.IngestFrame(frame.Raw()); err != nil {
			return session.Summary{}, err
		}
	}

	return manager.Stop(context.Background())
}

// streamToServer replays the recording against a live service.
func streamToServer(client httputil.HTTPClient, base string, frames []api.FrameRequest) error {
	base = strings.TrimRight(base, "/")

	post := func(path string, body interface{}) error {
		resp, err := httputil.PostJSON(client, base+path, body)
		if err != nil {
			return fmt.Errorf("POST %s: %w", path, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != 200 {
			msg, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, msg)
		}
		return nil
	}

	if err := post("/api/session/start", map[string]string{
		"exercise": *exercise,
		"tempo":    *tempo,
	}); err != nil {
		return err
	}
	for i, frame := range frames {
		if err := post("/api/frames", frame); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	if err := post("/api/session/stop", nil); err != nil {
		return err
	}
	log.Printf("streamed %d frames to %s", len(frames), base)
	return nil
}

// printRepTable writes the per-rep metrics as an aligned table.
func printRepTable(w io.Writer, sum session.Summary, targetUnits string) {
	fmt.Fprintf(w, "session %s: exercise=%s tempo=%s reps=%d avg=%.1f elapsed=%s\n\n",
		sum.Session.ID, sum.Session.Exercise, sum.Session.Tempo,
		len(sum.Reps), sum.Stats.AverageScore, sum.Stats.Elapsed)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "REP\tDIST (%s)\tRANGE (%s)\tDUR (s)\tPTS\tCOMP\tEFF\tDENS\tSMOOTH\tSCORE\n",
		targetUnits, targetUnits)
	for _, rec := range sum.Reps {
		fmt.Fprintf(tw, "%d\t%.3f\t%.3f\t%.2f\t%d\t%d\t%d\t%d\t%d\t%d\n",
			rec.RepNumber,
			units.ConvertDistance(rec.TotalDistanceM, targetUnits),
			units.ConvertDistance(rec.VerticalRangeM, targetUnits),
			float64(rec.DurationMs)/1000.0,
			rec.PointCount,
			rec.Completeness, rec.Efficiency, rec.Density, rec.Smoothness,
			rec.Score,
		)
	}
	tw.Flush()
}

// writeArtifacts saves the CSV, chart HTML, and per-rep PNGs under dir.
func writeArtifacts(dir string, sum session.Summary) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	csvPath := filepath.Join(dir, report.Filename(sum, "csv"))
	csvFile, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	if err := report.WriteCSV(csvFile, sum, *displayUnits); err != nil {
		csvFile.Close()
		return err
	}
	if err := csvFile.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}

	htmlPath := filepath.Join(dir, report.Filename(sum, "html"))
	htmlFile, err := os.Create(htmlPath)
	if err != nil {
		return fmt.Errorf("create chart: %w", err)
	}
	if err := report.RenderChart(htmlFile, sum); err != nil {
		htmlFile.Close()
		return err
	}
	if err := htmlFile.Close(); err != nil {
		return fmt.Errorf("close chart: %w", err)
	}

	n, err := report.NewPlotWriter(nil, dir).SavePathPlots("plots", sum)
	if err != nil {
		return err
	}
	log.Printf("wrote %s, %s, and %d plots under %s", csvPath, htmlPath, n, filepath.Join(dir, "plots"))
	return nil
}
