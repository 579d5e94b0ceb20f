// Package onnx adapts a YOLO-style ONNX barbell detector into the raw
// anchor frames the motion pipeline consumes. It exists for offline
// replay over recorded video frames; live deployments usually run the
// detector on-device and post frames to the API instead.
package onnx

import (
	"fmt"
	"image"
	"os"
	"runtime"
	"sync"

	"github.com/disintegration/imaging"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/liftlab-data/barpath.report/internal/motion/detect"
)

// Config describes the exported model's tensor layout.
type Config struct {
	ModelPath   string
	InputWidth  int // defaults to 640
	InputHeight int // defaults to 640
	Anchors     int // defaults to 8400
}

func (c Config) withDefaults() Config {
	if c.InputWidth <= 0 {
		c.InputWidth = 640
	}
	if c.InputHeight <= 0 {
		c.InputHeight = 640
	}
	if c.Anchors <= 0 {
		c.Anchors = 8400
	}
	return c
}

var ortInit sync.Once

// initRuntime initializes the shared ONNX runtime environment once per
// process. ONNXRUNTIME_SHARED_LIBRARY_PATH overrides the library location.
func initRuntime() error {
	var err error
	ortInit.Do(func() {
		if p := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); p != "" {
			ort.SetSharedLibraryPath(p)
		}
		err = ort.InitializeEnvironment()
	})
	return err
}

// Detector runs one ONNX inference session. It is not safe for concurrent
// use; the pipeline's single-writer discipline already serializes frames.
type Detector struct {
	cfg     Config
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// New loads the model and prepares the input (1,3,H,W) and output
// (1,5,anchors) tensors.
func New(cfg Config) (*Detector, error) {
	cfg = cfg.withDefaults()
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("onnx: model path is required")
	}
	if err := initRuntime(); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("create session options: %w", err)
	}
	defer options.Destroy()
	options.SetIntraOpNumThreads(runtime.NumCPU())

	inputTensor, err := ort.NewEmptyTensor[float32](
		ort.NewShape(1, 3, int64(cfg.InputHeight), int64(cfg.InputWidth)))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	outputTensor, err := ort.NewEmptyTensor[float32](
		ort.NewShape(1, 5, int64(cfg.Anchors)))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(
		cfg.ModelPath,
		[]string{"images"},
		[]string{"output0"},
		[]ort.ArbitraryTensor{inputTensor},
		[]ort.ArbitraryTensor{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	return &Detector{
		cfg:     cfg,
		session: session,
		input:   inputTensor,
		output:  outputTensor,
	}, nil
}

// ProcessImage runs inference on one frame and returns the raw anchor
// arrays stamped with tsMs. Box coordinates come out normalized to [0,1]
// regardless of the source image size.
func (d *Detector) ProcessImage(img image.Image, tsMs int64) (detect.RawFrame, error) {
	resized := imaging.Resize(img, d.cfg.InputWidth, d.cfg.InputHeight, imaging.Lanczos)
	fillInput(resized, d.input.GetData(), d.cfg.InputWidth, d.cfg.InputHeight)

	if err := d.session.Run(); err != nil {
		return detect.RawFrame{}, fmt.Errorf("onnx inference: %w", err)
	}

	return FrameFromOutput(d.output.GetData(), d.cfg.Anchors,
		float32(d.cfg.InputWidth), float32(d.cfg.InputHeight), tsMs), nil
}

// Destroy releases the session and its tensors.
func (d *Detector) Destroy() {
	d.session.Destroy()
	d.input.Destroy()
	d.output.Destroy()
}

// fillInput writes the image into the tensor buffer in CHW order, RGB
// scaled to [0,1].
func fillInput(pic image.Image, data []float32, width, height int) {
	channelSize := width * height
	for y := 0; y < height; y++ {
		offset := y * width
		for x := 0; x < width; x++ {
			i := offset + x
			r, g, b, _ := pic.At(x, y).RGBA()
			data[i] = float32(r>>8) / 255.0
			data[channelSize+i] = float32(g>>8) / 255.0
			data[channelSize*2+i] = float32(b>>8) / 255.0
		}
	}
}

// FrameFromOutput reshapes a flat (1,5,A) output buffer into per-anchor
// slices with coordinates normalized by the model input size. Buffers
// shorter than 5*anchors are truncated to whole anchors; the
// post-processor treats missing values as below threshold.
func FrameFromOutput(out []float32, anchors int, inputW, inputH float32, tsMs int64) detect.RawFrame {
	if n := len(out) / 5; n < anchors {
		anchors = n
	}
	if anchors <= 0 {
		return detect.RawFrame{TimestampMs: tsMs}
	}

	frame := detect.RawFrame{
		CX:          make([]float32, anchors),
		CY:          make([]float32, anchors),
		W:           make([]float32, anchors),
		H:           make([]float32, anchors),
		Conf:        make([]float32, anchors),
		TimestampMs: tsMs,
	}
	for i := 0; i < anchors; i++ {
		frame.CX[i] = out[i] / inputW
		frame.CY[i] = out[anchors+i] / inputH
		frame.W[i] = out[2*anchors+i] / inputW
		frame.H[i] = out[3*anchors+i] / inputH
		frame.Conf[i] = out[4*anchors+i]
	}
	return frame
}
