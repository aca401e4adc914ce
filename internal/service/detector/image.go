package detector

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"objectdetection/internal/logger"
	"objectdetection/internal/model"
	"objectdetection/internal/service/yolo"
)

const imageWindowTitle = "Detection result (press any key)"

// ImageDetector runs detection on single image files.
type ImageDetector struct {
	model      Model
	codec      ImageCodec
	store      RunStore
	openWindow WindowOpener
	history    History
	confidence float64
	out        io.Writer
	logger     *logger.Logger
}

// ImageOptions configures an ImageDetector.
type ImageOptions struct {
	Confidence float64
	History    History
	Out        io.Writer
}

// NewImageDetector wires an ImageDetector.
func NewImageDetector(m Model, codec ImageCodec, store RunStore, openWindow WindowOpener, opts ImageOptions, logger *logger.Logger) *ImageDetector {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &ImageDetector{
		model:      m,
		codec:      codec,
		store:      store,
		openWindow: openWindow,
		history:    opts.History,
		confidence: opts.Confidence,
		out:        out,
		logger:     logger,
	}
}

// DetectImage detects objects in the image at path, saves and shows the annotated
// result, prints one line per detection and waits for a key press in the window.
// A missing path yields ErrImageNotFound without touching the model.
func (d *ImageDetector) DetectImage(path string) (*model.Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at '%s'", ErrImageNotFound, path)
		}
		return nil, fmt.Errorf("failed to access image '%s': %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w at '%s': path is a directory", ErrImageNotFound, path)
	}

	fmt.Fprintf(d.out, "\n--- Running detection on image: %s ---\n", path)

	frame, err := d.codec.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	defer frame.Close()

	detections, err := d.model.Detect(frame, d.confidence)
	if err != nil {
		return nil, fmt.Errorf("detection failed: %w", err)
	}
	names := d.model.Names()
	for i := range detections {
		detections[i].Label = yolo.ClassName(names, detections[i].ClassID)
	}

	if err := d.model.Annotate(frame, detections); err != nil {
		return nil, fmt.Errorf("failed to annotate image: %w", err)
	}

	result, err := d.save(path, frame, detections)
	if err != nil {
		return nil, err
	}

	d.printResult(result)
	d.record(result)

	window, err := d.openWindow(imageWindowTitle)
	if err != nil {
		return result, fmt.Errorf("failed to open display window: %w", err)
	}
	defer window.Close()

	if err := window.Show(frame); err != nil {
		return result, fmt.Errorf("failed to display image: %w", err)
	}

	window.WaitKey(0)
	return result, nil
}

func (d *ImageDetector) save(path string, frame Frame, detections []model.Detection) (*model.Result, error) {
	ext := strings.ToLower(filepath.Ext(path))
	name := filepath.Base(path)
	if ext == "" {
		ext = ".jpg"
		name += ext
	}

	data, err := d.codec.Encode(frame, ext)
	if err != nil {
		return nil, fmt.Errorf("failed to encode annotated image: %w", err)
	}

	dir, err := d.store.NewRun()
	if err != nil {
		return nil, err
	}
	savePath, err := d.store.Save(dir, name, data)
	if err != nil {
		return nil, err
	}

	return &model.Result{
		Source:     path,
		Detections: detections,
		SaveDir:    dir,
		SavePath:   savePath,
	}, nil
}

func (d *ImageDetector) printResult(result *model.Result) {
	fmt.Fprintf(d.out, "Detected %d objects.\n", len(result.Detections))
	for _, det := range result.Detections {
		fmt.Fprintf(d.out, "  - Class: %s, Confidence: %.2f\n", det.Label, det.Confidence)
	}
	fmt.Fprintf(d.out, "Detection complete. Results saved in '%s'.\n", result.SaveDir)
}

func (d *ImageDetector) record(result *model.Result) {
	if d.history == nil {
		return
	}
	if err := d.history.RecordImage(result); err != nil {
		d.logger.Warning("Could not record image run: %v", err)
	}
}
