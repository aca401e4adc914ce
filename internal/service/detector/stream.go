package detector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"objectdetection/internal/logger"
	"objectdetection/internal/model"
	"objectdetection/internal/service/yolo"
)

const streamWindowTitle = "Live detection (press 'q' to quit)"

// StreamDetector runs detection on a live camera feed until cancelled.
type StreamDetector struct {
	model      Model
	openCamera CameraOpener
	openWindow WindowOpener
	device     int
	confidence float64
	stop       StopPredicate
	observer   FrameObserver
	history    History
	out        io.Writer
	logger     *logger.Logger
}

// StreamOptions configures a StreamDetector. Zero values fall back to defaults:
// StopOnQuitKey for Stop and stdout for Out.
type StreamOptions struct {
	Device     int
	Confidence float64
	Stop       StopPredicate
	Observer   FrameObserver
	History    History
	Out        io.Writer
}

// NewStreamDetector wires a StreamDetector.
func NewStreamDetector(m Model, openCamera CameraOpener, openWindow WindowOpener, opts StreamOptions, logger *logger.Logger) *StreamDetector {
	stop := opts.Stop
	if stop == nil {
		stop = StopOnQuitKey
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &StreamDetector{
		model:      m,
		openCamera: openCamera,
		openWindow: openWindow,
		device:     opts.Device,
		confidence: opts.Confidence,
		stop:       stop,
		observer:   opts.Observer,
		history:    opts.History,
		out:        out,
		logger:     logger,
	}
}

// DetectStream shows annotated camera frames until the stop predicate fires, the
// camera runs dry or ctx is done. The camera and window are released on return.
func (d *StreamDetector) DetectStream(ctx context.Context) (*model.StreamSummary, error) {
	fmt.Fprintln(d.out, "\n--- Starting live stream detection (press 'q' to quit) ---")
	fmt.Fprintln(d.out, "If no camera feed appears, ensure your webcam is connected and not in use by another application.")

	camera, err := d.openCamera(d.device)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", d.device, err)
	}
	defer camera.Close()

	window, err := d.openWindow(streamWindowTitle)
	if err != nil {
		return nil, fmt.Errorf("failed to open display window: %w", err)
	}
	defer window.Close()

	summary := &model.StreamSummary{}
	if d.history != nil {
		source := fmt.Sprintf("camera:%d", d.device)
		if runID, err := d.history.StartStream(source); err != nil {
			d.logger.Warning("Could not record stream run: %v", err)
		} else {
			defer d.finishHistory(runID, summary)
		}
	}

	for {
		if ctx.Err() != nil {
			summary.Stopped = model.StopContext
			break
		}

		frame, err := camera.Read()
		if errors.Is(err, ErrSourceExhausted) {
			if summary.Frames == 0 {
				return summary, fmt.Errorf("camera %d produced no frames: %w", d.device, err)
			}
			summary.Stopped = model.StopExhausted
			break
		}
		if err != nil {
			return summary, fmt.Errorf("failed to read frame: %w", err)
		}

		key, err := d.processFrame(frame, window, summary)
		if err != nil {
			return summary, err
		}
		if d.stop(key) {
			summary.Stopped = model.StopKey
			break
		}
	}

	d.logger.Info("Stream stopped (%s) after %d frames", summary.Stopped, summary.Frames)
	fmt.Fprintln(d.out, "Live stream detection stopped.")
	return summary, nil
}

// finishHistory stores the final frame count, including for streams that failed
// part way.
func (d *StreamDetector) finishHistory(runID int64, summary *model.StreamSummary) {
	if err := d.history.FinishStream(runID, summary); err != nil {
		d.logger.Warning("Could not finish stream run %d: %v", runID, err)
	}
}

// processFrame detects, annotates and shows one frame, then polls the window for
// a key press. The frame is always released.
func (d *StreamDetector) processFrame(frame Frame, window Window, summary *model.StreamSummary) (int, error) {
	defer frame.Close()

	detections, err := d.model.Detect(frame, d.confidence)
	if err != nil {
		return -1, fmt.Errorf("detection failed on frame %d: %w", summary.Frames, err)
	}
	names := d.model.Names()
	for i := range detections {
		detections[i].Label = yolo.ClassName(names, detections[i].ClassID)
	}

	if err := d.model.Annotate(frame, detections); err != nil {
		return -1, fmt.Errorf("failed to annotate frame: %w", err)
	}
	if err := window.Show(frame); err != nil {
		return -1, fmt.Errorf("failed to display frame: %w", err)
	}

	summary.Frames++
	summary.Detections += len(detections)
	if d.observer != nil {
		d.observer(summary.Frames, detections)
	}

	return window.WaitKey(1), nil
}
