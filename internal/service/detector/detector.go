package detector

import (
	"errors"
	"image"

	"objectdetection/internal/model"
)

var (
	// ErrImageNotFound is returned when the requested image path does not exist.
	ErrImageNotFound = errors.New("image not found")
	// ErrSourceExhausted is returned by a Camera when no further frames are available.
	ErrSourceExhausted = errors.New("frame source exhausted")
)

// Frame is a decoded image owned by whoever obtained it.
type Frame interface {
	Size() image.Point
	Close() error
}

// Model runs object detection on frames and draws its results.
type Model interface {
	Names() map[int]string
	Detect(frame Frame, confidence float64) ([]model.Detection, error)
	Annotate(frame Frame, detections []model.Detection) error
}

// ImageCodec reads images from disk and encodes frames for saving.
type ImageCodec interface {
	Read(path string) (Frame, error)
	Encode(frame Frame, ext string) ([]byte, error)
}

// Camera is a continuous frame source.
type Camera interface {
	Read() (Frame, error)
	Close() error
}

// CameraOpener opens a capture device by index.
type CameraOpener func(device int) (Camera, error)

// Window shows frames and reports key presses. WaitKey returns -1 when no key
// was pressed within delay milliseconds; a delay of 0 blocks until a key press.
type Window interface {
	Show(frame Frame) error
	WaitKey(delay int) int
	Close() error
}

// WindowOpener creates a named display window.
type WindowOpener func(title string) (Window, error)

// RunStore allocates result directories and writes annotated images.
type RunStore interface {
	NewRun() (string, error)
	Save(dir, name string, data []byte) (string, error)
}

// History records runs. Stream runs are started when the camera opens and
// finished with their summary. A nil History disables recording.
type History interface {
	RecordImage(result *model.Result) error
	StartStream(source string) (int64, error)
	FinishStream(runID int64, summary *model.StreamSummary) error
}

// StopPredicate decides from the last key press whether the stream should end.
type StopPredicate func(key int) bool

// FrameObserver receives the detections of every processed stream frame.
type FrameObserver func(frame int, detections []model.Detection)

const keyEscape = 27

// StopOnQuitKey ends the stream on q, Q or Esc.
func StopOnQuitKey(key int) bool {
	if key < 0 {
		return false
	}
	switch key & 0xFF {
	case 'q', 'Q', keyEscape:
		return true
	}
	return false
}
