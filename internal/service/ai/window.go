package ai

import (
	"errors"
	"os"
	"runtime"

	"objectdetection/internal/service/detector"

	"gocv.io/x/gocv"
)

// ErrNoDisplay is returned when no graphical display is reachable.
var ErrNoDisplay = errors.New("no display available")

// Window is an OpenCV highgui window.
type Window struct {
	window *gocv.Window
}

// OpenWindow creates a window titled title.
func OpenWindow(title string) (detector.Window, error) {
	if !displayAvailable() {
		return nil, ErrNoDisplay
	}
	return &Window{window: gocv.NewWindow(title)}, nil
}

// Show draws frame into the window.
func (w *Window) Show(frame detector.Frame) error {
	mat, err := matOf(frame)
	if err != nil {
		return err
	}
	w.window.IMShow(mat)
	return nil
}

// WaitKey pumps window events for delay milliseconds (0 blocks) and returns
// the pressed key or -1.
func (w *Window) WaitKey(delay int) int {
	return w.window.WaitKey(delay)
}

// Close destroys the window.
func (w *Window) Close() error {
	w.window.Close()
	return nil
}

// X11/Wayland sessions advertise themselves through the environment; other
// platforms always have a desktop.
func displayAvailable() bool {
	if runtime.GOOS != "linux" {
		return true
	}
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}
