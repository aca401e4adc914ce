package ai

import (
	"fmt"

	"objectdetection/internal/service/detector"

	"gocv.io/x/gocv"
)

// Camera reads frames from a capture device.
type Camera struct {
	capture *gocv.VideoCapture
}

// OpenCamera opens the capture device with the given index.
func OpenCamera(device int) (detector.Camera, error) {
	capture, err := gocv.VideoCaptureDevice(device)
	if err != nil {
		return nil, err
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("camera %d is not available", device)
	}
	return &Camera{capture: capture}, nil
}

// Read grabs the next frame, or returns detector.ErrSourceExhausted.
func (c *Camera) Read() (detector.Frame, error) {
	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, detector.ErrSourceExhausted
	}
	return NewFrame(mat), nil
}

// Close releases the device.
func (c *Camera) Close() error {
	return c.capture.Close()
}
