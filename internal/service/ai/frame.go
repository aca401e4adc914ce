package ai

import (
	"fmt"
	"image"

	"objectdetection/internal/service/detector"

	"gocv.io/x/gocv"
)

// Frame owns an OpenCV matrix.
type Frame struct {
	mat gocv.Mat
}

// NewFrame takes ownership of mat.
func NewFrame(mat gocv.Mat) *Frame {
	return &Frame{mat: mat}
}

// Size returns the frame dimensions.
func (f *Frame) Size() image.Point {
	return image.Pt(f.mat.Cols(), f.mat.Rows())
}

// Close releases the matrix.
func (f *Frame) Close() error {
	return f.mat.Close()
}

func matOf(frame detector.Frame) (gocv.Mat, error) {
	f, ok := frame.(*Frame)
	if !ok {
		return gocv.Mat{}, fmt.Errorf("unsupported frame type %T", frame)
	}
	return f.mat, nil
}

// Codec reads and encodes images with OpenCV's imgcodecs.
type Codec struct{}

// Read decodes the image at path.
func (Codec) Read(path string) (detector.Frame, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to decode image %s", path)
	}
	return NewFrame(mat), nil
}

// Encode encodes frame in the format implied by ext (".jpg", ".png", ...).
func (Codec) Encode(frame detector.Frame, ext string) ([]byte, error) {
	mat, err := matOf(frame)
	if err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(gocv.FileExt(ext), mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	encoded := make([]byte, len(buf.GetBytes()))
	copy(encoded, buf.GetBytes())
	return encoded, nil
}
