package ai

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"sync"

	"objectdetection/internal/config"
	"objectdetection/internal/logger"
	"objectdetection/internal/model"
	"objectdetection/internal/service/detector"
	"objectdetection/internal/service/provision"
	"objectdetection/internal/service/yolo"

	"gocv.io/x/gocv"
)

const (
	// DefaultInputSize is the square input resolution of the stock YOLO exports.
	DefaultInputSize = 640
	// DefaultIOUThreshold is used for NMS on raw (non end-to-end) outputs.
	DefaultIOUThreshold = 0.45
)

// DetectorService wraps a YOLO ONNX network loaded through OpenCV's DNN module.
type DetectorService struct {
	net          gocv.Net
	names        map[int]string
	layout       yolo.Layout
	inputSize    int
	iouThreshold float32
	modelPath    string
	logger       *logger.Logger
	mu           sync.Mutex
}

// NewDetectorService loads the network at modelPath. Class names come from
// config.LabelsPath when set, otherwise the COCO vocabulary is used.
func NewDetectorService(modelPath string, config *config.Config, logger *logger.Logger) (*DetectorService, error) {
	labels := yolo.COCO
	if config.LabelsPath != "" {
		loaded, err := yolo.LoadLabels(config.LabelsPath)
		if err != nil {
			return nil, err
		}
		labels = loaded
	}

	layout, err := yolo.ParseLayout(config.OutputLayout)
	if err != nil {
		return nil, err
	}

	inputSize := config.InputSize
	if inputSize <= 0 {
		inputSize = DefaultInputSize
	}
	iou := config.IOUThreshold
	if iou <= 0 {
		iou = DefaultIOUThreshold
	}

	service := &DetectorService{
		names:        yolo.Names(labels),
		layout:       layout,
		inputSize:    inputSize,
		iouThreshold: float32(iou),
		modelPath:    modelPath,
		logger:       logger,
	}

	if err := service.initializeNet(); err != nil {
		return nil, err
	}

	return service, nil
}

// Loader adapts NewDetectorService to the provisioner.
func Loader(config *config.Config, logger *logger.Logger) provision.Loader {
	return func(path string) (provision.Model, error) {
		return NewDetectorService(path, config, logger)
	}
}

// initializeNet loads the DNN network and sets backend/target preferences.
func (s *DetectorService) initializeNet() error {
	if _, err := os.Stat(s.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", s.modelPath)
	}

	net := gocv.ReadNetFromONNX(s.modelPath)

	if net.Empty() {
		return fmt.Errorf("failed to load network from %s", s.modelPath)
	}
	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)

	if errBackend != nil || errTarget != nil {
		net.Close()
		return fmt.Errorf("failed to set preferable backend or target")
	}

	s.net = net
	s.logger.Info("Detection network initialized from %s", s.modelPath)
	return nil
}

// Names returns the id to class name mapping.
func (s *DetectorService) Names() map[int]string {
	return s.names
}

// Detect runs the network on frame and returns detections scoring at least
// confidence, best first, in frame coordinates.
func (s *DetectorService) Detect(frame detector.Frame, confidence float64) ([]model.Detection, error) {
	mat, err := matOf(frame)
	if err != nil {
		return nil, err
	}
	if mat.Empty() {
		return nil, fmt.Errorf("frame is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(s.inputSize, s.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	s.net.SetInput(blob, "")

	output := s.net.Forward("")
	defer output.Close()

	layout, rows, cols, err := yolo.DetectLayout(output.Size(), len(s.names))
	if err != nil {
		return nil, err
	}
	if s.layout != yolo.LayoutAuto {
		layout = s.layout
	}

	flat := output.Reshape(1, rows)
	defer flat.Close()

	data, err := flat.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read network output: %w", err)
	}

	geo := yolo.NewGeometry(image.Pt(mat.Cols(), mat.Rows()), s.inputSize)
	candidates, err := yolo.Decode(data, layout, rows, cols, float32(confidence), geo)
	if err != nil {
		return nil, err
	}
	if layout.NeedsNMS() {
		candidates = yolo.NMS(candidates, s.iouThreshold)
	}

	results := make([]model.Detection, 0, len(candidates))
	for _, c := range candidates {
		results = append(results, model.Detection{
			ClassID:    c.ClassID,
			Label:      yolo.ClassName(s.names, c.ClassID),
			Confidence: float64(c.Score),
			Box:        c.Box,
		})
	}

	return results, nil
}

// Annotate draws a box and a "label confidence" caption for every detection.
func (s *DetectorService) Annotate(frame detector.Frame, detections []model.Detection) error {
	mat, err := matOf(frame)
	if err != nil {
		return err
	}

	for _, detection := range detections {
		col := classColor(detection.ClassID)
		err = gocv.Rectangle(&mat, detection.Box, col, 2)
		if err != nil {
			return fmt.Errorf("failed to draw rectangle: %v", err)
		}

		label := fmt.Sprintf("%s %.2f", detection.Label, detection.Confidence)
		y := detection.Box.Min.Y - 5
		if y < 12 {
			y = detection.Box.Min.Y + 15
		}
		err = gocv.PutText(&mat, label, image.Pt(detection.Box.Min.X, y), gocv.FontHersheySimplex, 0.5, col, 1)
		if err != nil {
			return fmt.Errorf("failed to draw text: %v", err)
		}
	}

	return nil
}

// Close releases the network.
func (s *DetectorService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.net.Close()
}

var palette = []color.RGBA{
	{R: 255, G: 56, B: 56},
	{R: 255, G: 157, B: 151},
	{R: 255, G: 112, B: 31},
	{R: 255, G: 178, B: 29},
	{R: 207, G: 210, B: 49},
	{R: 72, G: 249, B: 10},
	{R: 146, G: 204, B: 23},
	{R: 61, G: 219, B: 134},
	{R: 26, G: 147, B: 52},
	{R: 0, G: 212, B: 187},
	{R: 44, G: 153, B: 168},
	{R: 0, G: 194, B: 255},
	{R: 52, G: 69, B: 147},
	{R: 100, G: 115, B: 255},
	{R: 0, G: 24, B: 236},
	{R: 132, G: 56, B: 255},
}

func classColor(classID int) color.RGBA {
	if classID < 0 {
		classID = -classID
	}
	return palette[classID%len(palette)]
}
