package dto

import "objectdetection/internal/model"

// DetectionResult is the wire form of a detection.
type DetectionResult struct {
	ClassID    int     `json:"class_id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// FrameMessage is broadcast to live viewers for every stream frame.
type FrameMessage struct {
	Frame      int               `json:"frame"`
	Detections []DetectionResult `json:"detections"`
}

// NewFrameMessage converts detections into their wire form.
func NewFrameMessage(frame int, detections []model.Detection) FrameMessage {
	msg := FrameMessage{
		Frame:      frame,
		Detections: make([]DetectionResult, 0, len(detections)),
	}
	for _, d := range detections {
		msg.Detections = append(msg.Detections, DetectionResult{
			ClassID:    d.ClassID,
			Label:      d.Label,
			Confidence: d.Confidence,
			X:          d.Box.Min.X,
			Y:          d.Box.Min.Y,
			Width:      d.Box.Dx(),
			Height:     d.Box.Dy(),
		})
	}
	return msg
}
