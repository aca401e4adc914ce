package model

import "image"

// Detection is a single object found in an image or frame.
type Detection struct {
	ClassID    int             `json:"class_id"`
	Label      string          `json:"label"`
	Confidence float64         `json:"confidence"`
	Box        image.Rectangle `json:"box"`
}

// Result is the outcome of running detection on one image.
type Result struct {
	Source     string
	Detections []Detection
	SaveDir    string // directory the annotated image was written to
	SavePath   string
}

// StreamSummary describes a finished live stream session.
type StreamSummary struct {
	Frames     int
	Detections int
	Stopped    StopReason
}

// StopReason records why a stream loop ended.
type StopReason string

const (
	StopKey       StopReason = "key"
	StopExhausted StopReason = "exhausted"
	StopContext   StopReason = "context"
)
