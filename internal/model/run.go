package model

import "time"

// RunKind distinguishes image runs from live stream runs.
type RunKind string

const (
	RunImage  RunKind = "image"
	RunStream RunKind = "stream"
)

// Run represents a detection run record.
type Run struct {
	ID        int64     `json:"id"`
	Kind      RunKind   `json:"kind"`
	Source    string    `json:"source"`
	SaveDir   string    `json:"save_dir"`
	Frames    int       `json:"frames"`
	StartedAt time.Time `json:"started_at"`
}

// RunDetection is a detection stored against a run.
type RunDetection struct {
	ID         int64   `json:"id"`
	RunID      int64   `json:"run_id"`
	ClassID    int     `json:"class_id"`
	ClassName  string  `json:"class_name"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

// ClassCount is the number of stored detections for a class.
type ClassCount struct {
	ClassName string `json:"class_name"`
	Count     int    `json:"count"`
}
