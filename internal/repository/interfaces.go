package repository

import (
	"objectdetection/internal/model"
)

// RunRepository defines the interface for detection run records.
type RunRepository interface {
	// Create operations
	Insert(run *model.Run) (int64, error)
	UpdateFrames(id int64, frames int) error

	// Read operations
	GetByID(id int64) (*model.Run, error)
	GetRecent(limit int) ([]model.Run, error)
	GetTotalCount() (int, error)
}

// DetectionRepository defines the interface for detection data operations.
type DetectionRepository interface {
	// Create operations
	InsertBatch(detections []model.RunDetection) error

	// Read operations
	GetByRunID(runID int64) ([]model.RunDetection, error)
	CountByClass() ([]model.ClassCount, error)
}
