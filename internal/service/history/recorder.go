package history

import (
	"fmt"
	"time"

	"objectdetection/internal/logger"
	"objectdetection/internal/model"
	"objectdetection/internal/repository"
)

// Recorder stores finished detection runs in the history repositories.
type Recorder struct {
	runs       repository.RunRepository
	detections repository.DetectionRepository
	logger     *logger.Logger
	now        func() time.Time
}

// NewRecorder creates a Recorder over the given repositories.
func NewRecorder(runs repository.RunRepository, detections repository.DetectionRepository, logger *logger.Logger) *Recorder {
	return &Recorder{
		runs:       runs,
		detections: detections,
		logger:     logger,
		now:        time.Now,
	}
}

// RecordImage stores an image run and all of its detections.
func (r *Recorder) RecordImage(result *model.Result) error {
	runID, err := r.runs.Insert(&model.Run{
		Kind:      model.RunImage,
		Source:    result.Source,
		SaveDir:   result.SaveDir,
		Frames:    1,
		StartedAt: r.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to record image run: %w", err)
	}

	batch := make([]model.RunDetection, 0, len(result.Detections))
	for _, det := range result.Detections {
		batch = append(batch, model.RunDetection{
			RunID:      runID,
			ClassID:    det.ClassID,
			ClassName:  det.Label,
			X:          det.Box.Min.X,
			Y:          det.Box.Min.Y,
			Width:      det.Box.Dx(),
			Height:     det.Box.Dy(),
			Confidence: det.Confidence,
		})
	}
	if err := r.detections.InsertBatch(batch); err != nil {
		return fmt.Errorf("failed to record detections: %w", err)
	}

	r.logger.Info("Recorded image run %d with %d detections", runID, len(batch))
	return nil
}

// StartStream stores a stream run with no frames yet and returns its id.
// Per-frame detections are not kept.
func (r *Recorder) StartStream(source string) (int64, error) {
	runID, err := r.runs.Insert(&model.Run{
		Kind:      model.RunStream,
		Source:    source,
		StartedAt: r.now(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record stream run: %w", err)
	}

	r.logger.Info("Started stream run %d for %s", runID, source)
	return runID, nil
}

// FinishStream stores the frame count of a stream run.
func (r *Recorder) FinishStream(runID int64, summary *model.StreamSummary) error {
	if err := r.runs.UpdateFrames(runID, summary.Frames); err != nil {
		return fmt.Errorf("failed to finish stream run %d: %w", runID, err)
	}

	r.logger.Info("Finished stream run %d (%d frames, %d detections)", runID, summary.Frames, summary.Detections)
	return nil
}
