package sqlite

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"objectdetection/internal/model"
	"objectdetection/internal/repository"
)

var (
	_ repository.RunRepository       = (*RunRepository)(nil)
	_ repository.DetectionRepository = (*DetectionRepository)(nil)
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")
	db, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("Database file should exist")
	}
	return db
}

func TestRunRepository_InsertAndGet(t *testing.T) {
	db := newTestDB(t)
	runs := NewRunRepository(db)

	started := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	id, err := runs.Insert(&model.Run{
		Kind:      model.RunImage,
		Source:    "bus.jpg",
		SaveDir:   "runs/detect/exp",
		Frames:    1,
		StartedAt: started,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := runs.GetByID(id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got == nil {
		t.Fatal("Expected run, got nil")
	}
	if got.Kind != model.RunImage || got.Source != "bus.jpg" || got.SaveDir != "runs/detect/exp" {
		t.Errorf("Unexpected run %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("Expected started_at %v, got %v", started, got.StartedAt)
	}

	missing, err := runs.GetByID(id + 100)
	if err != nil {
		t.Fatalf("GetByID for missing run failed: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for missing run, got %+v", missing)
	}
}

func TestRunRepository_RecentAndFrames(t *testing.T) {
	db := newTestDB(t)
	runs := NewRunRepository(db)

	base := time.Now().Add(-time.Hour)
	var lastID int64
	for i := 0; i < 5; i++ {
		id, err := runs.Insert(&model.Run{
			Kind:      model.RunStream,
			Source:    "camera:0",
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
		lastID = id
	}

	if err := runs.UpdateFrames(lastID, 120); err != nil {
		t.Fatalf("UpdateFrames failed: %v", err)
	}

	recent, err := runs.GetRecent(3)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(recent))
	}
	if recent[0].ID != lastID {
		t.Errorf("Expected newest run first, got id %d", recent[0].ID)
	}
	if recent[0].Frames != 120 {
		t.Errorf("Expected 120 frames, got %d", recent[0].Frames)
	}

	total, err := runs.GetTotalCount()
	if err != nil {
		t.Fatalf("GetTotalCount failed: %v", err)
	}
	if total != 5 {
		t.Errorf("Expected 5 runs, got %d", total)
	}
}

func TestDetectionRepository_BatchAndCounts(t *testing.T) {
	db := newTestDB(t)
	runs := NewRunRepository(db)
	detections := NewDetectionRepository(db)

	runID, err := runs.Insert(&model.Run{Kind: model.RunImage, Source: "street.jpg", StartedAt: time.Now()})
	if err != nil {
		t.Fatalf("Insert run failed: %v", err)
	}

	box := image.Rect(10, 20, 110, 220)
	batch := []model.RunDetection{
		{RunID: runID, ClassID: 0, ClassName: "person", X: box.Min.X, Y: box.Min.Y, Width: box.Dx(), Height: box.Dy(), Confidence: 0.91},
		{RunID: runID, ClassID: 0, ClassName: "person", Confidence: 0.64},
		{RunID: runID, ClassID: 2, ClassName: "car", Confidence: 0.77},
	}
	if err := detections.InsertBatch(batch); err != nil {
		t.Fatalf("InsertBatch failed: %v", err)
	}

	if err := detections.InsertBatch(nil); err != nil {
		t.Errorf("Empty batch should be a no-op, got %v", err)
	}

	stored, err := detections.GetByRunID(runID)
	if err != nil {
		t.Fatalf("GetByRunID failed: %v", err)
	}
	if len(stored) != 3 {
		t.Fatalf("Expected 3 detections, got %d", len(stored))
	}
	if stored[0].Confidence != 0.91 || stored[0].Width != 100 || stored[0].Height != 200 {
		t.Errorf("Unexpected first detection %+v", stored[0])
	}

	counts, err := detections.CountByClass()
	if err != nil {
		t.Fatalf("CountByClass failed: %v", err)
	}
	if len(counts) != 2 || counts[0].ClassName != "person" || counts[0].Count != 2 {
		t.Errorf("Unexpected counts %+v", counts)
	}
}
