package yolo

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func TestIoU(t *testing.T) {
	tests := []struct {
		name     string
		a, b     image.Rectangle
		expected float32
	}{
		{"identical", image.Rect(0, 0, 10, 10), image.Rect(0, 0, 10, 10), 1},
		{"disjoint", image.Rect(0, 0, 10, 10), image.Rect(20, 20, 30, 30), 0},
		{"half", image.Rect(0, 0, 10, 10), image.Rect(5, 0, 15, 10), float32(50) / float32(150)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IoU(tt.a, tt.b); got != tt.expected {
				t.Errorf("IoU = %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestNMS_PerClass(t *testing.T) {
	candidates := []Candidate{
		{ClassID: 0, Score: 0.6, Box: image.Rect(2, 2, 102, 102)},
		{ClassID: 0, Score: 0.9, Box: image.Rect(0, 0, 100, 100)},
		{ClassID: 2, Score: 0.7, Box: image.Rect(0, 0, 100, 100)},
		{ClassID: 0, Score: 0.5, Box: image.Rect(300, 300, 400, 400)},
	}

	kept := NMS(candidates, 0.45)

	if len(kept) != 3 {
		t.Fatalf("Expected 3 boxes after NMS, got %d: %+v", len(kept), kept)
	}
	if kept[0].Score != 0.9 || kept[1].ClassID != 2 || kept[2].Score != 0.5 {
		t.Errorf("Unexpected NMS output %+v", kept)
	}
}

func TestLoadLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.txt")
	if err := os.WriteFile(path, []byte("cat\n\n dog \nbird\n"), 0644); err != nil {
		t.Fatalf("Failed to write labels: %v", err)
	}

	labels, err := LoadLabels(path)
	if err != nil {
		t.Fatalf("LoadLabels failed: %v", err)
	}
	names := Names(labels)
	if len(names) != 3 || names[1] != "dog" || names[2] != "bird" {
		t.Errorf("Unexpected names %v", names)
	}
	if ClassName(names, 7) != "class_7" {
		t.Errorf("Expected fallback name, got %s", ClassName(names, 7))
	}

	empty := filepath.Join(t.TempDir(), "empty.txt")
	os.WriteFile(empty, nil, 0644)
	if _, err := LoadLabels(empty); err == nil {
		t.Error("Expected error for empty labels file")
	}
}

func TestCOCO(t *testing.T) {
	names := Names(COCO)
	if len(names) != 80 {
		t.Errorf("Expected 80 COCO classes, got %d", len(names))
	}
	if names[0] != "person" || names[79] != "toothbrush" {
		t.Errorf("Unexpected COCO ends %q, %q", names[0], names[79])
	}
}
