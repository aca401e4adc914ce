package yolo

import (
	"image"
	"testing"
)

func TestDetectLayout(t *testing.T) {
	tests := []struct {
		name    string
		shape   []int
		classes int
		layout  Layout
		rows    int
		cols    int
		err     bool
	}{
		{"yolov10", []int{1, 300, 6}, 80, LayoutEndToEnd, 300, 6, false},
		{"yolov8", []int{1, 84, 8400}, 80, LayoutAttributesMajor, 84, 8400, false},
		{"transposed", []int{1, 8400, 84}, 80, LayoutAnchorsMajor, 8400, 84, false},
		{"no batch", []int{300, 6}, 80, LayoutEndToEnd, 300, 6, false},
		{"4d", []int{1, 1, 100, 7}, 80, 0, 0, 0, true},
		{"too narrow", []int{1, 3, 2}, 80, 0, 0, 0, true},
		{"empty", []int{1, 0, 6}, 80, 0, 0, 0, true},
		{"yolov10 unknown classes", []int{1, 300, 6}, 0, LayoutEndToEnd, 300, 6, false},
		{"two classes transposed", []int{1, 8400, 6}, 2, LayoutAnchorsMajor, 8400, 6, false},
		{"two classes", []int{1, 6, 8400}, 2, LayoutAttributesMajor, 6, 8400, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, rows, cols, err := DetectLayout(tt.shape, tt.classes)
			if tt.err {
				if err == nil {
					t.Errorf("Expected error for shape %v", tt.shape)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if layout != tt.layout || rows != tt.rows || cols != tt.cols {
				t.Errorf("DetectLayout(%v) = %v, %d, %d; expected %v, %d, %d", tt.shape, layout, rows, cols, tt.layout, tt.rows, tt.cols)
			}
		})
	}
}

func TestDetectAndDecode_TwoClassModel(t *testing.T) {
	anchors := 8400
	data := make([]float32, anchors*6)
	copy(data, []float32{320, 320, 100, 100, 0.1, 0.9})

	layout, rows, cols, err := DetectLayout([]int{1, anchors, 6}, len(Names([]string{"cat", "dog"})))
	if err != nil {
		t.Fatalf("DetectLayout failed: %v", err)
	}

	candidates, err := Decode(data, layout, rows, cols, 0.25, NewGeometry(image.Pt(640, 640), 640))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("Expected the class 1 detection to survive, got %+v (layout %v)", candidates, layout)
	}
	if candidates[0].ClassID != 1 || candidates[0].Score != 0.9 || candidates[0].Box != image.Rect(270, 270, 370, 370) {
		t.Errorf("Unexpected candidate %+v", candidates[0])
	}
}

func TestParseLayout(t *testing.T) {
	tests := []struct {
		name     string
		expected Layout
		err      bool
	}{
		{"", LayoutAuto, false},
		{"auto", LayoutAuto, false},
		{"End-To-End", LayoutEndToEnd, false},
		{"attributes-major", LayoutAttributesMajor, false},
		{" anchors-major ", LayoutAnchorsMajor, false},
		{"nchw", LayoutAuto, true},
	}

	for _, tt := range tests {
		got, err := ParseLayout(tt.name)
		if (err != nil) != tt.err || got != tt.expected {
			t.Errorf("ParseLayout(%q) = %v, %v; expected %v, error %v", tt.name, got, err, tt.expected, tt.err)
		}
	}
}

func TestDecode_EndToEnd(t *testing.T) {
	data := []float32{
		10, 20, 110, 220, 0.90, 0,
		200, 200, 300, 260, 0.10, 2,
		50, 60, 150, 160, 0.55, 16,
	}
	geo := NewGeometry(image.Pt(1280, 1280), 640)

	candidates, err := Decode(data, LayoutEndToEnd, 3, 6, 0.25, geo)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates above threshold, got %d", len(candidates))
	}
	if candidates[0].ClassID != 0 || candidates[0].Box != image.Rect(20, 40, 220, 440) {
		t.Errorf("Unexpected first candidate %+v", candidates[0])
	}
	if candidates[1].ClassID != 16 || candidates[1].Score != 0.55 {
		t.Errorf("Unexpected second candidate %+v", candidates[1])
	}
}

func TestDecode_AttributesMajor(t *testing.T) {
	// 4 box attributes + 2 classes, 3 anchors.
	anchors := 3
	data := []float32{
		100, 300, 500, // cx
		100, 300, 500, // cy
		40, 40, 40, // w
		20, 20, 20, // h
		0.8, 0.1, 0.2, // class 0
		0.1, 0.7, 0.1, // class 1
	}
	geo := NewGeometry(image.Pt(640, 640), 640)

	candidates, err := Decode(data, LayoutAttributesMajor, 6, anchors, 0.5, geo)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].ClassID != 0 || candidates[0].Box != image.Rect(80, 90, 120, 110) {
		t.Errorf("Unexpected first candidate %+v", candidates[0])
	}
	if candidates[1].ClassID != 1 {
		t.Errorf("Expected class 1 second, got %+v", candidates[1])
	}
}

func TestDecode_AnchorsMajorClipsToFrame(t *testing.T) {
	data := []float32{
		630, 10, 40, 40, 0.9, 0.0,
	}
	geo := NewGeometry(image.Pt(640, 480), 640)

	candidates, err := Decode(data, LayoutAnchorsMajor, 1, 6, 0.25, geo)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("Expected 1 candidate, got %d", len(candidates))
	}
	if !candidates[0].Box.In(geo.Bounds) {
		t.Errorf("Box %v not clipped to %v", candidates[0].Box, geo.Bounds)
	}
}

func TestDecode_ShortData(t *testing.T) {
	if _, err := Decode([]float32{1, 2, 3}, LayoutEndToEnd, 1, 6, 0.25, NewGeometry(image.Pt(10, 10), 640)); err == nil {
		t.Error("Expected error for truncated output")
	}
}
