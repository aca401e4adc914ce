package yolo

import (
	"fmt"
	"image"
	"sort"
	"strings"
)

// Layout is the arrangement of a YOLO output tensor.
type Layout int

const (
	// LayoutEndToEnd rows are x1, y1, x2, y2, score, class (YOLOv10, NMS-free).
	LayoutEndToEnd Layout = iota
	// LayoutAttributesMajor is [4+C, anchors] with cx, cy, w, h then class scores (YOLOv8/11).
	LayoutAttributesMajor
	// LayoutAnchorsMajor is the transposed form, [anchors, 4+C].
	LayoutAnchorsMajor
)

func (l Layout) String() string {
	switch l {
	case LayoutAuto:
		return "auto"
	case LayoutEndToEnd:
		return "end-to-end"
	case LayoutAttributesMajor:
		return "attributes-major"
	case LayoutAnchorsMajor:
		return "anchors-major"
	}
	return fmt.Sprintf("Layout(%d)", int(l))
}

// NeedsNMS reports whether candidates from this layout still overlap.
func (l Layout) NeedsNMS() bool {
	return l != LayoutEndToEnd
}

// LayoutAuto leaves the choice to DetectLayout.
const LayoutAuto Layout = -1

// ParseLayout reads a layout name as printed by String, or "auto"/"" for LayoutAuto.
func ParseLayout(name string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return LayoutAuto, nil
	case "end-to-end":
		return LayoutEndToEnd, nil
	case "attributes-major":
		return LayoutAttributesMajor, nil
	case "anchors-major":
		return LayoutAnchorsMajor, nil
	}
	return LayoutAuto, fmt.Errorf("unknown output layout %q", name)
}

const endToEndWidth = 6

// DetectLayout inspects an output shape such as [1, 300, 6] or [1, 84, 8400] and
// returns the layout together with the two inner dimensions. numClasses is the
// size of the label vocabulary, or 0 when unknown. A 6 wide output is end-to-end
// unless the model has exactly 2 classes, where it is the anchors-major 4+2 form.
func DetectLayout(shape []int, numClasses int) (Layout, int, int, error) {
	if len(shape) == 3 && shape[0] == 1 {
		shape = shape[1:]
	}
	if len(shape) != 2 {
		return 0, 0, 0, fmt.Errorf("unsupported output shape %v", shape)
	}

	rows, cols := shape[0], shape[1]
	if rows <= 0 || cols <= 0 {
		return 0, 0, 0, fmt.Errorf("empty output shape %v", shape)
	}

	switch {
	case cols == endToEndWidth && numClasses != endToEndWidth-4:
		return LayoutEndToEnd, rows, cols, nil
	case rows < cols && rows > 4:
		return LayoutAttributesMajor, rows, cols, nil
	case cols > 4:
		return LayoutAnchorsMajor, rows, cols, nil
	}
	return 0, 0, 0, fmt.Errorf("unsupported output shape %v", shape)
}

// Candidate is a decoded box before class-name resolution.
type Candidate struct {
	ClassID int
	Score   float32
	Box     image.Rectangle
}

// Geometry maps network input coordinates back onto the source frame.
type Geometry struct {
	ScaleX float32
	ScaleY float32
	Bounds image.Rectangle
}

// NewGeometry builds the mapping for a frame resized to a square input.
func NewGeometry(frame image.Point, inputSize int) Geometry {
	return Geometry{
		ScaleX: float32(frame.X) / float32(inputSize),
		ScaleY: float32(frame.Y) / float32(inputSize),
		Bounds: image.Rect(0, 0, frame.X, frame.Y),
	}
}

func (g Geometry) rect(x1, y1, x2, y2 float32) image.Rectangle {
	r := image.Rect(
		int(x1*g.ScaleX),
		int(y1*g.ScaleY),
		int(x2*g.ScaleX),
		int(y2*g.ScaleY),
	)
	return r.Intersect(g.Bounds)
}

// Decode turns a row-major output of the given layout into candidates scoring at
// least minScore. Results are sorted by descending score.
func Decode(data []float32, layout Layout, rows, cols int, minScore float32, geo Geometry) ([]Candidate, error) {
	if len(data) < rows*cols {
		return nil, fmt.Errorf("output has %d values, expected %d", len(data), rows*cols)
	}

	var candidates []Candidate
	add := func(classID int, score, x1, y1, x2, y2 float32) {
		if score < minScore {
			return
		}
		box := geo.rect(x1, y1, x2, y2)
		if box.Empty() {
			return
		}
		candidates = append(candidates, Candidate{ClassID: classID, Score: score, Box: box})
	}

	switch layout {
	case LayoutEndToEnd:
		for i := 0; i < rows; i++ {
			row := data[i*cols : (i+1)*cols]
			add(int(row[5]), row[4], row[0], row[1], row[2], row[3])
		}

	case LayoutAttributesMajor:
		attrs, anchors := rows, cols
		at := func(attr, anchor int) float32 { return data[attr*anchors+anchor] }
		for a := 0; a < anchors; a++ {
			classID, score := 0, float32(0)
			for c := 4; c < attrs; c++ {
				if s := at(c, a); s > score {
					classID, score = c-4, s
				}
			}
			cx, cy, w, h := at(0, a), at(1, a), at(2, a), at(3, a)
			add(classID, score, cx-w/2, cy-h/2, cx+w/2, cy+h/2)
		}

	case LayoutAnchorsMajor:
		anchors, attrs := rows, cols
		for a := 0; a < anchors; a++ {
			row := data[a*attrs : (a+1)*attrs]
			classID, score := 0, float32(0)
			for c := 4; c < attrs; c++ {
				if row[c] > score {
					classID, score = c-4, row[c]
				}
			}
			cx, cy, w, h := row[0], row[1], row[2], row[3]
			add(classID, score, cx-w/2, cy-h/2, cx+w/2, cy+h/2)
		}

	default:
		return nil, fmt.Errorf("unknown layout %v", layout)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates, nil
}
