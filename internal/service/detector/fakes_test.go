package detector

import (
	"errors"
	"image"

	"objectdetection/internal/model"
)

type fakeFrame struct {
	closed bool
}

func (f *fakeFrame) Size() image.Point { return image.Pt(640, 480) }

func (f *fakeFrame) Close() error {
	f.closed = true
	return nil
}

type fakeModel struct {
	detections []model.Detection
	detectErr  error
	calls      int
	annotated  int
}

func (m *fakeModel) Names() map[int]string {
	return map[int]string{0: "person", 2: "car", 16: "dog"}
}

func (m *fakeModel) Detect(frame Frame, confidence float64) ([]model.Detection, error) {
	m.calls++
	if m.detectErr != nil {
		return nil, m.detectErr
	}
	var out []model.Detection
	for _, det := range m.detections {
		if det.Confidence >= confidence {
			out = append(out, det)
		}
	}
	return out, nil
}

func (m *fakeModel) Annotate(frame Frame, detections []model.Detection) error {
	m.annotated++
	return nil
}

type fakeCodec struct {
	frames  []*fakeFrame
	readErr error
	ext     string
}

func (c *fakeCodec) Read(path string) (Frame, error) {
	if c.readErr != nil {
		return nil, c.readErr
	}
	f := &fakeFrame{}
	c.frames = append(c.frames, f)
	return f, nil
}

func (c *fakeCodec) Encode(frame Frame, ext string) ([]byte, error) {
	c.ext = ext
	return []byte("encoded"), nil
}

type fakeStore struct {
	dir   string
	saved map[string][]byte
}

func (s *fakeStore) NewRun() (string, error) { return s.dir, nil }

func (s *fakeStore) Save(dir, name string, data []byte) (string, error) {
	if s.saved == nil {
		s.saved = make(map[string][]byte)
	}
	path := dir + "/" + name
	s.saved[path] = data
	return path, nil
}

type fakeWindow struct {
	keys    []int
	shown   int
	waits   []int
	closed  bool
	showErr error
}

func (w *fakeWindow) Show(frame Frame) error {
	if w.showErr != nil {
		return w.showErr
	}
	w.shown++
	return nil
}

func (w *fakeWindow) WaitKey(delay int) int {
	w.waits = append(w.waits, delay)
	if len(w.keys) == 0 {
		return -1
	}
	key := w.keys[0]
	w.keys = w.keys[1:]
	return key
}

func (w *fakeWindow) Close() error {
	w.closed = true
	return nil
}

func windowOpener(w *fakeWindow) WindowOpener {
	return func(title string) (Window, error) { return w, nil }
}

type fakeCamera struct {
	frames  int
	read    int
	readErr error
	closed  bool
	handed  []*fakeFrame
}

func (c *fakeCamera) Read() (Frame, error) {
	if c.readErr != nil {
		return nil, c.readErr
	}
	if c.read >= c.frames {
		return nil, ErrSourceExhausted
	}
	c.read++
	f := &fakeFrame{}
	c.handed = append(c.handed, f)
	return f, nil
}

func (c *fakeCamera) Close() error {
	c.closed = true
	return nil
}

type fakeHistory struct {
	images   []*model.Result
	started  []string
	finished map[int64]model.StreamSummary
}

func (h *fakeHistory) RecordImage(result *model.Result) error {
	h.images = append(h.images, result)
	return nil
}

func (h *fakeHistory) StartStream(source string) (int64, error) {
	h.started = append(h.started, source)
	return int64(len(h.started)), nil
}

func (h *fakeHistory) FinishStream(runID int64, summary *model.StreamSummary) error {
	if h.finished == nil {
		h.finished = make(map[int64]model.StreamSummary)
	}
	h.finished[runID] = *summary
	return nil
}

var errNoCamera = errors.New("VideoCapture: device 0 not available")
