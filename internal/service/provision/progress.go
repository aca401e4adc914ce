package provision

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"
)

// Progress reports download advancement.
type Progress interface {
	Add(n int64)
	Done(success bool)
}

// ProgressFactory starts a Progress for a download of total bytes; total is -1
// when the size is unknown.
type ProgressFactory func(title string, total int64) Progress

type noProgress struct{}

func (noProgress) Add(int64)  {}
func (noProgress) Done(bool) {}

// NoProgress discards progress updates.
func NoProgress(string, int64) Progress {
	return noProgress{}
}

// TerminalProgress renders a pterm progress bar, or a spinner when the size is
// unknown.
func TerminalProgress(title string, total int64) Progress {
	if total <= 0 {
		spinner, err := pterm.DefaultSpinner.
			WithRemoveWhenDone(false).
			WithText("Downloading " + title).
			Start()
		if err != nil {
			return noProgress{}
		}
		return &spinnerProgress{spinner: spinner, title: title}
	}

	bar, err := pterm.DefaultProgressbar.
		WithTotal(int(total)).
		WithTitle("Downloading " + title).
		Start()
	if err != nil {
		return noProgress{}
	}
	return &barProgress{bar: bar}
}

type barProgress struct {
	bar *pterm.ProgressbarPrinter
	mu  sync.Mutex
}

func (p *barProgress) Add(n int64) {
	if n <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar.Add(int(n))
}

func (p *barProgress) Done(success bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bar.Stop()
	if !success {
		pterm.Error.Println("Download failed")
	}
}

type spinnerProgress struct {
	spinner *pterm.SpinnerPrinter
	title   string
	read    atomic.Int64
}

func (p *spinnerProgress) Add(n int64) {
	total := p.read.Add(n)
	p.spinner.UpdateText("Downloading " + p.title + " (" + formatBytes(total) + ")")
}

func (p *spinnerProgress) Done(success bool) {
	if success {
		p.spinner.Success("Downloaded " + p.title + " (" + formatBytes(p.read.Load()) + ")")
		return
	}
	p.spinner.Fail("Download of " + p.title + " failed")
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// ProgressReader counts bytes read through it and reports them periodically.
type ProgressReader struct {
	Total   int64
	Current atomic.Int64
	io.Reader
	OnProgress func(current, total int64)
	quit       chan struct{}
	done       chan struct{}
	closeOnce  sync.Once
}

// NewProgressReader wraps reader. When onProgress is set, it is called every
// 100ms from a background goroutine and once more on Close.
func NewProgressReader(total int64, reader io.Reader, onProgress func(current, total int64)) *ProgressReader {
	p := &ProgressReader{
		Total:      total,
		Reader:     reader,
		OnProgress: onProgress,
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	if onProgress != nil {
		go p.Start()
	} else {
		close(p.done)
	}

	return p
}

// Close stops reporting after a final update and waits for the reporter to exit.
func (p *ProgressReader) Close() {
	p.closeOnce.Do(func() {
		close(p.quit)
	})
	<-p.done
}

// Start runs the reporting loop until Close.
func (p *ProgressReader) Start() {
	defer close(p.done)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.OnProgress(p.Current.Load(), p.Total)
		case <-p.quit:
			p.OnProgress(p.Current.Load(), p.Total)
			return
		}
	}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.Reader.Read(b)
	p.Current.Add(int64(n))
	return n, err
}
