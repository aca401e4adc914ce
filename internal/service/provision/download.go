package provision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"objectdetection/internal/logger"
)

// HTTPFetcher downloads artifacts over HTTP(S) into a temporary file and renames
// it into place once complete, so an interrupted download never leaves a
// truncated artifact under the final name.
type HTTPFetcher struct {
	client   *http.Client
	progress ProgressFactory
	logger   *logger.Logger
}

// NewHTTPFetcher creates a fetcher with the given overall timeout.
func NewHTTPFetcher(timeout time.Duration, progress ProgressFactory, logger *logger.Logger) *HTTPFetcher {
	if progress == nil {
		progress = NoProgress
	}
	return &HTTPFetcher{
		client:   &http.Client{Timeout: timeout},
		progress: progress,
		logger:   logger,
	}
}

// Fetch downloads url to dst.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed, status code: %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), filepath.Base(dst)+".*.part")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	bar := f.progress(filepath.Base(dst), resp.ContentLength)
	var last int64
	reader := NewProgressReader(resp.ContentLength, resp.Body, func(current, total int64) {
		bar.Add(current - last)
		last = current
	})

	written, err := io.Copy(tmp, reader)
	reader.Close()
	if err == nil {
		err = verifyLength(written, resp.ContentLength)
	}
	if err != nil {
		bar.Done(false)
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}
	bar.Done(true)

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return fmt.Errorf("failed to move model into place: %w", err)
	}

	f.logger.Info("Downloaded %d bytes to %s", written, dst)
	return nil
}

func verifyLength(written, expected int64) error {
	if written == 0 {
		return fmt.Errorf("empty response body")
	}
	if expected > 0 && written != expected {
		return fmt.Errorf("incomplete download: got %d of %d bytes", written, expected)
	}
	return nil
}
