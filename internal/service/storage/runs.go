package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"objectdetection/internal/config"
	"objectdetection/internal/logger"
)

const (
	// RunPrefix names run directories: exp, exp2, exp3, ...
	RunPrefix = "exp"
	// maxRuns bounds the directory scan.
	maxRuns = 100000
)

// RunStore allocates numbered run directories under the results directory and
// writes annotated images into them.
type RunStore struct {
	resultsDir string
	mu         sync.Mutex
	logger     *logger.Logger
}

// NewRunStore creates a RunStore rooted at the configured results directory.
func NewRunStore(config *config.Config, logger *logger.Logger) *RunStore {
	return &RunStore{
		resultsDir: config.ResultsDirectory,
		logger:     logger,
	}
}

// NewRun creates and returns the first free run directory.
func (s *RunStore) NewRun() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.resultsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	for i := 1; i <= maxRuns; i++ {
		dir := filepath.Join(s.resultsDir, runName(i))
		err := os.Mkdir(dir, 0755)
		if err == nil {
			s.logger.Info("Created run directory %s", dir)
			return dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to create run directory: %w", err)
		}
	}

	return "", fmt.Errorf("no free run directory in %s", s.resultsDir)
}

// Save writes data as name inside dir and returns the full path.
func (s *RunStore) Save(dir, name string, data []byte) (string, error) {
	fullpath := filepath.Join(dir, filepath.Base(name))

	if err := os.WriteFile(fullpath, data, 0644); err != nil {
		s.logger.Error("Error saving image %s: %v", fullpath, err)
		return "", fmt.Errorf("failed to save %s: %w", fullpath, err)
	}

	s.logger.Info("Saved %d bytes to %s", len(data), fullpath)
	return fullpath, nil
}

func runName(i int) string {
	if i == 1 {
		return RunPrefix
	}
	return RunPrefix + strconv.Itoa(i)
}
