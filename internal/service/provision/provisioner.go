package provision

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"objectdetection/internal/config"
	"objectdetection/internal/logger"
	"objectdetection/internal/service/detector"
)

// ErrDownload marks failures to obtain the model artifact over the network or to
// write it to disk, as opposed to failures loading an artifact that is present.
var ErrDownload = errors.New("model download failed")

// Model is a loaded detection model that must be closed when no longer needed.
type Model interface {
	detector.Model
	Close() error
}

// Loader turns a provisioned artifact into a ready model.
type Loader func(path string) (Model, error)

// Fetcher places the artifact found at url into dst.
type Fetcher interface {
	Fetch(ctx context.Context, url, dst string) error
}

// Provisioner makes sure the configured model artifact exists locally and loads it.
type Provisioner struct {
	name    string
	dir     string
	url     string
	fetcher Fetcher
	load    Loader
	out     io.Writer
	logger  *logger.Logger
}

// NewProvisioner creates a Provisioner for the configured model.
func NewProvisioner(config *config.Config, fetcher Fetcher, load Loader, out io.Writer, logger *logger.Logger) *Provisioner {
	return &Provisioner{
		name:    config.ModelName,
		dir:     config.ModelDirectory,
		url:     config.ModelURL,
		fetcher: fetcher,
		load:    load,
		out:     out,
		logger:  logger,
	}
}

// Path is the location of the model artifact.
func (p *Provisioner) Path() string {
	return filepath.Join(p.dir, p.name)
}

// Ensure creates the model directory, fetches the artifact when absent and
// returns the loaded model. Errors are meant to be fatal to the caller.
func (p *Provisioner) Ensure(ctx context.Context) (Model, error) {
	path, err := p.EnsureArtifact(ctx)
	if err != nil {
		return nil, err
	}

	model, err := p.load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", path, err)
	}

	p.logger.Info("Model %s loaded with %d classes", path, len(model.Names()))
	return model, nil
}

// EnsureArtifact makes sure the artifact is present and returns its path. The
// fetch happens at most once; later calls find the file already in place.
func (p *Provisioner) EnsureArtifact(ctx context.Context) (string, error) {
	if err := p.ensureDir(); err != nil {
		return "", err
	}

	path := p.Path()
	info, err := os.Stat(path)
	switch {
	case err == nil && info.Mode().IsRegular():
		fmt.Fprintf(p.out, "Model '%s' already exists in '%s'. No download needed.\n", p.name, p.dir)
		return path, nil
	case err == nil:
		return "", fmt.Errorf("model path %s is not a regular file", path)
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("failed to access model %s: %w", path, err)
	}

	if p.url == "" {
		return "", fmt.Errorf("%w: model '%s' not found in '%s' and no download URL is configured", ErrDownload, p.name, p.dir)
	}

	fmt.Fprintf(p.out, "Model '%s' not found in '%s'. Attempting to download...\n", p.name, p.dir)
	p.logger.Info("Fetching model from %s", p.url)

	if err := p.fetcher.Fetch(ctx, p.url, path); err != nil {
		p.logger.Error("Model download failed: %v", err)
		return "", fmt.Errorf("%w: model '%s': %w", ErrDownload, p.name, err)
	}

	fmt.Fprintf(p.out, "Model '%s' downloaded successfully to %s\n", p.name, path)
	return path, nil
}

func (p *Provisioner) ensureDir() error {
	if _, err := os.Stat(p.dir); err == nil {
		return nil
	}

	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}
	fmt.Fprintf(p.out, "Created directory: %s\n", p.dir)
	return nil
}

// ReportError prints a provisioning failure for the user. The connectivity hint
// is only shown for download failures.
func ReportError(out io.Writer, err error) {
	if errors.Is(err, ErrDownload) {
		fmt.Fprintf(out, "Error downloading model: %v\n", err)
		fmt.Fprintln(out, "Please ensure you have an active internet connection and sufficient disk space.")
		return
	}
	fmt.Fprintf(out, "Error loading model: %v\n", err)
}
