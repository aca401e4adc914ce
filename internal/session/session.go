package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"objectdetection/internal/logger"
	"objectdetection/internal/model"
	"objectdetection/internal/service/detector"
)

const menu = "\nChoose an option:\n" +
	"1. Detect objects in an image\n" +
	"2. Detect objects in a live stream (webcam)\n" +
	"3. Exit\n" +
	"Enter your choice (1/2/3): "

const pathPrompt = "Enter the path to the image file (e.g., 'path/to/your/image.jpg'): "

// ImageRunner runs detection on a single image.
type ImageRunner interface {
	DetectImage(path string) (*model.Result, error)
}

// StreamRunner runs detection on a live feed.
type StreamRunner interface {
	DetectStream(ctx context.Context) (*model.StreamSummary, error)
}

// Session is the interactive menu loop.
type Session struct {
	images  ImageRunner
	streams StreamRunner
	in      *bufio.Scanner
	out     io.Writer
	logger  *logger.Logger
}

func New(images ImageRunner, streams StreamRunner, in io.Reader, out io.Writer, logger *logger.Logger) *Session {
	return &Session{
		images:  images,
		streams: streams,
		in:      bufio.NewScanner(in),
		out:     out,
		logger:  logger,
	}
}

// Run shows the menu until the user chooses to exit, input ends or ctx is done.
// Detector failures are reported and never end the loop.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(s.out, menu)
		choice, ok := s.readLine()
		if !ok {
			fmt.Fprintln(s.out)
			return s.exit()
		}

		switch choice {
		case "1":
			fmt.Fprint(s.out, pathPrompt)
			path, ok := s.readLine()
			if !ok {
				fmt.Fprintln(s.out)
				return s.exit()
			}
			s.runImage(path)
		case "2":
			s.runStream(ctx)
		case "3":
			return s.exit()
		default:
			fmt.Fprintln(s.out, "Invalid choice. Please enter 1, 2, or 3.")
		}
	}
}

func (s *Session) runImage(path string) {
	_, err := s.images.DetectImage(path)
	if err == nil {
		return
	}

	if errors.Is(err, detector.ErrImageNotFound) {
		fmt.Fprintf(s.out, "Error: Image not found at '%s'\n", path)
		s.logger.Warning("Image not found: %s", path)
		return
	}
	fmt.Fprintf(s.out, "An error occurred during image detection: %v\n", err)
	s.logger.Error("Image detection failed for %s: %v", path, err)
}

func (s *Session) runStream(ctx context.Context) {
	if _, err := s.streams.DetectStream(ctx); err != nil {
		fmt.Fprintf(s.out, "An error occurred during live stream detection: %v\n", err)
		fmt.Fprintln(s.out, "Please check your camera connection and permissions.")
		s.logger.Error("Stream detection failed: %v", err)
	}
}

func (s *Session) exit() error {
	fmt.Fprintln(s.out, "Exiting program. Goodbye!")
	if err := s.in.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}

func (s *Session) readLine() (string, bool) {
	if !s.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(s.in.Text()), true
}
