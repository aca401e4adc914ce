package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// StreamConfidence is the fixed confidence threshold for live stream detection.
	// It is not configurable.
	StreamConfidence = 0.25
	// DefaultModelURL points at the ONNX export of YOLOv10n.
	DefaultModelURL = "https://huggingface.co/onnx-community/yolov10n/resolve/main/onnx/model.onnx"
)

type Config struct {
	ModelName        string
	ModelDirectory   string
	ModelURL         string
	LabelsPath       string // one class name per line; empty means COCO
	OutputLayout     string // auto, end-to-end, attributes-major or anchors-major
	ResultsDirectory string
	ImageConfidence  float64
	IOUThreshold     float64
	InputSize        int
	CameraDevice     int
	DownloadTimeout  time.Duration
	LogDirectory     string
	HistoryEnabled   bool
	HistoryDatabase  string
	BroadcastAddr    string // empty disables the live detection feed
}

// ModelPath is where the provisioned model artifact lives.
func (c *Config) ModelPath() string {
	return filepath.Join(c.ModelDirectory, c.ModelName)
}

// Load reads the configuration from the environment, after loading .env if present.
func Load() *Config {
	_ = godotenv.Load()

	resultsDir := getEnv("RESULTS_DIR", filepath.Join(".", "runs", "detect"))

	return &Config{
		ModelName:        getEnv("MODEL_NAME", "yolov10n.onnx"),
		ModelDirectory:   getEnv("MODEL_DIR", "models"),
		ModelURL:         getEnv("MODEL_URL", DefaultModelURL),
		LabelsPath:       getEnv("LABELS_PATH", ""),
		OutputLayout:     getEnv("OUTPUT_LAYOUT", "auto"),
		ResultsDirectory: resultsDir,
		ImageConfidence:  getEnvAsFloat("IMAGE_CONFIDENCE", 0.25),
		IOUThreshold:     getEnvAsFloat("IOU_THRESHOLD", 0.45),
		InputSize:        getEnvAsInt("INPUT_SIZE", 640),
		CameraDevice:     getEnvAsInt("CAMERA_DEVICE", 0),
		DownloadTimeout:  time.Duration(getEnvAsInt("DOWNLOAD_TIMEOUT", 300)) * time.Second,
		LogDirectory:     getEnv("LOG_DIR", filepath.Join(".", "logs")),
		HistoryEnabled:   getEnvAsBool("HISTORY_ENABLED", true),
		HistoryDatabase:  getEnv("HISTORY_DB", filepath.Join(resultsDir, "history.db")),
		BroadcastAddr:    getEnv("BROADCAST_ADDR", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil && floatValue >= 0 && floatValue <= 1 {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
