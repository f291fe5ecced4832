package detector

import (
	"time"

	"gocv.io/x/gocv"
)

// Detector defines the interface for hand landmark detectors.
type Detector interface {
	// Detect analyzes a video frame captured at ts and returns the detected
	// hands. Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat, ts time.Time) ([]HandLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// NumHands is the maximum number of hands to detect. Practice only looks
	// at the first hand, so the default is 1.
	NumHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// ScriptPath overrides the location of mediapipe_service.py.
	ScriptPath string

	// LandmarkerModel is the hand_landmarker.task file. Empty means the
	// file next to the service script.
	LandmarkerModel string

	// PythonPath overrides the interpreter used to run the service.
	PythonPath string

	// IdleTimeout shuts the subprocess down after this long without frames.
	IdleTimeout time.Duration
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		NumHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		IdleTimeout:     30 * time.Second,
	}
}
