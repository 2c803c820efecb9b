package detector

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrServiceNotFound is returned when the MediaPipe helper script cannot be located.
var ErrServiceNotFound = errors.New("mediapipe_service.py not found")

// Detector defines the interface for landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the detected pose and face.
	// A frame with nothing in view yields an empty Result, not an error.
	Detect(frame *gocv.Mat) (*Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Result holds everything detected in a single frame.
type Result struct {
	// Pose holds the 33 body landmarks, or nil when no body was found.
	Pose []Landmark `json:"pose"`

	// Face is nil when no face was found.
	Face *Face `json:"face"`
}

// HasPose reports whether a body pose was detected.
func (r *Result) HasPose() bool {
	return r != nil && len(r.Pose) > 0
}

// HasFace reports whether a face with blend-shape scores was detected.
func (r *Result) HasFace() bool {
	return r != nil && r.Face != nil && len(r.Face.Blendshapes) > 0
}

// Config holds configuration options for landmark detection.
type Config struct {
	// NumFaces is the maximum number of faces to detect (default: 1).
	NumFaces int `mapstructure:"num_faces"`

	// NumPoses is the maximum number of bodies to detect (default: 1).
	NumPoses int `mapstructure:"num_poses"`

	// MinDetectionConf is the minimum detection confidence threshold (0.0-1.0).
	MinDetectionConf float64 `mapstructure:"min_detection_confidence"`

	// MinPresenceConf is the minimum presence confidence threshold (0.0-1.0).
	MinPresenceConf float64 `mapstructure:"min_presence_confidence"`

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64 `mapstructure:"min_tracking_confidence"`

	// ScriptPath overrides the helper script lookup when set.
	ScriptPath string `mapstructure:"script_path"`

	// PythonPath overrides the interpreter lookup when set.
	PythonPath string `mapstructure:"python_path"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		NumFaces:         1,
		NumPoses:         1,
		MinDetectionConf: 0.5,
		MinPresenceConf:  0.5,
		MinTrackingConf:  0.5,
	}
}
