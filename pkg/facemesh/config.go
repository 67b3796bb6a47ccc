// Package facemesh turns a video frame into face mesh landmarks.
//
// Two ONNX models run through OpenCV's DNN module: YuNet finds face boxes,
// then a 468-point face landmark model is evaluated on a square crop around
// the best box. Landmarks are returned normalized to the full frame, with
// the same indices as the MediaPipe face mesh.
package facemesh

import (
	"fmt"
	"os"
)

// MeshPoints is the number of landmarks produced by the landmark model.
const MeshPoints = 468

// Config holds face mesh configuration.
type Config struct {
	DetectorModel  string  // Path to the YuNet ONNX model
	LandmarkModel  string  // Path to the face landmark ONNX model
	ScoreThreshold float64 // Minimum YuNet face score
	NMSThreshold   float64 // YuNet non-maximum suppression threshold
	InputSize      int     // Landmark model input edge in pixels
	Margin         float64 // Crop padding on each side, as a fraction of the box
	MaxFaces       int     // Faces to mesh per frame, best score first
}

// DefaultConfig returns defaults for a single tracked face.
func DefaultConfig() Config {
	return Config{
		DetectorModel:  "models/face_detection_yunet_2023mar.onnx",
		LandmarkModel:  "models/face_landmark.onnx",
		ScoreThreshold: 0.6,
		NMSThreshold:   0.3,
		InputSize:      192,
		Margin:         0.25,
		MaxFaces:       1,
	}
}

// Validate checks parameters and that both model files exist.
func (c Config) Validate() error {
	for _, path := range []string{c.DetectorModel, c.LandmarkModel} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
	}
	if c.InputSize <= 0 {
		return fmt.Errorf("input size must be positive, got %d", c.InputSize)
	}
	if c.MaxFaces <= 0 {
		return fmt.Errorf("max faces must be positive, got %d", c.MaxFaces)
	}
	if c.Margin < 0 {
		return fmt.Errorf("margin must not be negative, got %v", c.Margin)
	}
	return nil
}
