package screening

import "errors"

var (
	// ErrInvalidLandmarks is returned when a landmark set cannot produce a
	// smile ratio (too few points, non-positive frame size, zero face width).
	ErrInvalidLandmarks = errors.New("screening: invalid landmarks")

	// ErrNoSamples is returned when a shakiness score is requested for an
	// empty audio buffer.
	ErrNoSamples = errors.New("screening: no audio samples")

	// ErrNoRecorder is returned when an audio capture is triggered on a
	// controller built without a Recorder.
	ErrNoRecorder = errors.New("screening: no recorder configured")
)
