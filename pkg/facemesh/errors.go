package facemesh

import "errors"

var (
	// ErrModelNotFound is returned when a model file is missing.
	ErrModelNotFound = errors.New("facemesh: model file not found")

	// ErrModelLoad is returned when OpenCV cannot load a model.
	ErrModelLoad = errors.New("facemesh: model failed to load")

	// ErrEmptyFrame is returned for an empty input frame.
	ErrEmptyFrame = errors.New("facemesh: empty frame")

	// ErrBadOutput is returned when the landmark model output is too short.
	ErrBadOutput = errors.New("facemesh: unexpected landmark output")
)
