package audioio

import "errors"

var (
	// ErrDeviceUnavailable is returned when no input device can be opened.
	ErrDeviceUnavailable = errors.New("audioio: input device unavailable")

	// ErrShortRecording is returned when a source stops before delivering
	// the requested number of samples.
	ErrShortRecording = errors.New("audioio: recording ended early")

	// ErrUnsupportedBackend is returned for unknown backend names.
	ErrUnsupportedBackend = errors.New("audioio: unsupported backend")
)
