//go:build !cgo

package audioio

import (
	"fmt"
	"log/slog"
)

const portAudioCompiled = false

func newPortAudioSource(cfg Config, logger *slog.Logger) (Source, error) {
	return nil, fmt.Errorf("%w: PortAudio requires cgo", ErrDeviceUnavailable)
}
