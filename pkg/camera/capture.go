package camera

import (
	"errors"
	"fmt"
	"log/slog"

	"gocv.io/x/gocv"
)

var (
	// ErrOpenFailed is returned when the video device cannot be opened.
	ErrOpenFailed = errors.New("camera: open failed")

	// ErrReadFailed is returned when the device stops delivering frames.
	ErrReadFailed = errors.New("camera: read failed")
)

// Capture reads BGR frames from a local video device.
type Capture struct {
	cfg    Config
	logger *slog.Logger
	vc     *gocv.VideoCapture
	raw    gocv.Mat
}

// Open opens the configured device and requests its resolution.
func Open(cfg Config, logger *slog.Logger) (*Capture, error) {
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid camera config: %v", problems)
	}
	if logger == nil {
		logger = slog.Default()
	}

	vc, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return nil, fmt.Errorf("%w: device %d: %v", ErrOpenFailed, cfg.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: device %d", ErrOpenFailed, cfg.Device)
	}

	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))
	if cfg.Framerate > 0 {
		vc.Set(gocv.VideoCaptureFPS, float64(cfg.Framerate))
	}

	logger.Info("camera opened",
		"device", cfg.Device,
		"width", int(vc.Get(gocv.VideoCaptureFrameWidth)),
		"height", int(vc.Get(gocv.VideoCaptureFrameHeight)),
		"mirror", cfg.Mirror,
	)

	return &Capture{
		cfg:    cfg,
		logger: logger,
		vc:     vc,
		raw:    gocv.NewMat(),
	}, nil
}

// Read fills dst with the next frame, mirrored if configured.
// It returns ErrReadFailed when the device yields no frame.
func (c *Capture) Read(dst *gocv.Mat) error {
	if ok := c.vc.Read(&c.raw); !ok || c.raw.Empty() {
		return ErrReadFailed
	}
	if c.cfg.Mirror {
		gocv.Flip(c.raw, dst, 1)
	} else {
		c.raw.CopyTo(dst)
	}
	return nil
}

// Config returns the capture configuration.
func (c *Capture) Config() Config {
	return c.cfg
}

// Close releases the device.
func (c *Capture) Close() error {
	c.raw.Close()
	return c.vc.Close()
}
