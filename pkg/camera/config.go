// Package camera wraps the local webcam: device selection, resolution and
// the mirrored selfie view the screening UI expects.
package camera

import "fmt"

// Config holds the capture parameters.
type Config struct {
	Device    int  `json:"device"`    // Video device index
	Width     int  `json:"width"`     // Requested frame width in pixels
	Height    int  `json:"height"`    // Requested frame height in pixels
	Framerate int  `json:"framerate"` // Requested FPS, 0 leaves the driver default
	Mirror    bool `json:"mirror"`    // Flip horizontally before processing
}

// DefaultConfig returns the 720p mirrored configuration.
func DefaultConfig() Config {
	return Config{
		Device:    0,
		Width:     1280,
		Height:    720,
		Framerate: 30,
		Mirror:    true,
	}
}

// Validate checks the configuration and returns a list of problems.
func (c *Config) Validate() []string {
	var errors []string

	if c.Device < 0 {
		errors = append(errors, fmt.Sprintf("device must be >= 0, got %d", c.Device))
	}
	if c.Width < 160 || c.Width > 3840 {
		errors = append(errors, fmt.Sprintf("width must be 160-3840, got %d", c.Width))
	}
	if c.Height < 120 || c.Height > 2160 {
		errors = append(errors, fmt.Sprintf("height must be 120-2160, got %d", c.Height))
	}
	if c.Framerate < 0 || c.Framerate > 120 {
		errors = append(errors, fmt.Sprintf("framerate must be 0-120, got %d", c.Framerate))
	}

	return errors
}
