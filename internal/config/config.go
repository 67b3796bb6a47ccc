// Package config loads NeuroLens settings from an optional YAML file and
// environment overrides. Flag parsing is done in cmd/neurolens; this
// package is data only.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/teslashibe/go-neurolens/pkg/audioio"
	"github.com/teslashibe/go-neurolens/pkg/camera"
	"github.com/teslashibe/go-neurolens/pkg/facemesh"
	"github.com/teslashibe/go-neurolens/pkg/screening"
)

// Default configuration values.
const (
	DefaultWindowTitle   = "NeuroLens Prototype"
	DefaultWebPort       = "8080"
	DefaultDetectorModel = "models/face_detection_yunet_2023mar.onnx"
	DefaultLandmarkModel = "models/face_landmark.onnx"
)

// Camera selects and sizes the video device. A non-empty Preset
// (vga, hd720, hd1080) replaces Width and Height.
type Camera struct {
	Device    int    `yaml:"device"`
	Preset    string `yaml:"preset"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Framerate int    `yaml:"framerate"`
	Mirror    bool   `yaml:"mirror"`
}

// FaceMesh points at the two ONNX models used for landmarks.
type FaceMesh struct {
	DetectorModel  string  `yaml:"detector_model"`
	LandmarkModel  string  `yaml:"landmark_model"`
	ScoreThreshold float64 `yaml:"score_threshold"`
}

// Web configures the optional status dashboard.
type Web struct {
	Enabled   bool   `yaml:"enabled"`
	Port      string `yaml:"port"`
	StaticDir string `yaml:"static_dir"`

	// CameraEvery sends every Nth frame to dashboard viewers.
	CameraEvery int `yaml:"camera_every"`
}

// Config is the full application configuration.
type Config struct {
	LogLevel    string                  `yaml:"log_level"`
	WindowTitle string                  `yaml:"window_title"`
	Camera      Camera                  `yaml:"camera"`
	FaceMesh    FaceMesh                `yaml:"face_mesh"`
	Audio       audioio.Config          `yaml:"audio"`
	Recording   screening.AudioSettings `yaml:"recording"`
	Thresholds  screening.Thresholds    `yaml:"thresholds"`
	Web         Web                     `yaml:"web"`
}

// Default returns the configuration the prototype shipped with.
func Default() Config {
	return Config{
		LogLevel:    "info",
		WindowTitle: DefaultWindowTitle,
		Camera: Camera{
			Device:    0,
			Width:     1280,
			Height:    720,
			Framerate: 30,
			Mirror:    true,
		},
		FaceMesh: FaceMesh{
			DetectorModel:  DefaultDetectorModel,
			LandmarkModel:  DefaultLandmarkModel,
			ScoreThreshold: 0.6,
		},
		Audio:      audioio.DefaultConfig(),
		Recording:  screening.DefaultAudioSettings(),
		Thresholds: screening.DefaultThresholds(),
		Web: Web{
			Enabled:     false,
			Port:        DefaultWebPort,
			CameraEvery: 3,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv applies environment overrides. Call this after Load and before
// flags so that flags win.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("NEUROLENS_CAMERA"); v != "" {
		dev, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Field: "NEUROLENS_CAMERA", Message: fmt.Sprintf("not a device index: %q", v)}
		}
		c.Camera.Device = dev
	}
	if v := os.Getenv("NEUROLENS_WEB_PORT"); v != "" {
		c.Web.Enabled = true
		c.Web.Port = v
	}
	if v := os.Getenv("NEUROLENS_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("NEUROLENS_AUDIO_BACKEND"); v != "" {
		b, err := audioio.ParseBackend(v)
		if err != nil {
			return &Error{Field: "NEUROLENS_AUDIO_BACKEND", Message: err.Error()}
		}
		c.Audio.Backend = b
	}
	return nil
}

// Validate checks that the configuration can run.
func (c *Config) Validate() error {
	var errs []error

	if c.Camera.Preset != "" && camera.GetPreset(c.Camera.Preset) == nil {
		errs = append(errs, &Error{Field: "camera", Message: fmt.Sprintf("unknown preset %q (have %v)", c.Camera.Preset, camera.PresetNames())})
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		errs = append(errs, &Error{Field: "camera", Message: fmt.Sprintf("invalid frame size %dx%d", c.Camera.Width, c.Camera.Height)})
	}
	if c.FaceMesh.DetectorModel == "" || c.FaceMesh.LandmarkModel == "" {
		errs = append(errs, &Error{Field: "face_mesh", Message: "detector_model and landmark_model are required"})
	}
	if err := c.Audio.Validate(); err != nil {
		errs = append(errs, &Error{Field: "audio", Message: err.Error()})
	}
	if c.Recording.Duration <= 0 || c.Recording.SampleRate <= 0 {
		errs = append(errs, &Error{Field: "recording", Message: "duration and sample_rate must be positive"})
	}
	if err := c.Thresholds.Validate(); err != nil {
		errs = append(errs, &Error{Field: "thresholds", Message: err.Error()})
	}
	if c.Web.Enabled && c.Web.Port == "" {
		errs = append(errs, &Error{Field: "web", Message: "port is required when the dashboard is enabled"})
	}

	return errors.Join(errs...)
}

// Error is a configuration validation error.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Message)
}

// CameraConfig resolves the camera section into a capture configuration.
func (c *Config) CameraConfig() camera.Config {
	cc := camera.DefaultConfig()
	if p := camera.GetPreset(c.Camera.Preset); p != nil {
		cc = *p
	} else {
		cc.Width = c.Camera.Width
		cc.Height = c.Camera.Height
	}
	cc.Device = c.Camera.Device
	cc.Framerate = c.Camera.Framerate
	cc.Mirror = c.Camera.Mirror
	return cc
}

// FaceMeshConfig resolves the face mesh section.
func (c *Config) FaceMeshConfig() facemesh.Config {
	fc := facemesh.DefaultConfig()
	fc.DetectorModel = c.FaceMesh.DetectorModel
	fc.LandmarkModel = c.FaceMesh.LandmarkModel
	if c.FaceMesh.ScoreThreshold > 0 {
		fc.ScoreThreshold = c.FaceMesh.ScoreThreshold
	}
	return fc
}
