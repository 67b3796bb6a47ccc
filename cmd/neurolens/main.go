// NeuroLens - webcam and microphone screening for facial masking and
// vocal tremor.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/teslashibe/go-neurolens/internal/config"
	nlog "github.com/teslashibe/go-neurolens/internal/log"
	"github.com/teslashibe/go-neurolens/pkg/audioio"
	"github.com/teslashibe/go-neurolens/pkg/camera"
	"github.com/teslashibe/go-neurolens/pkg/neurolens"
)

func init() {
	// HighGUI must stay on the main thread.
	runtime.LockOSThread()
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("❌ Configuration error: %v", err)
	}

	nlog.Init(cfg.LogLevel)
	logger := nlog.L()

	app, err := neurolens.New(cfg, logger)
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	if err := app.Init(); err != nil {
		log.Fatalf("❌ Initialization failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err = app.Run(ctx)
	app.Shutdown()
	if err != nil {
		log.Fatalf("❌ Runtime error: %v", err)
	}
}

// parseFlags layers defaults, the config file, the environment and flags,
// in that order.
func parseFlags(args []string) (config.Config, error) {
	fs := flag.NewFlagSet("neurolens", flag.ContinueOnError)

	configPath := fs.String("config", "", "YAML config file")
	device := fs.Int("camera", 0, "Camera device index")
	resolution := fs.String("resolution", "", "Camera preset: "+strings.Join(camera.PresetNames(), ", "))
	webEnabled := fs.Bool("web", false, "Serve the status dashboard")
	webPort := fs.String("web-port", config.DefaultWebPort, "Dashboard port")
	logLevel := fs.String("log-level", "info", "Log level: debug, info, warn, error")
	mockAudio := fs.Bool("mock-audio", false, "Record from a silent mock microphone")
	smile := fs.Float64("smile-threshold", 0, "Smile ratio above which the visual test passes")
	shakiness := fs.Float64("shakiness-threshold", 0, "Shakiness score below which the audio test passes")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return cfg, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "camera":
			cfg.Camera.Device = *device
		case "resolution":
			cfg.Camera.Preset = *resolution
		case "web":
			cfg.Web.Enabled = *webEnabled
		case "web-port":
			cfg.Web.Enabled = true
			cfg.Web.Port = *webPort
		case "log-level":
			cfg.LogLevel = *logLevel
		case "mock-audio":
			if *mockAudio {
				cfg.Audio.Backend = audioio.BackendMock
			}
		case "smile-threshold":
			cfg.Thresholds.Smile = *smile
		case "shakiness-threshold":
			cfg.Thresholds.Shakiness = *shakiness
		}
	})
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
