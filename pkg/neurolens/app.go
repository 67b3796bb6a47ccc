// Package neurolens wires the camera, face mesh, microphone and overlay
// into the interactive screening loop.
package neurolens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-neurolens/internal/config"
	"github.com/teslashibe/go-neurolens/pkg/audioio"
	"github.com/teslashibe/go-neurolens/pkg/camera"
	"github.com/teslashibe/go-neurolens/pkg/facemesh"
	"github.com/teslashibe/go-neurolens/pkg/screening"
	"github.com/teslashibe/go-neurolens/pkg/ui"
	"github.com/teslashibe/go-neurolens/pkg/web"
)

// ErrKeyQueueFull is returned when remote key presses arrive faster than
// the loop consumes them.
var ErrKeyQueueFull = errors.New("neurolens: key queue full")

// keyPollMs is how long each frame waits for a key press.
const keyPollMs = 1

// FrameSource delivers BGR frames. *camera.Capture implements it.
type FrameSource interface {
	Read(dst *gocv.Mat) error
	Close() error
}

// Display shows a frame and returns the key pressed meanwhile.
// *ui.Window implements it.
type Display interface {
	Show(frame gocv.Mat, delayMs int) screening.Key
	Close() error
}

// App is the NeuroLens application orchestrator.
// It manages all components and their lifecycle.
type App struct {
	cfg    config.Config
	logger *slog.Logger

	camera    FrameSource
	mesh      facemesh.Detector
	display   Display
	recorder  screening.Recorder
	dashboard *ui.Dashboard

	controller *screening.Controller
	webServer  *web.Server
	remoteKeys chan screening.Key

	frames       int
	faceDetected bool
}

// Option overrides a component, mainly for tests.
type Option func(*App)

// WithFrameSource replaces the camera.
func WithFrameSource(src FrameSource) Option {
	return func(a *App) { a.camera = src }
}

// WithDetector replaces the face mesh.
func WithDetector(d facemesh.Detector) Option {
	return func(a *App) { a.mesh = d }
}

// WithDisplay replaces the window.
func WithDisplay(d Display) Option {
	return func(a *App) { a.display = d }
}

// WithRecorder replaces the microphone recorder.
func WithRecorder(r screening.Recorder) Option {
	return func(a *App) { a.recorder = r }
}

// New creates the application. Components not supplied as options are
// created by Init.
func New(cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	a := &App{
		cfg:        cfg,
		logger:     logger,
		dashboard:  ui.NewDashboard(),
		remoteKeys: make(chan screening.Key, 16),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Init opens the camera, loads the models and creates the window.
// Call this after New() and before Run().
func (a *App) Init() error {
	if a.mesh == nil {
		mesh, err := facemesh.New(a.cfg.FaceMeshConfig(), a.logger.With("component", "facemesh"))
		if err != nil {
			return fmt.Errorf("face mesh: %w", err)
		}
		a.mesh = mesh
	}

	if a.camera == nil {
		capture, err := camera.Open(a.cfg.CameraConfig(), a.logger.With("component", "camera"))
		if err != nil {
			return fmt.Errorf("camera: %w", err)
		}
		a.camera = capture
	}

	if a.recorder == nil {
		a.recorder = audioio.NewRecorder(a.cfg.Audio, a.logger.With("component", "audio"))
	}

	if a.display == nil {
		a.display = ui.NewWindow(a.cfg.WindowTitle)
	}

	if a.cfg.Web.Enabled {
		a.webServer = web.NewServer(web.Config{
			Port:      a.cfg.Web.Port,
			StaticDir: a.cfg.Web.StaticDir,
			Logger:    a.logger.With("component", "web"),
		})
		a.webServer.OnKey = a.PressKey
	}

	a.controller = screening.NewController(screening.Config{
		Thresholds:    a.cfg.Thresholds,
		Audio:         a.cfg.Recording,
		Recorder:      a.recorder,
		Logger:        a.logger.With("component", "screening"),
		OnChange:      a.publishSession,
		OnMeasurement: a.publishMeasurement,
	})

	a.logger.Info("neurolens ready",
		"audio_backend", a.cfg.Audio.Backend,
		"smile_threshold", a.cfg.Thresholds.Smile,
		"shakiness_threshold", a.cfg.Thresholds.Shakiness,
		"dashboard", a.cfg.Web.Enabled,
	)
	return nil
}

// Run drives the frame loop until q is pressed or ctx is cancelled.
// It returns camera.ErrReadFailed when the camera stops delivering frames.
func (a *App) Run(ctx context.Context) error {
	if a.webServer != nil {
		a.webServer.StartAsync()
		a.publishSession(a.controller.Session())
		a.webServer.AddLog("info", "NeuroLens started")
	}

	frame := gocv.NewMat()
	defer frame.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if err := a.camera.Read(&frame); err != nil {
			return err
		}

		a.controller.Poll()
		input, view := a.analyse(frame)
		a.dashboard.Draw(&frame, view)

		key := a.display.Show(frame, keyPollMs)
		if key == screening.KeyNone {
			select {
			case key = <-a.remoteKeys:
			default:
			}
		}

		a.publishFrame(frame)

		if a.controller.HandleInput(ctx, key, input) == screening.ActionQuit {
			a.logger.Info("quit requested")
			return nil
		}
	}
}

// analyse runs the face mesh while the visual test is on screen and builds
// both the controller input and the overlay view for this frame.
func (a *App) analyse(frame gocv.Mat) (screening.Frame, ui.View) {
	session := a.controller.Session()
	input := screening.Frame{Width: frame.Cols(), Height: frame.Rows()}
	view := ui.View{Session: session, Width: input.Width, Height: input.Height}

	if session.Mode != screening.ModeVisual || session.Listening {
		a.setFaceDetected(false)
		return input, view
	}

	faces, err := a.mesh.Detect(frame)
	if err != nil {
		a.logger.Warn("face mesh failed", "error", err)
	}
	input.Faces = faces
	a.setFaceDetected(len(faces) > 0)

	if len(faces) > 0 {
		if res, err := screening.SmileRatio(faces[0], input.Width, input.Height); err == nil {
			view.Smile = &ui.Feedback{Result: res, Threshold: a.controller.Thresholds().Smile}
		}
	}
	return input, view
}

// PressKey queues a key as if it had been typed in the window.
func (a *App) PressKey(k screening.Key) error {
	select {
	case a.remoteKeys <- k:
		return nil
	default:
		return ErrKeyQueueFull
	}
}

// Session returns the current session. Only safe from the Run goroutine
// or after Run has returned.
func (a *App) Session() screening.Session {
	return a.controller.Session()
}

func (a *App) setFaceDetected(found bool) {
	if found == a.faceDetected {
		return
	}
	a.faceDetected = found
	if a.webServer != nil {
		a.webServer.UpdateState(func(s *web.State) { s.FaceDetected = found })
	}
}

func (a *App) publishSession(s screening.Session) {
	if a.webServer == nil {
		return
	}
	a.webServer.UpdateState(func(st *web.State) {
		st.Session = s
		st.Thresholds = a.cfg.Thresholds
		st.AudioBackend = string(a.cfg.Audio.Backend)
	})
}

func (a *App) publishMeasurement(m screening.Measurement) {
	if a.webServer == nil {
		return
	}
	a.webServer.AddMeasurement(m)

	switch {
	case m.Error != "":
		a.webServer.AddLog("error", fmt.Sprintf("%s capture failed: %s", m.Kind, m.Error))
	case m.Kind == screening.KindSmile:
		a.webServer.AddLog("visual", fmt.Sprintf("Smile ratio %.1f: %s", m.Value, m.Status))
	default:
		a.webServer.AddLog("audio", fmt.Sprintf("Shakiness %.1f: %s", m.Value, m.Status))
	}
}

// publishFrame sends every Nth frame to dashboard camera viewers.
func (a *App) publishFrame(frame gocv.Mat) {
	a.frames++
	if a.webServer == nil || a.webServer.CameraClients() == 0 {
		return
	}
	if every := a.cfg.Web.CameraEvery; every > 1 && a.frames%every != 0 {
		return
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		a.logger.Debug("frame encode failed", "error", err)
		return
	}
	defer buf.Close()

	data := append([]byte(nil), buf.GetBytes()...)
	a.webServer.SendCameraFrame(data)
}

// Shutdown aborts any recording and releases every component.
func (a *App) Shutdown() {
	if a.controller != nil {
		a.controller.Close()
	}
	if a.webServer != nil {
		if err := a.webServer.Shutdown(); err != nil {
			a.logger.Warn("web shutdown", "error", err)
		}
	}
	if a.display != nil {
		a.display.Close()
	}
	if a.camera != nil {
		a.camera.Close()
	}
	if a.mesh != nil {
		a.mesh.Close()
	}
	a.logger.Info("goodbye")
}
