package screening

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Recorder acquires a fixed-length mono recording. Record blocks until
// duration x sampleRate samples have been captured or ctx is done, and must
// release the device before returning.
type Recorder interface {
	Record(ctx context.Context, duration time.Duration, sampleRate int) ([]float32, error)
}

// Frame is what the controller needs to know about the current video frame.
type Frame struct {
	// Faces holds one landmark set per detected face, primary face first.
	Faces []Landmarks

	Width, Height int
}

// Config configures a Controller.
type Config struct {
	Thresholds Thresholds
	Audio      AudioSettings
	Recorder   Recorder
	Logger     *slog.Logger

	// OnChange receives a copy of the session after every change.
	OnChange func(Session)

	// OnMeasurement receives every completed or failed capture.
	OnMeasurement func(Measurement)

	// Now defaults to time.Now.
	Now func() time.Time
}

// Controller is the MENU/VISUAL/AUDIO state machine. It owns the session
// and is driven from a single polling goroutine; only the recording task
// runs elsewhere, and it reports back through a channel drained by Poll.
type Controller struct {
	cfg     Config
	logger  *slog.Logger
	session Session
	task    *recordingTask
}

type recordingTask struct {
	id     uuid.UUID
	cancel context.CancelFunc
	done   chan recordingResult
}

type recordingResult struct {
	score   float64
	samples int
	err     error
}

// NewController creates a controller with a fresh session.
func NewController(cfg Config) *Controller {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Thresholds == (Thresholds{}) {
		cfg.Thresholds = DefaultThresholds()
	}
	if cfg.Audio == (AudioSettings{}) {
		cfg.Audio = DefaultAudioSettings()
	}

	c := &Controller{
		cfg:     cfg,
		logger:  cfg.Logger,
		session: NewSession(cfg.Now()),
	}
	c.logger.Info("screening session started", "session", c.session.ID)
	return c
}

// Session returns a copy of the current session.
func (c *Controller) Session() Session {
	return c.session
}

// Mode returns the current mode.
func (c *Controller) Mode() Mode {
	return c.session.Mode
}

// Listening reports whether a recording is in progress.
func (c *Controller) Listening() bool {
	return c.task != nil
}

// Thresholds returns the cutoffs in use.
func (c *Controller) Thresholds() Thresholds {
	return c.cfg.Thresholds
}

// HandleInput applies one polled key to the state machine.
//
//	any    + v     -> VISUAL
//	any    + a     -> AUDIO
//	any    + q     -> quit (aborts a running recording)
//	VISUAL + SPACE -> classify the primary face, back to MENU
//	AUDIO  + s     -> start recording; Poll applies the result
//
// Every other key is ignored, as is every key but q while listening.
func (c *Controller) HandleInput(ctx context.Context, key Key, frame Frame) Action {
	if key == KeyQuit {
		c.abortRecording()
		return ActionQuit
	}
	if key == KeyNone || c.task != nil {
		return ActionNone
	}

	switch key {
	case KeyVisual:
		c.setMode(ModeVisual)
		return ActionNone
	case KeyAudio:
		c.setMode(ModeAudio)
		return ActionNone
	}

	switch c.session.Mode {
	case ModeVisual:
		if key == KeySpace {
			c.captureSmile(frame)
		}
	case ModeAudio:
		if key == KeyRecord {
			c.startRecording(ctx)
		}
	}
	return ActionNone
}

func (c *Controller) captureSmile(frame Frame) {
	if len(frame.Faces) == 0 {
		c.logger.Debug("smile capture ignored: no face detected")
		return
	}

	res, err := SmileRatio(frame.Faces[0], frame.Width, frame.Height)
	if err != nil {
		c.logger.Warn("smile capture ignored", "error", err)
		return
	}

	status := c.cfg.Thresholds.ClassifySmile(res.Ratio)
	c.session.Visual = status
	c.session.LastRatio = res.Ratio
	c.logger.Info("smile captured",
		"ratio", res.Ratio,
		"threshold", c.cfg.Thresholds.Smile,
		"status", status,
	)
	c.emitMeasurement(Measurement{
		ID:     uuid.New(),
		Kind:   KindSmile,
		Value:  res.Ratio,
		Status: status.String(),
		At:     c.cfg.Now(),
	})
	c.setMode(ModeMenu)
}

func (c *Controller) startRecording(ctx context.Context) {
	if c.cfg.Recorder == nil {
		c.failRecording(uuid.New(), ErrNoRecorder)
		return
	}

	taskCtx, cancel := context.WithCancel(ctx)
	task := &recordingTask{
		id:     uuid.New(),
		cancel: cancel,
		done:   make(chan recordingResult, 1),
	}
	c.task = task

	rec := c.cfg.Recorder
	settings := c.cfg.Audio
	go func() {
		samples, err := rec.Record(taskCtx, settings.Duration, settings.SampleRate)
		if err != nil {
			task.done <- recordingResult{err: err}
			return
		}
		score, err := ShakinessScore(samples)
		task.done <- recordingResult{score: score, samples: len(samples), err: err}
	}()

	c.logger.Info("recording started",
		"duration", settings.Duration,
		"sample_rate", settings.SampleRate,
	)
	c.session.Listening = true
	c.touch()
}

// Poll applies a finished recording, if any. It never blocks and returns
// true when the session changed.
func (c *Controller) Poll() bool {
	if c.task == nil {
		return false
	}
	select {
	case res := <-c.task.done:
		c.finishRecording(res)
		return true
	default:
		return false
	}
}

// Wait blocks until the pending recording, if any, has been applied.
func (c *Controller) Wait(ctx context.Context) error {
	if c.task == nil {
		return nil
	}
	select {
	case res := <-c.task.done:
		c.finishRecording(res)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) finishRecording(res recordingResult) {
	task := c.task
	task.cancel()
	c.task = nil
	c.session.Listening = false

	if res.err != nil {
		c.failRecording(task.id, res.err)
		return
	}

	status := c.cfg.Thresholds.ClassifyShakiness(res.score)
	c.session.Audio = status
	c.session.LastScore = res.score
	c.logger.Info("recording analysed",
		"score", res.score,
		"samples", res.samples,
		"threshold", c.cfg.Thresholds.Shakiness,
		"status", status,
	)
	c.emitMeasurement(Measurement{
		ID:     task.id,
		Kind:   KindShakiness,
		Value:  res.score,
		Status: status.String(),
		At:     c.cfg.Now(),
	})
	c.setMode(ModeMenu)
}

// failRecording leaves the audio status untouched and returns to the menu.
func (c *Controller) failRecording(id uuid.UUID, err error) {
	c.logger.Warn("recording failed", "error", err)
	c.emitMeasurement(Measurement{
		ID:    id,
		Kind:  KindShakiness,
		Error: err.Error(),
		At:    c.cfg.Now(),
	})
	c.setMode(ModeMenu)
}

// abortRecording cancels a running recording and waits for the recorder to
// release the device. No status is written.
func (c *Controller) abortRecording() {
	if c.task == nil {
		return
	}
	task := c.task
	c.task = nil
	task.cancel()
	res := <-task.done
	if res.err != nil && !errors.Is(res.err, context.Canceled) {
		c.logger.Warn("recording aborted with error", "error", res.err)
	} else {
		c.logger.Info("recording aborted")
	}
	c.session.Listening = false
	c.touch()
}

// Close aborts any running recording.
func (c *Controller) Close() {
	c.abortRecording()
}

func (c *Controller) setMode(m Mode) {
	if c.session.Mode != m {
		c.logger.Debug("mode changed", "from", c.session.Mode, "to", m)
	}
	c.session.Mode = m
	c.touch()
}

func (c *Controller) touch() {
	c.session.UpdatedAt = c.cfg.Now()
	if c.cfg.OnChange != nil {
		c.cfg.OnChange(c.session)
	}
}

func (c *Controller) emitMeasurement(m Measurement) {
	if c.cfg.OnMeasurement != nil {
		c.cfg.OnMeasurement(m)
	}
}
