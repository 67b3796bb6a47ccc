package audioio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// SourceFactory opens a source for one recording.
type SourceFactory func(cfg Config, logger *slog.Logger) (Source, error)

// Recorder captures fixed-length mono recordings. Each call opens its own
// source and closes it before returning, so the device is only held while
// a recording is running.
type Recorder struct {
	cfg       Config
	logger    *slog.Logger
	newSource SourceFactory
}

// NewRecorder creates a recorder that opens sources through NewSource.
func NewRecorder(cfg Config, logger *slog.Logger) *Recorder {
	return NewRecorderWithFactory(cfg, logger, NewSource)
}

// NewRecorderWithFactory creates a recorder with a custom source factory.
func NewRecorderWithFactory(cfg Config, logger *slog.Logger, factory SourceFactory) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{cfg: cfg, logger: logger, newSource: factory}
}

// Record blocks until duration x sampleRate mono samples have been captured.
func (r *Recorder) Record(ctx context.Context, duration time.Duration, sampleRate int) ([]float32, error) {
	n := int(duration.Seconds() * float64(sampleRate))
	if n <= 0 {
		return nil, fmt.Errorf("recording of %v at %d Hz has no samples", duration, sampleRate)
	}

	cfg := r.cfg
	cfg.SampleRate = sampleRate
	cfg.Channels = 1

	src, err := r.newSource(cfg, r.logger)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	if err := src.Start(ctx); err != nil {
		return nil, fmt.Errorf("start source: %w", err)
	}

	start := time.Now()
	samples, err := Capture(ctx, src, n)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("recording complete",
		"backend", src.Name(),
		"samples", len(samples),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return samples, nil
}

// Capture reads from a started source until exactly n mono samples have
// been collected. Surplus samples from the last chunk are discarded.
func Capture(ctx context.Context, src Source, n int) ([]float32, error) {
	out := make([]float32, 0, n)
	for len(out) < n {
		chunk, err := src.Read(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: got %d of %d samples", ErrShortRecording, len(out), n)
			}
			return nil, err
		}
		out = append(out, chunk.Mono()...)
	}
	return out[:n], nil
}
