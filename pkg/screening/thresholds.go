package screening

import (
	"fmt"
	"time"
)

// Default screening parameters. The cutoffs are empirical placeholders,
// not calibrated medical thresholds.
const (
	DefaultSmileThreshold     = 45.0
	DefaultShakinessThreshold = 50.0
	DefaultAudioDuration      = 4 * time.Second
	DefaultSampleRate         = 44100
)

// Thresholds holds the two decision cutoffs.
type Thresholds struct {
	// Smile is the ratio a capture must exceed to be HEALTHY.
	Smile float64 `yaml:"smile" json:"smile"`

	// Shakiness is the score a recording must stay below to be STABLE.
	Shakiness float64 `yaml:"shakiness" json:"shakiness"`
}

// DefaultThresholds returns the prototype cutoffs (45 and 50).
func DefaultThresholds() Thresholds {
	return Thresholds{
		Smile:     DefaultSmileThreshold,
		Shakiness: DefaultShakinessThreshold,
	}
}

// Validate checks that both cutoffs are positive.
func (t Thresholds) Validate() error {
	if t.Smile <= 0 {
		return fmt.Errorf("smile threshold must be positive, got %v", t.Smile)
	}
	if t.Shakiness <= 0 {
		return fmt.Errorf("shakiness threshold must be positive, got %v", t.Shakiness)
	}
	return nil
}

// ClassifySmile applies the strict ratio > Smile rule.
func (t Thresholds) ClassifySmile(ratio float64) VisualStatus {
	if ratio > t.Smile {
		return VisualHealthy
	}
	return VisualRisk
}

// ClassifyShakiness applies the score < Shakiness rule.
func (t Thresholds) ClassifyShakiness(score float64) AudioStatus {
	if score < t.Shakiness {
		return AudioStable
	}
	return AudioUnstable
}

// AudioSettings describes the fixed recording window.
type AudioSettings struct {
	Duration   time.Duration `yaml:"duration" json:"duration"`
	SampleRate int           `yaml:"sample_rate" json:"sample_rate"`
}

// DefaultAudioSettings returns 4 seconds at 44.1 kHz.
func DefaultAudioSettings() AudioSettings {
	return AudioSettings{
		Duration:   DefaultAudioDuration,
		SampleRate: DefaultSampleRate,
	}
}

// SampleCount is the number of mono samples one recording yields.
func (a AudioSettings) SampleCount() int {
	return int(a.Duration.Seconds() * float64(a.SampleRate))
}
