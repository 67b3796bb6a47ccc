package screening

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifySmile(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		ratio float64
		want  VisualStatus
	}{
		{ratio: 0, want: VisualRisk},
		{ratio: 31.25, want: VisualRisk},
		{ratio: 45, want: VisualRisk},
		{ratio: 45.0000001, want: VisualHealthy},
		{ratio: 50, want: VisualHealthy},
		{ratio: 120, want: VisualHealthy},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, th.ClassifySmile(tc.ratio), "ratio %v", tc.ratio)
	}
}

func TestClassifyShakiness(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		score float64
		want  AudioStatus
	}{
		{score: 0, want: AudioStable},
		{score: 30, want: AudioStable},
		{score: 49.999, want: AudioStable},
		{score: 50, want: AudioUnstable},
		{score: 60, want: AudioUnstable},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, th.ClassifyShakiness(tc.score), "score %v", tc.score)
	}
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.Error(t, Thresholds{Smile: 0, Shakiness: 50}.Validate())
	assert.Error(t, Thresholds{Smile: 45, Shakiness: -1}.Validate())
}

func TestAudioSettings_SampleCount(t *testing.T) {
	assert.Equal(t, 176400, DefaultAudioSettings().SampleCount())
	assert.Equal(t, 800, AudioSettings{Duration: 100 * time.Millisecond, SampleRate: 8000}.SampleCount())
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "PENDING", VisualPending.String())
	assert.Equal(t, "HEALTHY", VisualHealthy.String())
	assert.Equal(t, "RISK DETECTED", VisualRisk.String())
	assert.Equal(t, "PENDING", AudioPending.String())
	assert.Equal(t, "STABLE (Healthy)", AudioStable.String())
	assert.Equal(t, "UNSTABLE (Risk)", AudioUnstable.String())

	assert.Equal(t, OutcomeGood, VisualHealthy.Outcome())
	assert.Equal(t, OutcomeRisk, AudioUnstable.Outcome())
	assert.Equal(t, OutcomePending, AudioPending.Outcome())
}

func TestKeyFromCode(t *testing.T) {
	assert.Equal(t, KeyNone, KeyFromCode(-1))
	assert.Equal(t, KeyQuit, KeyFromCode('q'))
	assert.Equal(t, KeySpace, KeyFromCode(0x100|' '))

	k, ok := ParseKey("space")
	assert.True(t, ok)
	assert.Equal(t, KeySpace, k)

	k, ok = ParseKey("v")
	assert.True(t, ok)
	assert.Equal(t, KeyVisual, k)

	_, ok = ParseKey("enter")
	assert.False(t, ok)
}
