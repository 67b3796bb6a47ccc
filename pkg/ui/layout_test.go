package ui

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-neurolens/pkg/screening"
)

func texts(prims []Primitive) map[string]Primitive {
	out := make(map[string]Primitive)
	for _, p := range prims {
		if p.Kind == KindText {
			out[p.Text] = p
		}
	}
	return out
}

func session(mode screening.Mode) screening.Session {
	s := screening.NewSession(time.Unix(0, 0))
	s.Mode = mode
	return s
}

func TestOutcomeColor(t *testing.T) {
	assert.Equal(t, ColorGreen, OutcomeColor(screening.OutcomeGood))
	assert.Equal(t, ColorRed, OutcomeColor(screening.OutcomeRisk))
	assert.Equal(t, ColorGrey, OutcomeColor(screening.OutcomePending))
}

func TestLayout_HeaderAlwaysFirst(t *testing.T) {
	for _, mode := range []screening.Mode{screening.ModeMenu, screening.ModeVisual, screening.ModeAudio} {
		prims := Layout(View{Session: session(mode), Width: 1280, Height: 720})
		require.NotEmpty(t, prims)
		assert.Equal(t, KindFilledRect, prims[0].Kind)
		assert.Equal(t, image.Rect(0, 0, 1280, HeaderHeight), prims[0].Rect)
	}
}

func TestLayout_Menu(t *testing.T) {
	s := session(screening.ModeMenu)
	s.Visual = screening.VisualHealthy
	s.Audio = screening.AudioUnstable

	got := texts(Layout(View{Session: s, Width: 1280, Height: 720}))

	assert.Contains(t, got, "NEUROLENS: MULTIMODAL DIAGNOSIS")
	assert.Contains(t, got, "[V] Run Visual Test")
	assert.Contains(t, got, "[A] Run Audio Test")
	assert.Contains(t, got, "[Q] Quit App")

	chart := got["DIAGNOSTIC CHART:"]
	assert.Equal(t, image.Pt(930, 40), chart.At)

	vision, ok := got["Vision: HEALTHY"]
	require.True(t, ok)
	assert.Equal(t, ColorGreen, vision.Color)

	audio, ok := got["Audio:  UNSTABLE (Risk)"]
	require.True(t, ok)
	assert.Equal(t, ColorRed, audio.Color)
}

func TestLayout_MenuPending(t *testing.T) {
	got := texts(Layout(View{Session: session(screening.ModeMenu), Width: 640, Height: 480}))

	assert.Equal(t, ColorGrey, got["Vision: PENDING"].Color)
	assert.Equal(t, ColorGrey, got["Audio:  PENDING"].Color)
}

func TestLayout_VisualFeedback(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  string
		color color.RGBA
	}{
		{name: "above threshold", ratio: 50.7, want: "Ratio: 50", color: ColorGreen},
		{name: "at threshold", ratio: 45, want: "Ratio: 45", color: ColorRed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := View{
				Session: session(screening.ModeVisual),
				Width:   640,
				Height:  480,
				Smile: &Feedback{
					Result: screening.SmileResult{
						Ratio: tc.ratio,
						Left:  image.Pt(200, 240),
						Right: image.Pt(280, 240),
					},
					Threshold: 45,
				},
			}
			prims := Layout(v)
			got := texts(prims)

			assert.Contains(t, got, "TEST 1: FACIAL MASKING")
			assert.Contains(t, got, "Instruction: Smile and press 'SPACE'")

			ratio, ok := got[tc.want]
			require.True(t, ok)
			assert.Equal(t, image.Pt(200, 270), ratio.At)
			assert.Equal(t, tc.color, ratio.Color)

			var line *Primitive
			for i := range prims {
				if prims[i].Kind == KindLine {
					line = &prims[i]
				}
			}
			require.NotNil(t, line)
			assert.Equal(t, image.Pt(280, 240), line.To)
		})
	}
}

func TestLayout_VisualWithoutFace(t *testing.T) {
	prims := Layout(View{Session: session(screening.ModeVisual), Width: 640, Height: 480})
	for _, p := range prims {
		assert.NotEqual(t, KindLine, p.Kind)
	}
}

func TestLayout_Listening(t *testing.T) {
	s := session(screening.ModeAudio)
	s.Listening = true

	prims := Layout(View{Session: s, Width: 640, Height: 480})
	got := texts(prims)

	assert.Contains(t, got, "TEST 2: VOCAL TREMOR")
	listening, ok := got["LISTENING..."]
	require.True(t, ok)
	assert.Equal(t, image.Pt(220, 240), listening.At)
	assert.Equal(t, ColorRed, listening.Color)

	overlay := prims[len(prims)-2]
	assert.Equal(t, KindFilledRect, overlay.Kind)
	assert.Equal(t, image.Rect(0, 0, 640, 480), overlay.Rect)
}
