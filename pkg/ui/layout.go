// Package ui draws the screening overlay onto camera frames and shows them
// in a desktop window.
//
// Layout is computed as a list of plain drawing primitives so it can be
// inspected without a display; Dashboard renders them with OpenCV.
package ui

import (
	"fmt"
	"image"
	"image/color"

	"github.com/teslashibe/go-neurolens/pkg/screening"
)

// HeaderHeight is the height of the dark band at the top of every frame.
const HeaderHeight = 140

// chartInset is the distance of the diagnostic chart from the right edge.
const chartInset = 350

var (
	ColorWhite  = color.RGBA{255, 255, 255, 0}
	ColorGreen  = color.RGBA{0, 255, 0, 0}
	ColorRed    = color.RGBA{255, 0, 0, 0}
	ColorYellow = color.RGBA{255, 255, 0, 0}
	ColorGrey   = color.RGBA{200, 200, 200, 0}
	ColorDim    = color.RGBA{100, 100, 100, 0}
	ColorHeader = color.RGBA{20, 20, 20, 0}
	ColorBlack  = color.RGBA{0, 0, 0, 0}
)

// OutcomeColor is green for a good result, red for a risk and grey while
// pending.
func OutcomeColor(o screening.Outcome) color.RGBA {
	switch o {
	case screening.OutcomeGood:
		return ColorGreen
	case screening.OutcomeRisk:
		return ColorRed
	default:
		return ColorGrey
	}
}

// PrimitiveKind selects how a Primitive is drawn.
type PrimitiveKind int

const (
	KindText PrimitiveKind = iota
	KindLine
	KindFilledRect
)

// Primitive is one drawing operation in frame pixels.
type Primitive struct {
	Kind      PrimitiveKind
	Text      string
	At        image.Point // text origin or line start
	To        image.Point // line end
	Rect      image.Rectangle
	Scale     float64
	Color     color.RGBA
	Thickness int
}

// Feedback is the live smile measurement for the primary face.
type Feedback struct {
	Result    screening.SmileResult
	Threshold float64
}

// View is everything one frame of the overlay depends on.
type View struct {
	Session screening.Session
	Width   int
	Height  int

	// Smile is nil when no face is visible or the mode is not VISUAL.
	Smile *Feedback
}

func text(s string, x, y int, scale float64, c color.RGBA, thickness int) Primitive {
	return Primitive{Kind: KindText, Text: s, At: image.Pt(x, y), Scale: scale, Color: c, Thickness: thickness}
}

// Layout returns the overlay for v in drawing order.
func Layout(v View) []Primitive {
	w, h := v.Width, v.Height
	out := []Primitive{{
		Kind:      KindFilledRect,
		Rect:      image.Rect(0, 0, w, HeaderHeight),
		Color:     ColorHeader,
		Thickness: -1,
	}}

	switch v.Session.Mode {
	case screening.ModeMenu:
		out = append(out,
			text("NEUROLENS: MULTIMODAL DIAGNOSIS", 30, 40, 0.8, ColorWhite, 2),
			text("[V] Run Visual Test", 30, 80, 0.6, ColorYellow, 1),
			text("[A] Run Audio Test", 30, 110, 0.6, ColorGreen, 1),
			text("[Q] Quit App", 30, 140, 0.6, ColorDim, 1),
			text("DIAGNOSTIC CHART:", w-chartInset, 40, 0.6, ColorGrey, 1),
			text("Vision: "+v.Session.Visual.String(), w-chartInset, 80, 0.7,
				OutcomeColor(v.Session.Visual.Outcome()), 2),
			text("Audio:  "+v.Session.Audio.String(), w-chartInset, 110, 0.7,
				OutcomeColor(v.Session.Audio.Outcome()), 2),
		)

	case screening.ModeVisual:
		out = append(out,
			text("TEST 1: FACIAL MASKING", 30, 50, 1, ColorYellow, 2),
			text("Instruction: Smile and press 'SPACE'", 30, 90, 0.6, ColorGrey, 1),
		)
		if f := v.Smile; f != nil {
			c := ColorRed
			if f.Result.Ratio > f.Threshold {
				c = ColorGreen
			}
			p1, p2 := f.Result.Left, f.Result.Right
			out = append(out,
				Primitive{Kind: KindLine, At: p1, To: p2, Color: c, Thickness: 3},
				text(fmt.Sprintf("Ratio: %d", int(f.Result.Ratio)), p1.X, p1.Y+30, 1, c, 2),
			)
		}

	case screening.ModeAudio:
		out = append(out,
			text("TEST 2: VOCAL TREMOR", 30, 50, 1, ColorGreen, 2),
			text("Instruction: Press 'S' and say 'Ahhhhh'", 30, 90, 0.6, ColorGrey, 1),
		)
	}

	if v.Session.Listening {
		out = append(out,
			Primitive{Kind: KindFilledRect, Rect: image.Rect(0, 0, w, h), Color: ColorBlack, Thickness: -1},
			text("LISTENING...", w/2-100, h/2, 1.5, ColorRed, 2),
		)
	}

	return out
}
