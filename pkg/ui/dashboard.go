package ui

import (
	"gocv.io/x/gocv"
)

// Dashboard renders the overlay onto frames.
type Dashboard struct {
	font gocv.HersheyFont
}

// NewDashboard creates a dashboard using the simplex Hershey font.
func NewDashboard() *Dashboard {
	return &Dashboard{font: gocv.FontHersheySimplex}
}

// Draw paints the overlay for v onto frame in place.
func (d *Dashboard) Draw(frame *gocv.Mat, v View) {
	for _, p := range Layout(v) {
		switch p.Kind {
		case KindFilledRect:
			gocv.Rectangle(frame, p.Rect, p.Color, p.Thickness)
		case KindLine:
			gocv.Line(frame, p.At, p.To, p.Color, p.Thickness)
		case KindText:
			gocv.PutText(frame, p.Text, p.At, d.font, p.Scale, p.Color, p.Thickness)
		}
	}
}
