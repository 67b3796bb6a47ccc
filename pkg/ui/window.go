package ui

import (
	"gocv.io/x/gocv"

	"github.com/teslashibe/go-neurolens/pkg/screening"
)

// DefaultTitle is the window title used when none is configured.
const DefaultTitle = "NeuroLens Prototype"

// Window is a HighGUI window that also polls the keyboard.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	if title == "" {
		title = DefaultTitle
	}
	return &Window{win: gocv.NewWindow(title)}
}

// Show displays frame and polls the keyboard for up to delayMs
// milliseconds, which also lets the window process its events.
func (w *Window) Show(frame gocv.Mat, delayMs int) screening.Key {
	w.win.IMShow(frame)
	return screening.KeyFromCode(w.win.WaitKey(delayMs))
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}
