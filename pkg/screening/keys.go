package screening

import "strings"

// Key is a single polled key code. KeyNone means nothing was pressed.
type Key int

const (
	KeyNone   Key = -1
	KeySpace  Key = ' '
	KeyVisual Key = 'v'
	KeyAudio  Key = 'a'
	KeyRecord Key = 's'
	KeyQuit   Key = 'q'
)

// KeyFromCode converts a raw window key code (as returned by a HighGUI
// style WaitKey) into a Key, keeping only the low byte.
func KeyFromCode(code int) Key {
	if code < 0 {
		return KeyNone
	}
	return Key(code & 0xFF)
}

// ParseKey accepts a key name from a remote trigger: a single character or
// "space".
func ParseKey(name string) (Key, bool) {
	if strings.EqualFold(name, "space") {
		return KeySpace, true
	}
	if len(name) != 1 {
		return KeyNone, false
	}
	return Key(name[0]), true
}

func (k Key) String() string {
	switch k {
	case KeyNone:
		return "none"
	case KeySpace:
		return "space"
	default:
		return string(rune(k))
	}
}

// Action tells the caller what to do after a key has been handled.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
)
