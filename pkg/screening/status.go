// Package screening implements the NeuroLens screening session: the
// MENU/VISUAL/AUDIO mode machine and the two scalar heuristics it records,
// the smile ratio and the vocal shakiness score.
//
// Nothing in this package touches a device. Landmarks arrive already
// detected and audio arrives through the Recorder interface, so the whole
// state machine can be driven from tests.
package screening

// Mode is the screen the session is currently on.
type Mode int

const (
	ModeMenu Mode = iota
	ModeVisual
	ModeAudio
)

func (m Mode) String() string {
	switch m {
	case ModeMenu:
		return "MENU"
	case ModeVisual:
		return "VISUAL"
	case ModeAudio:
		return "AUDIO"
	default:
		return "UNKNOWN"
	}
}

// MarshalText lets modes appear by name in JSON and logs.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// VisualStatus is the outcome of the most recent smile capture.
type VisualStatus int

const (
	VisualPending VisualStatus = iota
	VisualHealthy
	VisualRisk
)

func (s VisualStatus) String() string {
	switch s {
	case VisualHealthy:
		return "HEALTHY"
	case VisualRisk:
		return "RISK DETECTED"
	default:
		return "PENDING"
	}
}

func (s VisualStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// AudioStatus is the outcome of the most recent voice recording.
type AudioStatus int

const (
	AudioPending AudioStatus = iota
	AudioStable
	AudioUnstable
)

func (s AudioStatus) String() string {
	switch s {
	case AudioStable:
		return "STABLE (Healthy)"
	case AudioUnstable:
		return "UNSTABLE (Risk)"
	default:
		return "PENDING"
	}
}

func (s AudioStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome classifies a status for display: pending, good or at risk.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeGood
	OutcomeRisk
)

// Outcome maps the visual status onto the shared display scale.
func (s VisualStatus) Outcome() Outcome {
	switch s {
	case VisualHealthy:
		return OutcomeGood
	case VisualRisk:
		return OutcomeRisk
	default:
		return OutcomePending
	}
}

// Outcome maps the audio status onto the shared display scale.
func (s AudioStatus) Outcome() Outcome {
	switch s {
	case AudioStable:
		return OutcomeGood
	case AudioUnstable:
		return OutcomeRisk
	default:
		return OutcomePending
	}
}
