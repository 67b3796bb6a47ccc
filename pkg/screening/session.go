package screening

import (
	"time"

	"github.com/google/uuid"
)

// Session is the in-memory record of one screening run. It lives for the
// process lifetime and is never persisted.
type Session struct {
	ID        uuid.UUID    `json:"id"`
	Mode      Mode         `json:"mode"`
	Visual    VisualStatus `json:"visual_status"`
	Audio     AudioStatus  `json:"audio_status"`
	Listening bool         `json:"listening"`

	// LastRatio and LastScore are the values behind the current statuses.
	// They are zero while the matching status is pending.
	LastRatio float64 `json:"last_ratio,omitempty"`
	LastScore float64 `json:"last_score,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession returns a session on the menu with both tests pending.
func NewSession(now time.Time) Session {
	return Session{
		ID:        uuid.New(),
		Mode:      ModeMenu,
		Visual:    VisualPending,
		Audio:     AudioPending,
		UpdatedAt: now,
	}
}

// MeasurementKind names which test produced a measurement.
type MeasurementKind string

const (
	KindSmile     MeasurementKind = "smile"
	KindShakiness MeasurementKind = "shakiness"
)

// Measurement is one completed (or failed) capture.
type Measurement struct {
	ID     uuid.UUID       `json:"id"`
	Kind   MeasurementKind `json:"kind"`
	Value  float64         `json:"value"`
	Status string          `json:"status,omitempty"`
	Error  string          `json:"error,omitempty"`
	At     time.Time       `json:"at"`
}
