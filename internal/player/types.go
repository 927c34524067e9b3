package player

import (
	"time"
)

// TimeUpdate is one periodic playback progress report. Immutable, one
// instance per inbound message on the TimeUpdate channel.
type TimeUpdate struct {
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
	// Extra carries any additional numeric playback fields present in the
	// payload (bufferedTime, playbackRate and the like).
	Extra map[string]float64 `json:"-"`
}

// FullscreenFallback selects how fullscreen requests behave when the
// surface cannot enter native fullscreen.
type FullscreenFallback string

const (
	FullscreenNative FullscreenFallback = "native"
	FullscreenRotate FullscreenFallback = "rotate"
)

// Parameters configures one player instance. Immutable after the
// controller is constructed.
type Parameters struct {
	VideoID    string
	ExternalID string
	// BaseURL overrides the canonical embed origin. Empty means the
	// configured default.
	BaseURL  string
	SeekTo   time.Duration
	Fallback FullscreenFallback
	// Flags are behavior/UI options forwarded verbatim into the remote
	// peer's construction call.
	Flags map[string]any
}

// EventKind tags one entry on the player event stream.
type EventKind int

const (
	EventPip EventKind = iota
	EventFullscreen
	EventRateChange
	EventLog
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventPip:
		return "pip"
	case EventFullscreen:
		return "fullscreen"
	case EventRateChange:
		return "rate_change"
	case EventLog:
		return "log"
	default:
		return "unknown"
	}
}

// Event is one tagged entry on the player event stream: picture-in-picture
// and fullscreen toggles, playback rate changes, and diagnostic log lines
// from the remote peer.
type Event struct {
	Kind EventKind

	// Active is set for EventPip and EventFullscreen.
	Active bool
	// Rate is set for EventRateChange.
	Rate float64
	// Message is set for EventLog.
	Message string
}
