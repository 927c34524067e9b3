package player

// Status is the playback lifecycle state reported by the embedded player.
type Status int

const (
	StatusUnknown Status = iota
	StatusInit
	StatusReady
	StatusPlaying
	StatusWaiting
	StatusPaused
	StatusEnded
)

// statusNames are the literal wire strings emitted on the Events channel.
// Matching is case-sensitive and exact.
var statusNames = map[string]Status{
	"init":    StatusInit,
	"ready":   StatusReady,
	"playing": StatusPlaying,
	"waiting": StatusWaiting,
	"paused":  StatusPaused,
	"ended":   StatusEnded,
}

// ParseStatus maps an inbound status name to a Status. Unrecognized names
// map to StatusUnknown rather than failing.
func ParseStatus(name string) Status {
	if s, ok := statusNames[name]; ok {
		return s
	}
	return StatusUnknown
}

// String returns the wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusInit:
		return "init"
	case StatusReady:
		return "ready"
	case StatusPlaying:
		return "playing"
	case StatusWaiting:
		return "waiting"
	case StatusPaused:
		return "paused"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}
