package bridge

// Inbound channel names. These are part of the wire contract: the peer
// script emits on globals with exactly these names, case-sensitively.
const (
	ChannelEvents       = "Events"
	ChannelLog          = "KinescopeLog"
	ChannelCurrentTime  = "CurrentTime"
	ChannelDuration     = "Duration"
	ChannelPlaybackRate = "PlayBackRate"
	ChannelCheckPaused  = "CheckPaused"
	ChannelPipChange    = "PipChange"
	ChannelRateChange   = "PlaybackRateChange"
	ChannelFullscreen   = "FullScreen"
	ChannelTimeUpdate   = "TimeUpdate"
)

// ChannelNames returns every inbound channel the surface must bind.
func ChannelNames() []string {
	return []string{
		ChannelEvents,
		ChannelLog,
		ChannelCurrentTime,
		ChannelDuration,
		ChannelPlaybackRate,
		ChannelCheckPaused,
		ChannelPipChange,
		ChannelRateChange,
		ChannelFullscreen,
		ChannelTimeUpdate,
	}
}
