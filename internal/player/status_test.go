package player

import (
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		payload string
		want    Status
	}{
		{payload: "init", want: StatusInit},
		{payload: "ready", want: StatusReady},
		{payload: "playing", want: StatusPlaying},
		{payload: "waiting", want: StatusWaiting},
		{payload: "paused", want: StatusPaused},
		{payload: "ended", want: StatusEnded},
		{payload: "Playing", want: StatusUnknown}, // matching is case-sensitive
		{payload: "playing ", want: StatusUnknown},
		{payload: "", want: StatusUnknown},
		{payload: "stopped", want: StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			if got := ParseStatus(tt.payload); got != tt.want {
				t.Errorf("ParseStatus(%q) = %v, want %v", tt.payload, got, tt.want)
			}
		})
	}
}

func TestStatusString(t *testing.T) {
	for name, status := range statusNames {
		if got := status.String(); got != name {
			t.Errorf("Status(%d).String() = %q, want %q", status, got, name)
		}
	}
	if got := StatusUnknown.String(); got != "unknown" {
		t.Errorf("StatusUnknown.String() = %q, want %q", got, "unknown")
	}
}
