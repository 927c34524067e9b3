package bridge

import (
	"testing"
)

func TestRenderCall(t *testing.T) {
	tests := []struct {
		name string
		call string
		args []any
		want string
	}{
		{
			name: "no arguments",
			call: "play",
			want: "play();",
		},
		{
			name: "integer seconds stay integral",
			call: "seekTo",
			args: []any{42},
			want: "seekTo(42);",
		},
		{
			name: "float volume",
			call: "setVolume",
			args: []any{0.5},
			want: "setVolume(0.5);",
		},
		{
			name: "whole float has no trailing zeros",
			call: "setVolume",
			args: []any{1.0},
			want: "setVolume(1);",
		},
		{
			name: "boolean",
			call: "setFullscreen",
			args: []any{true},
			want: "setFullscreen(true);",
		},
		{
			name: "plain string is quoted",
			call: "loadVideo",
			args: []any{"abc123"},
			want: `loadVideo("abc123");`,
		},
		{
			name: "string with quotes is escaped",
			call: "loadVideo",
			args: []any{`ab"); steal("`},
			want: `loadVideo("ab\"); steal(\"");`,
		},
		{
			name: "multiple arguments",
			call: "configure",
			args: []any{"id", 3, false},
			want: `configure("id", 3, false);`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderCall(tt.call, tt.args...); got != tt.want {
				t.Errorf("renderCall() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderCallObjectArgument(t *testing.T) {
	got := renderCall("setupPlayer", map[string]any{"videoId": "v1"})
	want := `setupPlayer({"videoId":"v1"});`
	if got != want {
		t.Errorf("renderCall() = %q, want %q", got, want)
	}
}
