package id

import (
	"strings"
	"testing"
)

func TestPrefixedIDs(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		prefix string
	}{
		{"player", NewPlayerID().String(), "player_"},
		{"request", NewRequestID().String(), "req_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasPrefix(tt.id, tt.prefix) {
				t.Errorf("ID %q missing prefix %q", tt.id, tt.prefix)
			}
			raw := strings.TrimPrefix(tt.id, tt.prefix)
			if !IsValid(raw) {
				t.Errorf("ID %q payload is not a valid ULID", tt.id)
			}
		})
	}
}

func TestUniqueness(t *testing.T) {
	seen := make(map[PlayerID]bool)
	for i := 0; i < 1000; i++ {
		id := NewPlayerID()
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}
