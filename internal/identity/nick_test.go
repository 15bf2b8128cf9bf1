package identity

import (
	"errors"
	"testing"
)

func TestBareNick(t *testing.T) {
	tests := []struct {
		origin string
		want   string
	}{
		{"alice!~alice@example.org", "alice"},
		{"bob!bob@10.0.0.1", "bob"},
		{"carol", "carol"},
		{"irc.example.net", "irc.example.net"},
	}

	for _, tt := range tests {
		got, err := BareNick(tt.origin)
		if err != nil {
			t.Errorf("BareNick(%q) failed: %v", tt.origin, err)
			continue
		}
		if got != tt.want {
			t.Errorf("BareNick(%q): expected %q, got %q", tt.origin, tt.want, got)
		}
	}
}

func TestBareNickMalformed(t *testing.T) {
	for _, origin := range []string{"", "!user@host"} {
		if _, err := BareNick(origin); !errors.Is(err, ErrMalformedOrigin) {
			t.Errorf("BareNick(%q): expected ErrMalformedOrigin, got %v", origin, err)
		}
	}
}

func TestStripStatusPrefix(t *testing.T) {
	tests := map[string]string{
		"@op":     "op",
		"+voice":  "voice",
		"@+both":  "both",
		"~&@%+x":  "x",
		"plain":   "plain",
		"a@b":     "a@b",
		"@@@":     "",
		"":        "",
	}

	for in, want := range tests {
		if got := StripStatusPrefix(in); got != want {
			t.Errorf("StripStatusPrefix(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestIsChannel(t *testing.T) {
	if !IsChannel("#test") || !IsChannel("&local") {
		t.Error("Expected channel names to be recognised")
	}
	if IsChannel("TopicLogger") || IsChannel("") {
		t.Error("Expected nicknames to not be channels")
	}
}
