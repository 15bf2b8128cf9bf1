package irc

import (
	"reflect"
	"testing"

	"github.com/ergochat/irc-go/ircmsg"

	"github.com/dalnet/topiclogger/internal/tracker"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		line string
		want tracker.Event
	}{
		{":irc.example.net 001 TopicLogger :Welcome to the network", tracker.Welcome{Nick: "TopicLogger"}},
		{":irc.example.net 376 TopicLogger :End of /MOTD command.", tracker.Connected{}},
		{":irc.example.net 422 TopicLogger :MOTD File is missing", tracker.Connected{}},
		{"ERROR :Closing Link: timeout", tracker.Disconnected{Reason: "Closing Link: timeout"}},
		{":irc.example.net 353 TopicLogger = #test :@alice +bob carol", tracker.Names{Channel: "#test", Nicks: []string{"@alice", "+bob", "carol"}}},
		{":alice!a@host NICK alicia", tracker.NickChange{Origin: "alice!a@host", NewNick: "alicia"}},
		{":alice!a@host QUIT :gone fishing", tracker.Quit{Origin: "alice!a@host", Reason: "gone fishing"}},
		{":alice!a@host QUIT", tracker.Quit{Origin: "alice!a@host"}},
		{":alice!a@host JOIN #test", tracker.Join{Origin: "alice!a@host", Channel: "#test"}},
		{":alice!a@host PART #test :bye", tracker.Part{Origin: "alice!a@host", Channel: "#test", Reason: "bye"}},
		{":op!o@host MODE #test +o alice", tracker.Mode{Origin: "op!o@host", Target: "#test", Args: []string{"+o", "alice"}}},
		{":op!o@host KICK #test alice :spam", tracker.Kick{Origin: "op!o@host", Channel: "#test", Nick: "alice", Reason: "spam"}},
		{":op!o@host KICK #test alice", tracker.Kick{Origin: "op!o@host", Channel: "#test", Nick: "alice"}},
		{":op!o@host TOPIC #test :new topic", tracker.TopicChange{Origin: "op!o@host", Channel: "#test", Text: "new topic"}},
		{":alice!a@host PRIVMSG #test :hello there", tracker.Message{Origin: "alice!a@host", Target: "#test", Text: "hello there"}},
		{":alice!a@host PRIVMSG #test :\x01ACTION waves\x01", tracker.Action{Origin: "alice!a@host", Target: "#test", Text: "waves"}},
		{":alice!a@host NOTICE #test :heads up", tracker.Notice{Origin: "alice!a@host", Target: "#test", Text: "heads up"}},
		{":irc.example.net 482 TopicLogger #test :You're not channel operator", tracker.Numeric{Code: 482, Origin: "irc.example.net", Params: []string{"TopicLogger", "#test", "You're not channel operator"}}},
	}

	for _, tt := range tests {
		msg, err := ircmsg.ParseLine(tt.line)
		if err != nil {
			t.Fatalf("ParseLine(%q) failed: %v", tt.line, err)
		}
		got, ok := translate(msg)
		if !ok {
			t.Errorf("translate(%q) dropped the message", tt.line)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("translate(%q) = %#v, want %#v", tt.line, got, tt.want)
		}
	}
}

func TestTranslateUnwrappedAction(t *testing.T) {
	msg := ircmsg.Message{Source: "alice!a@host", Command: "CTCP_ACTION", Params: []string{"#test", "waves"}}
	got, ok := translate(msg)
	want := tracker.Action{Origin: "alice!a@host", Target: "#test", Text: "waves"}
	if !ok || !reflect.DeepEqual(got, want) {
		t.Errorf("translate(CTCP_ACTION) = %#v, %v; want %#v", got, ok, want)
	}
}

func TestTranslateDropped(t *testing.T) {
	lines := []string{
		":alice!a@host PRIVMSG #test :\x01VERSION\x01",
		":alice!a@host NOTICE TopicLogger :\x01VERSION other 1.0\x01",
		":alice!a@host PRIVMSG #test",
		":alice!a@host JOIN",
		":op!o@host KICK #test",
		":irc.example.net 353 TopicLogger = #test",
		":alice!a@host INVITE TopicLogger #test",
		"PING :irc.example.net",
	}

	for _, line := range lines {
		msg, err := ircmsg.ParseLine(line)
		if err != nil {
			t.Fatalf("ParseLine(%q) failed: %v", line, err)
		}
		if ev, ok := translate(msg); ok {
			t.Errorf("translate(%q) = %#v, want dropped", line, ev)
		}
	}
}

func TestCtcpAction(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"\x01ACTION waves\x01", "waves", true},
		{"\x01ACTION waves", "waves", true},
		{"\x01ACTION\x01", "", true},
		{"\x01PING 123\x01", "", false},
	}
	for _, tt := range tests {
		got, ok := ctcpAction(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ctcpAction(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
