package irc

import (
	"strconv"
	"strings"

	"github.com/ergochat/irc-go/ircmsg"

	"github.com/dalnet/topiclogger/internal/tracker"
)

/*
Handler Summary:

Connection Events:
- 001: RPL_WELCOME - registration accepted, carries the nick we were given
- 376/422: End of MOTD / MOTD missing - bot is connected
  - Session identifies to NickServ and joins configured channels
- ERROR: server closed the link

Channel Events:
- 353: RPL_NAMREPLY - initial membership of a joined channel
- JOIN, PART, KICK, MODE, TOPIC
- PRIVMSG, CTCP_ACTION, NOTICE to a channel

User Events:
- NICK, QUIT - fanned out to every room the user is in

Error Numerics:
- 400-999: logged by the session

Nick Issues:
- 432/433 (onNickUnavailable): switch to the alternate nick, then schedule
  RELEASE or GHOST and a nick change back

CTCP:
- CTCP is unwrapped by the connection (EnableCTCP). ACTION arrives as
  CTCP_ACTION; VERSION is answered by the connection with conn.Version
*/

var trackedCommands = []string{
	"001", "376", "422", "353", "ERROR",
	"NICK", "QUIT", "JOIN", "PART", "MODE", "KICK", "TOPIC",
	"PRIVMSG", "CTCP_ACTION", "NOTICE",
}

const ctcpDelim = "\x01"

// translate turns a protocol message into a session event. It reports false
// for messages the session has no use for.
func translate(e ircmsg.Message) (tracker.Event, bool) {
	p := e.Params

	switch e.Command {
	case "001":
		// 001 <nick> :Welcome to the network
		if len(p) < 1 {
			return nil, false
		}
		return tracker.Welcome{Nick: p[0]}, true

	case "376", "422":
		return tracker.Connected{}, true

	case "ERROR":
		return tracker.Disconnected{Reason: param(p, 0)}, true

	case "353":
		// 353 <me> <symbol> <channel> :<nicks>
		if len(p) < 4 {
			return nil, false
		}
		return tracker.Names{Channel: p[2], Nicks: strings.Fields(p[3])}, true

	case "NICK":
		if len(p) < 1 {
			return nil, false
		}
		return tracker.NickChange{Origin: e.Source, NewNick: p[0]}, true

	case "QUIT":
		return tracker.Quit{Origin: e.Source, Reason: param(p, 0)}, true

	case "JOIN":
		if len(p) < 1 {
			return nil, false
		}
		return tracker.Join{Origin: e.Source, Channel: p[0]}, true

	case "PART":
		if len(p) < 1 {
			return nil, false
		}
		return tracker.Part{Origin: e.Source, Channel: p[0], Reason: param(p, 1)}, true

	case "MODE":
		if len(p) < 1 {
			return nil, false
		}
		return tracker.Mode{Origin: e.Source, Target: p[0], Args: append([]string(nil), p[1:]...)}, true

	case "KICK":
		// KICK <channel> <nick> [:<reason>]
		if len(p) < 2 {
			return nil, false
		}
		return tracker.Kick{Origin: e.Source, Channel: p[0], Nick: p[1], Reason: param(p, 2)}, true

	case "TOPIC":
		if len(p) < 1 {
			return nil, false
		}
		return tracker.TopicChange{Origin: e.Source, Channel: p[0], Text: param(p, 1)}, true

	case "PRIVMSG":
		if len(p) < 2 {
			return nil, false
		}
		text := p[1]
		if strings.HasPrefix(text, ctcpDelim) {
			action, ok := ctcpAction(text)
			if !ok {
				return nil, false
			}
			return tracker.Action{Origin: e.Source, Target: p[0], Text: action}, true
		}
		return tracker.Message{Origin: e.Source, Target: p[0], Text: text}, true

	case "CTCP_ACTION":
		// the connection has already unwrapped the CTCP payload
		if len(p) < 2 {
			return nil, false
		}
		return tracker.Action{Origin: e.Source, Target: p[0], Text: p[1]}, true

	case "NOTICE":
		if len(p) < 2 || strings.HasPrefix(p[1], ctcpDelim) {
			return nil, false
		}
		return tracker.Notice{Origin: e.Source, Target: p[0], Text: p[1]}, true
	}

	if len(e.Command) == 3 {
		if code, err := strconv.Atoi(e.Command); err == nil {
			return tracker.Numeric{Code: code, Origin: e.Source, Params: p}, true
		}
	}
	return nil, false
}

// ctcpAction extracts the text of a raw "\x01ACTION text\x01" payload
func ctcpAction(text string) (string, bool) {
	body := strings.TrimSuffix(strings.TrimPrefix(text, ctcpDelim), ctcpDelim)
	if body == "ACTION" {
		return "", true
	}
	rest, ok := strings.CutPrefix(body, "ACTION ")
	if !ok {
		return "", false
	}
	return rest, true
}

func param(p []string, i int) string {
	if i < len(p) {
		return p[i]
	}
	return ""
}
