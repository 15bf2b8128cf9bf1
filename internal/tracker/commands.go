package tracker

import (
	"context"
	"fmt"
	"strings"

	"github.com/dalnet/topiclogger/internal/storage"
)

const (
	topicCommand = "!topic"
	logCommand   = "!log"
)

type commandKind int

const (
	notCommand commandKind = iota
	cmdShowTopic
	cmdSetTopic
	cmdLog
)

type command struct {
	kind  commandKind
	topic string
}

// parseCommand classifies channel text. Anything longer than "!topic" that
// starts with it sets the topic: the 7th character is dropped unchecked and the
// rest becomes the topic, so "!topic foo" and "!topicXfoo" both set "foo".
func parseCommand(text string) command {
	switch {
	case text == topicCommand:
		return command{kind: cmdShowTopic}
	case text == logCommand:
		return command{kind: cmdLog}
	case strings.HasPrefix(text, topicCommand):
		r := []rune(text)
		topic := ""
		if len(r) > len(topicCommand)+1 {
			topic = string(r[len(topicCommand)+1:])
		}
		return command{kind: cmdSetTopic, topic: topic}
	default:
		return command{kind: notCommand}
	}
}

// handleCommand runs text as a channel command. It reports false when text is
// not a command and should be logged as an ordinary message.
func (s *Session) handleCommand(ctx context.Context, channel, origin, nick, text string) (bool, error) {
	cmd := parseCommand(text)
	if cmd.kind == notCommand {
		return false, nil
	}

	r, ok := s.lookup(channel)
	if !ok {
		return true, nil
	}

	switch cmd.kind {
	case cmdShowTopic:
		if topic, ok := r.Topic(); ok {
			s.privmsg(channel, fmt.Sprintf("The current topic is: %s", topic))
		} else {
			s.privmsg(channel, "No topic has been set.")
		}

	case cmdSetTopic:
		r.SetTopic(cmd.topic)
		if err := s.record(ctx, storage.KindSubject, origin, nick, channel, cmd.topic); err != nil {
			return true, err
		}
		s.privmsg(channel, fmt.Sprintf("Topic changed to: %s", cmd.topic))
		s.log.Info().Str("channel", channel).Str("by", nick).Str("topic", cmd.topic).Msg("topic set")

	case cmdLog:
		// reserved, no reply
	}
	return true, nil
}
