package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dalnet/topiclogger/internal/identity"
	"github.com/dalnet/topiclogger/internal/metrics"
	"github.com/dalnet/topiclogger/internal/room"
	"github.com/dalnet/topiclogger/internal/storage"
)

// Dispatch applies one event: room state changes, outbound replies and log records.
// A non-nil error means the store failed under PolicyFatal and the session must stop.
func (s *Session) Dispatch(ctx context.Context, ev Event) error {
	metrics.EventsDispatched.WithLabelValues(ev.eventName()).Inc()

	switch e := ev.(type) {
	case Welcome:
		s.onWelcome(e)
		return nil
	case Connected:
		s.onConnected(e)
		return nil
	case Disconnected:
		s.onDisconnected(e)
		return nil
	case Numeric:
		s.onNumeric(e)
		return nil
	}

	if s.state != StateActive {
		s.log.Debug().Str("event", ev.eventName()).Str("state", s.state.String()).Msg("ignoring event before registration")
		return nil
	}

	switch e := ev.(type) {
	case Names:
		s.onNames(e)
		return nil
	case NickChange:
		return s.onNick(ctx, e)
	case Quit:
		return s.onQuit(ctx, e)
	case Join:
		return s.onJoin(ctx, e)
	case Part:
		return s.onPart(ctx, e)
	case Mode:
		return s.onMode(ctx, e)
	case Kick:
		return s.onKick(ctx, e)
	case TopicChange:
		return s.onTopic(ctx, e)
	case Message:
		return s.onMessage(ctx, e)
	case Action:
		return s.onText(ctx, storage.KindAction, e.Origin, e.Target, e.Text)
	case Notice:
		return s.onText(ctx, storage.KindNotice, e.Origin, e.Target, e.Text)
	default:
		return fmt.Errorf("unhandled event %T", ev)
	}
}

// actor resolves the bare nick of origin, logging and rejecting malformed origins
func (s *Session) actor(origin string) (string, bool) {
	nick, err := identity.BareNick(origin)
	if err != nil {
		s.log.Warn().Err(err).Str("origin", origin).Msg("dropping event")
		return "", false
	}
	return nick, true
}

// lookup finds the room for channel, logging when the bot has no record of being there
func (s *Session) lookup(channel string) (*room.Room, bool) {
	r, err := s.rooms.Get(channel)
	if err != nil {
		s.log.Warn().Err(err).Str("channel", channel).Msg("event for a channel we are not in")
		return nil, false
	}
	return r, true
}

func (s *Session) onWelcome(e Welcome) {
	if e.Nick != "" {
		s.nick = e.Nick
	}
	s.state = StateConnected
	s.rooms.Clear()
	s.syncRoomGauge()
	s.log.Info().Str("nick", s.nick).Msg("registered with server")
}

func (s *Session) onConnected(e Connected) {
	if s.state == StateActive {
		// A MOTD requested later in the session ends the same way
		s.log.Debug().Msg("already active, ignoring end of MOTD")
		return
	}

	if s.cfg.Password != "" {
		s.privmsg(s.cfg.NickServ, "IDENTIFY "+s.cfg.Password)
	}

	for _, channel := range s.cfg.Channels {
		if err := s.out.Join(channel); err != nil {
			s.log.Warn().Err(err).Str("channel", channel).Msg("failed to request join")
		}
	}

	s.state = StateActive
	s.log.Info().Strs("channels", s.cfg.Channels).Msg("connected, joining channels")
}

func (s *Session) onDisconnected(e Disconnected) {
	s.state = StateDisconnected
	s.rooms.Clear()
	s.syncRoomGauge()
	s.log.Warn().Str("reason", e.Reason).Msg("disconnected from server")
}

func (s *Session) onNumeric(e Numeric) {
	if e.Code < 400 {
		return
	}
	s.log.Error().
		Int("code", e.Code).
		Str("origin", e.Origin).
		Str("params", strings.Join(e.Params, " ")).
		Msg("server reported an error")
}

func (s *Session) onNames(e Names) {
	r, ok := s.lookup(e.Channel)
	if !ok {
		return
	}
	for _, token := range e.Nicks {
		nick := identity.StripStatusPrefix(token)
		if nick == "" || nick == s.nick {
			continue
		}
		r.Add(nick)
	}
}

func (s *Session) onNick(ctx context.Context, e NickChange) error {
	oldNick, ok := s.actor(e.Origin)
	if !ok {
		return nil
	}

	if oldNick == s.nick {
		s.nick = e.NewNick
		s.log.Info().Str("old", oldNick).Str("new", e.NewNick).Msg("our nick changed")
		return nil
	}

	for _, r := range s.rooms.Rooms() {
		if !r.Rename(oldNick, e.NewNick) {
			continue
		}
		if err := s.record(ctx, storage.KindNick, e.Origin, oldNick, r.Name, e.NewNick); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) onQuit(ctx context.Context, e Quit) error {
	nick, ok := s.actor(e.Origin)
	if !ok {
		return nil
	}

	for _, r := range s.rooms.Rooms() {
		if !r.Remove(nick) {
			continue
		}
		if err := s.record(ctx, storage.KindQuit, e.Origin, nick, r.Name, e.Reason); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) onJoin(ctx context.Context, e Join) error {
	nick, ok := s.actor(e.Origin)
	if !ok {
		return nil
	}

	if nick == s.nick {
		return s.joinedChannel(ctx, e.Channel)
	}

	r, ok := s.lookup(e.Channel)
	if !ok {
		return nil
	}
	r.Add(nick)
	if err := s.record(ctx, storage.KindJoin, e.Origin, nick, e.Channel, ""); err != nil {
		return err
	}

	if topic, ok := r.Topic(); ok {
		s.notice(nick, fmt.Sprintf("Welcome to %s! The current topic is: %s", e.Channel, topic))
	} else {
		s.notice(nick, fmt.Sprintf("Welcome to %s! No topic has been set yet.", e.Channel))
	}
	return nil
}

// joinedChannel creates the room for a channel the bot just joined and seeds its topic
func (s *Session) joinedChannel(ctx context.Context, channel string) error {
	r, err := s.rooms.Create(channel)
	if err != nil {
		if errors.Is(err, room.ErrAlreadyExists) {
			s.log.Warn().Str("channel", channel).Msg("join confirmation for a channel we already track")
			return nil
		}
		return err
	}
	s.syncRoomGauge()

	topic, found, err := s.store.LatestSubject(ctx, channel)
	if err != nil {
		return s.storeFailure("latest subject", err)
	}
	if found {
		r.SetTopic(topic)
	}

	s.log.Info().Str("channel", channel).Bool("topic_known", found).Msg("joined channel")
	return nil
}

func (s *Session) onPart(ctx context.Context, e Part) error {
	nick, ok := s.actor(e.Origin)
	if !ok {
		return nil
	}

	if nick == s.nick {
		if s.rooms.Remove(e.Channel) {
			s.syncRoomGauge()
			s.log.Info().Str("channel", e.Channel).Msg("left channel")
		}
		return nil
	}

	r, ok := s.lookup(e.Channel)
	if !ok {
		return nil
	}
	r.Remove(nick)
	return s.record(ctx, storage.KindPart, e.Origin, nick, e.Channel, e.Reason)
}

func (s *Session) onMode(ctx context.Context, e Mode) error {
	nick, ok := s.actor(e.Origin)
	if !ok {
		return nil
	}
	return s.record(ctx, storage.KindCmode, e.Origin, nick, e.Target, strings.Join(e.Args, " "))
}

func (s *Session) onKick(ctx context.Context, e Kick) error {
	if e.Nick != s.nick {
		// Only our own kicks are logged; other members are left as they are
		s.log.Debug().Str("channel", e.Channel).Str("nick", e.Nick).Msg("member kicked")
		return nil
	}

	kicker, ok := s.actor(e.Origin)
	if !ok {
		return nil
	}

	body := kicker
	if e.Reason != "" {
		body = kicker + ": " + e.Reason
	}
	if err := s.record(ctx, storage.KindKick, e.Origin, kicker, e.Channel, body); err != nil {
		return err
	}

	if s.rooms.Remove(e.Channel) {
		s.syncRoomGauge()
	}
	s.log.Warn().Str("channel", e.Channel).Str("by", kicker).Str("reason", e.Reason).Msg("kicked from channel")
	return nil
}

func (s *Session) onTopic(ctx context.Context, e TopicChange) error {
	if e.Text == "" {
		return nil
	}
	nick, ok := s.actor(e.Origin)
	if !ok {
		return nil
	}
	return s.record(ctx, storage.KindTopic, e.Origin, nick, e.Channel, e.Text)
}

func (s *Session) onMessage(ctx context.Context, e Message) error {
	if e.Text == "" || !identity.IsChannel(e.Target) {
		return nil
	}
	nick, ok := s.actor(e.Origin)
	if !ok {
		return nil
	}

	handled, err := s.handleCommand(ctx, e.Target, e.Origin, nick, e.Text)
	if err != nil || handled {
		return err
	}
	return s.record(ctx, storage.KindPrivmsg, e.Origin, nick, e.Target, e.Text)
}

// onText logs an action or notice addressed to a channel
func (s *Session) onText(ctx context.Context, kind storage.Kind, origin, target, text string) error {
	if text == "" || !identity.IsChannel(target) {
		return nil
	}
	nick, ok := s.actor(origin)
	if !ok {
		return nil
	}
	return s.record(ctx, kind, origin, nick, target, text)
}
