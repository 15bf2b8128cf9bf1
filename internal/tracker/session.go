package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dalnet/topiclogger/internal/metrics"
	"github.com/dalnet/topiclogger/internal/room"
	"github.com/dalnet/topiclogger/internal/storage"
)

// State is the connection state of a session
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateActive
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateActive:
		return "active"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StorePolicy decides what a store failure does to event processing
type StorePolicy int

const (
	// PolicyFatal stops processing on the first store failure
	PolicyFatal StorePolicy = iota
	// PolicyContinue logs store failures and keeps going
	PolicyContinue
)

// ParsePolicy maps a config value to a StorePolicy
func ParsePolicy(s string) (StorePolicy, error) {
	switch strings.ToLower(s) {
	case "", "fatal":
		return PolicyFatal, nil
	case "continue":
		return PolicyContinue, nil
	default:
		return PolicyFatal, fmt.Errorf("unknown store error policy %q", s)
	}
}

// Sender is the outbound half of the event source
type Sender interface {
	Join(channel string) error
	Privmsg(target, text string) error
	Notice(target, text string) error
}

// Config is what a session needs from the bot configuration
type Config struct {
	Nick     string
	Password string // identity service password, empty to skip identification
	NickServ string
	Channels []string
	Policy   StorePolicy
}

// Session is the state of one bot session: who we are, which rooms we occupy,
// and where records go. Dispatch must be called from a single goroutine.
type Session struct {
	cfg   Config
	nick  string
	state State
	rooms *room.Registry
	store storage.LogStore
	out   Sender
	log   zerolog.Logger
}

// NewSession creates a disconnected session
func NewSession(cfg Config, store storage.LogStore, out Sender, logger zerolog.Logger) *Session {
	if cfg.NickServ == "" {
		cfg.NickServ = "NickServ"
	}
	return &Session{
		cfg:   cfg,
		nick:  cfg.Nick,
		state: StateDisconnected,
		rooms: room.NewRegistry(),
		store: store,
		out:   out,
		log:   logger.With().Str("component", "tracker").Logger(),
	}
}

// Nick returns the bot's current nick
func (s *Session) Nick() string {
	return s.nick
}

// State returns the connection state
func (s *Session) State() State {
	return s.state
}

// Rooms returns the room registry
func (s *Session) Rooms() *room.Registry {
	return s.rooms
}

// MarkConnecting records that a connection attempt is under way
func (s *Session) MarkConnecting() {
	s.state = StateConnecting
}

// record appends one log record
func (s *Session) record(ctx context.Context, kind storage.Kind, origin, nick, channel, body string) error {
	rec := storage.Record{
		Kind:    kind,
		Who:     nick,
		RawWho:  origin,
		Channel: channel,
		Body:    body,
	}
	if err := s.store.Append(ctx, rec); err != nil {
		return s.storeFailure("append", err)
	}
	metrics.RecordsAppended.WithLabelValues(string(kind)).Inc()
	return nil
}

// storeFailure applies the store policy to err. It returns nil when processing may continue.
func (s *Session) storeFailure(op string, err error) error {
	metrics.StoreErrors.WithLabelValues(op).Inc()
	if !errors.Is(err, storage.ErrStoreUnavailable) {
		err = fmt.Errorf("%w: %w", storage.ErrStoreUnavailable, err)
	}
	if s.cfg.Policy == PolicyContinue {
		s.log.Error().Err(err).Str("op", op).Msg("log store failure, continuing")
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Session) privmsg(target, text string) {
	if err := s.out.Privmsg(target, text); err != nil {
		s.log.Warn().Err(err).Str("target", target).Msg("failed to send message")
	}
}

func (s *Session) notice(target, text string) {
	if err := s.out.Notice(target, text); err != nil {
		s.log.Warn().Err(err).Str("target", target).Msg("failed to send notice")
	}
}

func (s *Session) syncRoomGauge() {
	metrics.RoomsTracked.Set(float64(s.rooms.Len()))
}
