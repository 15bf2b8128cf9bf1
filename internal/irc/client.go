package irc

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dalnet/topiclogger/internal/config"
	"github.com/dalnet/topiclogger/internal/storage"
	"github.com/dalnet/topiclogger/internal/tracker"
)

// Version information (set at build time or here)
var (
	Version   = "1.0.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const (
	eventBuffer  = 64
	quitTimeout  = 5 * time.Second
	recoverDelay = 15 * time.Second
)

// Client connects a tracker session to an IRC server
type Client struct {
	conn    *ircevent.Connection
	cfg     *config.Config
	session *tracker.Session
	events  chan tracker.Event
	done    chan struct{}
	stop    sync.Once
	log     zerolog.Logger
}

// NewClient creates a new IRC client whose records go to store
func NewClient(cfg *config.Config, store storage.LogStore, logger zerolog.Logger) (*Client, error) {
	policy, err := tracker.ParsePolicy(cfg.StoreErrorPolicy)
	if err != nil {
		return nil, err
	}

	logger = logger.With().Str("session", uuid.NewString()).Logger()

	c := &Client{
		cfg:    cfg,
		events: make(chan tracker.Event, eventBuffer),
		done:   make(chan struct{}),
		log:    logger.With().Str("component", "irc").Logger(),
	}

	c.conn = &ircevent.Connection{
		Server:      net.JoinHostPort(cfg.Hostname, strconv.Itoa(cfg.Port)),
		Nick:        cfg.Nick,
		User:        cfg.Username,
		RealName:    cfg.RealName,
		Password:    cfg.ServerPassword,
		QuitMessage: "Shutting down",
		Version:     fmt.Sprintf("topiclogger %s (built %s, commit %s)", Version, BuildDate, GitCommit),
		EnableCTCP:  true,
		UseTLS:      cfg.TLS,
		TLSConfig: &tls.Config{
			ServerName:         cfg.Hostname,
			InsecureSkipVerify: cfg.TLSInsecure,
		},
	}

	c.session = tracker.NewSession(tracker.Config{
		Nick:     cfg.Nick,
		Password: cfg.Password,
		NickServ: cfg.NickServ,
		Channels: cfg.Channels,
		Policy:   policy,
	}, store, c, logger)

	c.registerHandlers()

	return c, nil
}

// Join implements tracker.Sender
func (c *Client) Join(channel string) error {
	return c.conn.Join(channel)
}

// Privmsg implements tracker.Sender
func (c *Client) Privmsg(target, text string) error {
	return c.conn.Privmsg(target, text)
}

// Notice implements tracker.Sender
func (c *Client) Notice(target, text string) error {
	return c.conn.Notice(target, text)
}

func (c *Client) registerHandlers() {
	for _, code := range trackedCommands {
		c.conn.AddCallback(code, c.forward)
	}

	// Error numerics are forwarded so the session can log them
	for code := 400; code < 1000; code++ {
		c.conn.AddCallback(strconv.Itoa(code), c.forward)
	}

	// Nick issues
	c.conn.AddCallback("432", c.onNickUnavailable) // ERR_ERRONEUSNICKNAME
	c.conn.AddCallback("433", c.onNickUnavailable) // ERR_NICKNAMEINUSE
}

// forward runs on the connection's reader goroutine and only queues events
func (c *Client) forward(e ircmsg.Message) {
	ev, ok := translate(e)
	if !ok {
		return
	}
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// Run connects and feeds events to the session until ctx is cancelled or a
// store failure ends processing. It returns nil on a clean shutdown.
func (c *Client) Run(ctx context.Context) error {
	defer c.stopForwarding()

	c.session.MarkConnecting()
	c.log.Info().Str("server", c.conn.Server).Bool("tls", c.cfg.TLS).Msg("connecting")
	if err := c.conn.Connect(); err != nil {
		return fmt.Errorf("failed to connect to %s: %w", c.conn.Server, err)
	}

	loopDone := make(chan struct{})
	go func() {
		c.conn.Loop()
		close(loopDone)
	}()

	// Records in flight must not be cut short by shutdown
	dispatchCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("shutdown requested")
			c.stopForwarding()
			c.Quit("Received shutdown signal")
			c.waitLoop(loopDone)
			return nil

		case <-loopDone:
			c.log.Info().Msg("connection loop ended")
			return nil

		case ev := <-c.events:
			if err := c.session.Dispatch(dispatchCtx, ev); err != nil {
				c.log.Error().Err(err).Msg("event processing stopped")
				c.stopForwarding()
				c.Quit("Log store failure")
				c.waitLoop(loopDone)
				return err
			}
		}
	}
}

// stopForwarding releases the reader goroutine once nothing drains events
func (c *Client) stopForwarding() {
	c.stop.Do(func() { close(c.done) })
}

func (c *Client) waitLoop(loopDone <-chan struct{}) {
	select {
	case <-loopDone:
	case <-time.After(quitTimeout):
		c.log.Warn().Dur("timeout", quitTimeout).Msg("connection did not close in time")
	}
}

// Quit disconnects from IRC
func (c *Client) Quit(message string) {
	if message != "" {
		c.conn.QuitMessage = message
	}
	c.conn.Quit()
}

func (c *Client) onNickUnavailable(e ircmsg.Message) {
	if c.cfg.Alternate == "" || c.conn.CurrentNick() == c.cfg.Alternate {
		return
	}
	c.log.Warn().Str("code", e.Command).Str("alternate", c.cfg.Alternate).Msg("nick unavailable, switching to alternate")
	c.conn.SetNick(c.cfg.Alternate)

	if c.cfg.Password == "" {
		return
	}

	// Schedule nick recovery
	verb := "GHOST"
	if e.Command == "432" {
		verb = "RELEASE"
	}
	time.AfterFunc(recoverDelay, func() {
		select {
		case <-c.done:
			return
		default:
		}
		if err := c.conn.Privmsg(c.cfg.NickServ, fmt.Sprintf("%s %s %s", verb, c.cfg.Nick, c.cfg.Password)); err != nil {
			c.log.Warn().Err(err).Msg("nick recovery failed")
			return
		}
		time.AfterFunc(2*time.Second, func() { c.conn.SetNick(c.cfg.Nick) })
	})
}
