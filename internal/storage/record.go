package storage

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable wraps every failure to append to or query the log store
var ErrStoreUnavailable = errors.New("log store unavailable")

// Kind classifies a log record
type Kind string

const (
	KindSubject Kind = "subject" // topic set through the bot's !topic command
	KindPrivmsg Kind = "privmsg"
	KindAction  Kind = "action"
	KindNotice  Kind = "notice"
	KindJoin    Kind = "join"
	KindPart    Kind = "part"
	KindQuit    Kind = "quit"
	KindNick    Kind = "nick"
	KindCmode   Kind = "cmode"
	KindKick    Kind = "kick"
	KindTopic   Kind = "topic" // topic change reported by the server
)

// Record is one immutable logged event.
// ID and Timestamp are assigned by the store on append.
type Record struct {
	ID        int64     `json:"id"`
	Kind      Kind      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	Who       string    `json:"who"`
	RawWho    string    `json:"raw_who"`
	Channel   string    `json:"channel"`
	Body      string    `json:"body"`
}

// LogStore is the append-only record store the tracker writes to
type LogStore interface {
	// Append persists rec. ID and Timestamp on rec are ignored.
	Append(ctx context.Context, rec Record) error

	// LatestSubject returns the body of the newest subject record for channel.
	// The boolean is false when the channel has no subject record.
	LatestSubject(ctx context.Context, channel string) (string, bool, error)
}

// Store is a LogStore backend owned by the process
type Store interface {
	LogStore

	// Recent returns up to limit of the newest records for channel, oldest first.
	Recent(ctx context.Context, channel string, limit int) ([]Record, error)

	// Close releases the backend.
	Close() error
}

func reverse(s []Record) []Record {
	result := make([]Record, len(s))
	for i, v := range s {
		result[len(s)-1-i] = v
	}
	return result
}
