package tracker

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dalnet/topiclogger/internal/storage"
)

type memStore struct {
	records    []storage.Record
	failAppend bool
	failLookup bool
}

func (m *memStore) Append(ctx context.Context, rec storage.Record) error {
	if m.failAppend {
		return errors.New("database has gone away")
	}
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) LatestSubject(ctx context.Context, channel string) (string, bool, error) {
	if m.failLookup {
		return "", false, errors.New("database has gone away")
	}
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].Kind == storage.KindSubject && m.records[i].Channel == channel {
			return m.records[i].Body, true, nil
		}
	}
	return "", false, nil
}

func (m *memStore) ofKind(kind storage.Kind) []storage.Record {
	var out []storage.Record
	for _, rec := range m.records {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out
}

type sent struct {
	verb   string
	target string
	text   string
}

type fakeSender struct {
	sent []sent
}

func (f *fakeSender) Join(channel string) error {
	f.sent = append(f.sent, sent{verb: "JOIN", target: channel})
	return nil
}

func (f *fakeSender) Privmsg(target, text string) error {
	f.sent = append(f.sent, sent{verb: "PRIVMSG", target: target, text: text})
	return nil
}

func (f *fakeSender) Notice(target, text string) error {
	f.sent = append(f.sent, sent{verb: "NOTICE", target: target, text: text})
	return nil
}

func (f *fakeSender) last() sent {
	if len(f.sent) == 0 {
		return sent{}
	}
	return f.sent[len(f.sent)-1]
}

const botNick = "TopicLogger"

func newTestSession(t *testing.T, store *memStore) (*Session, *fakeSender) {
	t.Helper()
	out := &fakeSender{}
	s := NewSession(Config{
		Nick:     botNick,
		Password: "hunter2",
		Channels: []string{"#test", "#other"},
	}, store, out, zerolog.Nop())
	return s, out
}

// activeSession returns a registered session that has joined the given channels
func activeSession(t *testing.T, store *memStore, channels ...string) (*Session, *fakeSender) {
	t.Helper()
	s, out := newTestSession(t, store)
	mustDispatch(t, s, Welcome{Nick: botNick})
	mustDispatch(t, s, Connected{})
	for _, ch := range channels {
		mustDispatch(t, s, Join{Origin: botNick + "!bot@host", Channel: ch})
	}
	out.sent = nil
	return s, out
}

func mustDispatch(t *testing.T, s *Session, ev Event) {
	t.Helper()
	if err := s.Dispatch(context.Background(), ev); err != nil {
		t.Fatalf("Dispatch(%T) failed: %v", ev, err)
	}
}
