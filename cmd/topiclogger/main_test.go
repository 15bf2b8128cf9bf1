package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dalnet/topiclogger/internal/config"
	"github.com/dalnet/topiclogger/internal/storage"
)

func TestVersionFlag(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-v"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out.String(), "topiclogger version "+version) {
		t.Errorf("Unexpected version output: %q", out.String())
	}
}

func TestOpenStoreDrivers(t *testing.T) {
	ctx := context.Background()

	for _, driver := range []string{"file", "sqlite3"} {
		dir := t.TempDir()
		cfg := &config.Config{
			DBDriver: driver,
			DataDir:  filepath.Join(dir, "data"),
			DBPath:   filepath.Join(dir, "data", "topiclogger.db"),
		}

		store, err := openStore(ctx, cfg)
		if err != nil {
			t.Fatalf("openStore(%s) failed: %v", driver, err)
		}

		if err := store.Append(ctx, storage.Record{Kind: storage.KindSubject, Who: "alice", RawWho: "alice!a@host", Channel: "#test", Body: "hello"}); err != nil {
			t.Fatalf("%s: Append failed: %v", driver, err)
		}
		subject, ok, err := store.LatestSubject(ctx, "#test")
		if err != nil || !ok || subject != "hello" {
			t.Errorf("%s: LatestSubject = %q, %v, %v", driver, subject, ok, err)
		}
		store.Close()
	}
}

func TestPrintRecords(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	records := []storage.Record{
		{ID: 1, Kind: storage.KindJoin, Timestamp: ts, Who: "alice", Channel: "#test"},
		{ID: 2, Kind: storage.KindPrivmsg, Timestamp: ts, Who: "alice", Channel: "#test", Body: "hi"},
	}

	var out bytes.Buffer
	if err := printRecords(&out, records, false); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), out.String())
	}
	if lines[0] != "[2024-03-01 12:30:00] join    alice" {
		t.Errorf("Unexpected join line: %q", lines[0])
	}
	if lines[1] != "[2024-03-01 12:30:00] privmsg alice: hi" {
		t.Errorf("Unexpected privmsg line: %q", lines[1])
	}

	out.Reset()
	if err := printRecords(&out, records[1:], true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"kind":"privmsg"`) || !strings.Contains(out.String(), `"body":"hi"`) {
		t.Errorf("Unexpected JSON output: %q", out.String())
	}
}
