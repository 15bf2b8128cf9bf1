package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
irc_hostname: irc.example.net
irc_nick: TopicLogger
irc_password: secret
irc_channels:
  - "#test"
  - "#other"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 6667 {
		t.Errorf("Expected default port 6667, got %d", cfg.Port)
	}
	if cfg.Username != "TopicLogger" {
		t.Errorf("Expected username to default to nick, got %q", cfg.Username)
	}
	if cfg.DBDriver != "sqlite3" || cfg.DBPath != filepath.Join("data", "topiclogger.db") {
		t.Errorf("Unexpected store defaults: driver=%q path=%q", cfg.DBDriver, cfg.DBPath)
	}
	if cfg.StoreErrorPolicy != "fatal" {
		t.Errorf("Expected fatal store policy by default, got %q", cfg.StoreErrorPolicy)
	}
	if len(cfg.Channels) != 2 || cfg.Channels[0] != "#test" {
		t.Errorf("Unexpected channels: %v", cfg.Channels)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
irc_hostname: irc.example.net
irc_port: 6697
irc_nick: TopicLogger
irc_channels: ["#test"]
`)
	t.Setenv("TOPICLOGGER_IRC_NICK", "EnvLogger")
	t.Setenv("TOPICLOGGER_IRC_CHANNELS", "#a,#b")
	t.Setenv("TOPICLOGGER_STORE_ERROR_POLICY", "continue")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Nick != "EnvLogger" {
		t.Errorf("Expected env nick, got %q", cfg.Nick)
	}
	if cfg.Port != 6697 {
		t.Errorf("Expected file port to survive, got %d", cfg.Port)
	}
	if len(cfg.Channels) != 2 || cfg.Channels[1] != "#b" {
		t.Errorf("Expected env channels, got %v", cfg.Channels)
	}
	if cfg.StoreErrorPolicy != "continue" {
		t.Errorf("Expected env policy, got %q", cfg.StoreErrorPolicy)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := writeConfig(t, `
irc_port: 70000
db_driver: postgres
store_error_policy: retry
irc_channels: ["bad channel"]
`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, want := range []string{"irc_hostname", "irc_nick", "irc_port", "db_driver", "store_error_policy", "bad channel"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %q: %v", want, err)
		}
	}
}

func TestLoadMySQLNeedsHost(t *testing.T) {
	path := writeConfig(t, `
irc_hostname: irc.example.net
irc_nick: TopicLogger
db_driver: mysql
`)

	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "db_hostname") {
		t.Errorf("Expected mysql validation error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
