package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// Config holds all bot configuration
type Config struct {
	// IRC
	Hostname       string   `yaml:"irc_hostname" env:"TOPICLOGGER_IRC_HOSTNAME"`
	Port           int      `yaml:"irc_port" env:"TOPICLOGGER_IRC_PORT"`
	Nick           string   `yaml:"irc_nick" env:"TOPICLOGGER_IRC_NICK"`
	Alternate      string   `yaml:"irc_alternate" env:"TOPICLOGGER_IRC_ALTERNATE"`
	Password       string   `yaml:"irc_password" env:"TOPICLOGGER_IRC_PASSWORD"`
	NickServ       string   `yaml:"irc_nickserv" env:"TOPICLOGGER_IRC_NICKSERV"`
	Username       string   `yaml:"irc_username" env:"TOPICLOGGER_IRC_USERNAME"`
	RealName       string   `yaml:"irc_realname" env:"TOPICLOGGER_IRC_REALNAME"`
	ServerPassword string   `yaml:"irc_server_password" env:"TOPICLOGGER_IRC_SERVER_PASSWORD"`
	TLS            bool     `yaml:"irc_tls" env:"TOPICLOGGER_IRC_TLS"`
	TLSInsecure    bool     `yaml:"irc_tls_insecure" env:"TOPICLOGGER_IRC_TLS_INSECURE"`
	Channels       []string `yaml:"irc_channels" env:"TOPICLOGGER_IRC_CHANNELS" envSeparator:","`

	// Log store
	DBDriver   string `yaml:"db_driver" env:"TOPICLOGGER_DB_DRIVER"`
	DBHostname string `yaml:"db_hostname" env:"TOPICLOGGER_DB_HOSTNAME"`
	DBPort     int    `yaml:"db_port" env:"TOPICLOGGER_DB_PORT"`
	DBUsername string `yaml:"db_username" env:"TOPICLOGGER_DB_USERNAME"`
	DBPassword string `yaml:"db_password" env:"TOPICLOGGER_DB_PASSWORD"`
	DBDatabase string `yaml:"db_database" env:"TOPICLOGGER_DB_DATABASE"`
	DBPath     string `yaml:"db_path" env:"TOPICLOGGER_DB_PATH"`
	DataDir    string `yaml:"data_dir" env:"TOPICLOGGER_DATA_DIR"`

	// StoreErrorPolicy is "fatal" (exit on the first store failure) or "continue"
	StoreErrorPolicy string `yaml:"store_error_policy" env:"TOPICLOGGER_STORE_ERROR_POLICY"`

	// Operations
	LogLevel    string `yaml:"log_level" env:"TOPICLOGGER_LOG_LEVEL"`
	LogFormat   string `yaml:"log_format" env:"TOPICLOGGER_LOG_FORMAT"`
	MetricsAddr string `yaml:"metrics_addr" env:"TOPICLOGGER_METRICS_ADDR"`
}

// Load reads a YAML configuration file, applies environment overrides and defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Port == 0 {
		c.Port = 6667
	}
	if c.NickServ == "" {
		c.NickServ = "NickServ"
	}
	if c.Username == "" {
		c.Username = c.Nick
	}
	if c.RealName == "" {
		c.RealName = "TopicLogger"
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.DBDriver == "" {
		c.DBDriver = "sqlite3"
	}
	if c.DBDriver == "sqlite3" && c.DBPath == "" {
		c.DBPath = filepath.Join(c.DataDir, "topiclogger.db")
	}
	if c.DBDriver == "mysql" && c.DBPort == 0 {
		c.DBPort = 3306
	}
	if c.StoreErrorPolicy == "" {
		c.StoreErrorPolicy = "fatal"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
}

// Validate checks that the configuration can be used to start the bot
func (c *Config) Validate() error {
	var errs []error

	if c.Hostname == "" {
		errs = append(errs, errors.New("irc_hostname is required"))
	}
	if c.Nick == "" {
		errs = append(errs, errors.New("irc_nick is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("irc_port %d out of range", c.Port))
	}
	for _, ch := range c.Channels {
		if strings.TrimSpace(ch) == "" || strings.ContainsAny(ch, " ,") {
			errs = append(errs, fmt.Errorf("invalid channel name %q", ch))
		}
	}

	switch c.DBDriver {
	case "sqlite3", "file":
	case "mysql":
		if c.DBHostname == "" || c.DBDatabase == "" {
			errs = append(errs, errors.New("mysql store needs db_hostname and db_database"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown db_driver %q", c.DBDriver))
	}

	switch strings.ToLower(c.StoreErrorPolicy) {
	case "fatal", "continue":
	default:
		errs = append(errs, fmt.Errorf("unknown store_error_policy %q", c.StoreErrorPolicy))
	}

	return errors.Join(errs...)
}
