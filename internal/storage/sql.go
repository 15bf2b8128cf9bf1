package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

var schemas = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS log (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			kind      TEXT NOT NULL,
			timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			who       TEXT NOT NULL,
			raw_who   TEXT NOT NULL,
			channel   TEXT NOT NULL,
			body      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS log_channel_kind ON log (channel, kind, id)`,
	},
	DriverMySQL: {
		`CREATE TABLE IF NOT EXISTS log (
			id        BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			kind      VARCHAR(16) NOT NULL,
			timestamp TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			who       VARCHAR(64) NOT NULL,
			raw_who   VARCHAR(255) NOT NULL,
			channel   VARCHAR(64) NOT NULL,
			body      TEXT NOT NULL,
			KEY log_channel_kind (channel, kind, id)
		) DEFAULT CHARSET=utf8mb4`,
	},
}

// SQLConfig describes how to reach a SQL log store
type SQLConfig struct {
	Driver   string
	Path     string // sqlite3 database file
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// SQLStore implements Store on top of database/sql
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenSQL connects to the configured database and ensures the log table exists
func OpenSQL(ctx context.Context, cfg SQLConfig) (*SQLStore, error) {
	dsn, err := dataSourceName(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite {
		// SQLite works best with a single connection; it also keeps :memory: databases alive
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}

	s := &SQLStore{db: db, driver: cfg.Driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func dataSourceName(cfg SQLConfig) (string, error) {
	switch cfg.Driver {
	case DriverSQLite:
		if cfg.Path == "" {
			return "", errors.New("sqlite3 store needs a database path")
		}
		return cfg.Path + "?_journal_mode=WAL&_busy_timeout=5000", nil
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Database
		mc.ParseTime = true
		return mc.FormatDSN(), nil
	default:
		return "", fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}
}

func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range schemas[s.driver] {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Append inserts one record
func (s *SQLStore) Append(ctx context.Context, rec Record) error {
	query := `
		INSERT INTO log (kind, who, raw_who, channel, body)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.ExecContext(ctx, query, string(rec.Kind), rec.Who, rec.RawWho, rec.Channel, rec.Body); err != nil {
		return fmt.Errorf("%w: insert record: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// LatestSubject returns the body of the newest subject record for channel
func (s *SQLStore) LatestSubject(ctx context.Context, channel string) (string, bool, error) {
	query := `
		SELECT body
		FROM log
		WHERE kind = ? AND channel = ?
		ORDER BY id DESC
		LIMIT 1
	`
	var body string
	err := s.db.QueryRowContext(ctx, query, string(KindSubject), channel).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: query subject: %w", ErrStoreUnavailable, err)
	}
	return body, true, nil
}

// Recent returns up to limit of the newest records for channel, oldest first
func (s *SQLStore) Recent(ctx context.Context, channel string, limit int) ([]Record, error) {
	query := `
		SELECT id, kind, timestamp, who, raw_who, channel, body
		FROM log
		WHERE channel = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, channel, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query records: %w", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var kind string
		if err := rows.Scan(&rec.ID, &kind, &rec.Timestamp, &rec.Who, &rec.RawWho, &rec.Channel, &rec.Body); err != nil {
			return nil, fmt.Errorf("%w: scan record: %w", ErrStoreUnavailable, err)
		}
		rec.Kind = Kind(kind)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate records: %w", ErrStoreUnavailable, err)
	}
	return reverse(records), nil
}
