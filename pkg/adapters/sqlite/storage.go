// Package sqlite stores note blobs in a SQLite key/value table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/introspection"
	_ "modernc.org/sqlite"

	"github.com/aretw0/pocket/pkg/core"
)

// DefaultFile is the database file created inside a notes directory.
const DefaultFile = "pocket.sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Config holds the configuration for the SQLite storage.
type Config struct {
	Path     string
	ReadOnly bool
}

// Storage implements core.Storage on a single SQLite table.
type Storage struct {
	db     *sql.DB
	config Config
}

// Open opens (or creates) the database and its schema.
func Open(config Config) (*Storage, error) {
	config.Path = strings.TrimSpace(config.Path)
	if config.Path == "" {
		return nil, errors.New("sqlite database path is required")
	}

	dsn := config.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	if config.ReadOnly {
		dsn = config.Path + "?mode=ro"
	} else if err := os.MkdirAll(filepath.Dir(config.Path), 0o700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if !config.ReadOnly {
		if _, err := db.Exec(schema); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}
	return &Storage{db: db, config: config}, nil
}

// Read returns the blob stored under key.
func (s *Storage) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return value, true, nil
}

// Write upserts the blob stored under key.
func (s *Storage) Write(ctx context.Context, key string, blob []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if key == "" {
		return errors.New("storage key is empty")
	}
	if blob == nil {
		blob = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, blob, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StorageState exposes internal state for observability.
type StorageState struct {
	Path      string `json:"path"`
	ReadOnly  bool   `json:"read_only"`
	Keys      int    `json:"keys"`
	UpdatedAt int64  `json:"updated_at,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	st := StorageState{Path: s.config.Path, ReadOnly: s.config.ReadOnly}
	var updated sql.NullInt64
	row := s.db.QueryRow(`SELECT COUNT(*), MAX(updated_at) FROM kv`)
	if err := row.Scan(&st.Keys, &updated); err == nil && updated.Valid {
		st.UpdatedAt = updated.Int64
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "sqlite"
}

var _ core.Storage = (*Storage)(nil)
var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
