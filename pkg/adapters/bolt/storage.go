// Package bolt stores note blobs in a single bbolt database file.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/introspection"
	bolt "go.etcd.io/bbolt"

	"github.com/aretw0/pocket/pkg/core"
)

// DefaultFile is the database file created inside a notes directory.
const DefaultFile = "pocket.db"

var bucketKV = []byte("kv")

// Config holds the configuration for the bbolt storage.
type Config struct {
	Path     string // database file
	ReadOnly bool
	Timeout  time.Duration // how long to wait for the file lock held by another process
}

// Storage implements core.Storage on a bbolt key/value bucket.
type Storage struct {
	db     *bolt.DB
	config Config

	mu     sync.Mutex
	writes int
}

// Open opens (or creates) the database file.
func Open(config Config) (*Storage, error) {
	config.Path = strings.TrimSpace(config.Path)
	if config.Path == "" {
		return nil, errors.New("bolt database path is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Second
	}
	if !config.ReadOnly {
		if err := os.MkdirAll(filepath.Dir(config.Path), 0o700); err != nil {
			return nil, err
		}
	}

	db, err := bolt.Open(config.Path, 0o600, &bolt.Options{Timeout: config.Timeout, ReadOnly: config.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", config.Path, err)
	}
	if !config.ReadOnly {
		err = db.Update(func(tx *bolt.Tx) error {
			_, err := tx.CreateBucketIfNotExists(bucketKV)
			return err
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init bucket: %w", err)
		}
	}
	return &Storage{db: db, config: config}, nil
}

// Read returns the blob stored under key.
func (s *Storage) Read(ctx context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketKV)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			// Values are only valid inside the transaction.
			out = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, out != nil, nil
}

// Write replaces the blob stored under key.
func (s *Storage) Write(ctx context.Context, key string, blob []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if key == "" {
		return errors.New("storage key is empty")
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketKV).Put([]byte(key), blob)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.writes++
	s.mu.Unlock()
	return nil
}

// Close releases the database file.
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// StorageState exposes internal state for observability.
type StorageState struct {
	Path     string `json:"path"`
	ReadOnly bool   `json:"read_only"`
	Keys     int    `json:"keys"`
	Writes   int    `json:"writes"`
}

// State implements introspection.Introspectable.
func (s *Storage) State() any {
	st := StorageState{Path: s.config.Path, ReadOnly: s.config.ReadOnly}
	_ = s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketKV); b != nil {
			st.Keys = b.Stats().KeyN
		}
		return nil
	})
	s.mu.Lock()
	st.Writes = s.writes
	s.mu.Unlock()
	return st
}

// ComponentType implements introspection.Component.
func (s *Storage) ComponentType() string {
	return "bolt"
}

var _ core.Storage = (*Storage)(nil)
var _ introspection.Introspectable = (*Storage)(nil)
var _ introspection.Component = (*Storage)(nil)
