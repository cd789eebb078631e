package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/aretw0/pocket/pkg/core"
	"github.com/aretw0/pocket/pkg/git"
)

// Storage implements core.Storage with one file per key inside a directory.
// Writes are atomic (temp file + rename) and optionally committed to Git.
type Storage struct {
	Path   string
	git    *git.Client
	config Config

	mu            sync.RWMutex
	hashes        map[string]uint64 // last content seen per key, to ignore our own writes
	watcherActive bool
	lastWrite     *time.Time
}

// Config holds the configuration for the filesystem storage.
type Config struct {
	Path         string
	Ext          string // file extension for blobs, e.g. ".json"
	MustExist    bool
	ReadOnly     bool
	Versioned    bool // commit every write to Git
	AutoInit     bool // git init when Versioned and the directory is not a repository
	Logger       *slog.Logger
	ErrorHandler func(error) // receives watcher failures
}

// NewStorage creates a new filesystem-backed storage.
func NewStorage(config Config) *Storage {
	if config.Ext == "" {
		config.Ext = ".json"
	}
	if !strings.HasPrefix(config.Ext, ".") {
		config.Ext = "." + config.Ext
	}
	return &Storage{
		Path:   config.Path,
		git:    git.NewClient(config.Path, config.Logger),
		config: config,
		hashes: make(map[string]uint64),
	}
}

// Initialize prepares the directory (and the Git repository when versioned).
func (s *Storage) Initialize(ctx context.Context) error {
	if s.config.MustExist || s.config.ReadOnly {
		info, err := os.Stat(s.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("notes directory does not exist: %s", s.Path)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("notes path is not a directory: %s", s.Path)
		}
	} else if err := os.MkdirAll(s.Path, 0755); err != nil {
		return fmt.Errorf("failed to create notes directory: %w", err)
	}

	if !s.config.Versioned || s.config.ReadOnly {
		return nil
	}

	if !git.IsInstalled() {
		return fmt.Errorf("git is not installed")
	}
	if !s.git.IsRepo() {
		if !s.config.AutoInit {
			return fmt.Errorf("path is not a git repository: %s", s.Path)
		}
		if err := s.git.Init(); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
	}
	return nil
}

// Filename returns the file that holds key.
func (s *Storage) Filename(key string) string {
	return filepath.Join(s.Path, key+s.config.Ext)
}

func validateKey(key string) error {
	if key == "" {
		return errors.New("storage key is empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return fmt.Errorf("invalid storage key %q", key)
	}
	return nil
}

// Read returns the contents of the key's file.
func (s *Storage) Read(ctx context.Context, key string) ([]byte, bool, error) {
	if err := validateKey(key); err != nil {
		return nil, false, err
	}

	data, err := os.ReadFile(s.Filename(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	s.rememberHash(key, data)
	return data, true, nil
}

// Write atomically replaces the key's file. When versioned, the change is
// committed with the reason found under core.ChangeReasonKey; if the commit
// fails the previous content is restored so the file matches the history.
func (s *Storage) Write(ctx context.Context, key string, blob []byte) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := validateKey(key); err != nil {
		return err
	}

	if !s.config.Versioned {
		return s.writeFile(key, blob)
	}

	msg := "update " + key
	if val, ok := ctx.Value(core.ChangeReasonKey).(string); ok && val != "" {
		msg = val
	}

	unlock, err := s.git.Lock()
	if err != nil {
		return fmt.Errorf("failed to acquire git lock: %w", err)
	}
	defer unlock()

	filename := s.Filename(key)
	prev, err := os.ReadFile(filename)
	existed := err == nil
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := s.writeFile(key, blob); err != nil {
		return err
	}
	if err := s.commit(filepath.Base(filename), msg); err != nil {
		if rErr := s.restore(key, prev, existed); rErr != nil {
			return errors.Join(err, fmt.Errorf("failed to restore %s: %w", key, rErr))
		}
		return err
	}
	return nil
}

func (s *Storage) writeFile(key string, blob []byte) error {
	s.rememberHash(key, blob)
	if err := writeFileAtomic(s.Filename(key), blob, 0644); err != nil {
		return err
	}
	s.recordWrite()
	return nil
}

// restore puts back the content key had before a failed versioned write.
// Callers hold the git lock.
func (s *Storage) restore(key string, prev []byte, existed bool) error {
	filename := s.Filename(key)
	if err := s.git.Unstage(filepath.Base(filename)); err != nil && s.config.Logger != nil {
		s.config.Logger.Warn("failed to unstage after commit failure", "key", key, "error", err)
	}
	if !existed {
		s.forgetHash(key)
		if err := os.Remove(filename); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	s.rememberHash(key, prev)
	return writeFileAtomic(filename, prev, 0644)
}

// commit stages and commits file. Callers hold the git lock.
func (s *Storage) commit(file, msg string) error {
	if err := s.git.Add(file); err != nil {
		return err
	}
	changed, err := s.git.HasStagedChanges()
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	if err := s.git.Commit(git.AppendFooter(msg)); err != nil {
		return fmt.Errorf("failed to commit %s: %w", file, err)
	}
	return nil
}

func (s *Storage) rememberHash(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hashes[key] = xxhash.Sum64(data)
}

// seen reports whether data matches the last content read or written for key.
func (s *Storage) seen(key string, data []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hashes[key]
	return ok && h == xxhash.Sum64(data)
}

func (s *Storage) forgetHash(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hashes, key)
}

func (s *Storage) recordWrite() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.lastWrite = &now
}
