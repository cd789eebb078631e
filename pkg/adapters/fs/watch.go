package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/pocket/pkg/core"
)

// Watch reports changes to key's file made by other processes. Writes done
// through this Storage are recognized by content hash and not reported.
// The returned channel is closed when ctx is done.
func (s *Storage) Watch(ctx context.Context, key string) (<-chan core.Event, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory: editors and atomic writers replace the file.
	if err := watcher.Add(s.Path); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", s.Path, err)
	}

	events := make(chan core.Event, 16)
	s.setWatcherActive(true)

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(events)
		defer s.setWatcherActive(false)
		defer watcher.Close()
		return s.watchLoop(ctx, watcher, key, events)
	}, lifecycle.WithErrorHandler(func(err error) {
		s.reportError(fmt.Errorf("watcher stopped: %w", err))
	}))

	return events, nil
}

func (s *Storage) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, key string, events chan<- core.Event) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if s.config.Logger != nil && s.config.Logger.Enabled(ctx, slog.LevelDebug) {
				s.config.Logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			}
		}
	}()

	target := filepath.Base(s.Filename(key))
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if !s.changedExternally(key, event) {
				continue
			}

			select {
			case events <- core.Event{Type: core.EventReload, ID: key, Timestamp: time.Now().UnixMilli()}:
			case <-ctx.Done():
				return nil
			}

		case wErr, ok := <-watcher.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			s.reportError(wErr)
		}
	}
}

// changedExternally reads the file behind a filesystem event and reports
// whether its content differs from what this Storage last saw.
func (s *Storage) changedExternally(key string, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	data, err := os.ReadFile(s.Filename(key))
	if os.IsNotExist(err) {
		s.mu.RLock()
		_, known := s.hashes[key]
		s.mu.RUnlock()
		s.forgetHash(key)
		return known
	}
	if err != nil {
		s.reportError(fmt.Errorf("failed to read %s after change: %w", key, err))
		return false
	}

	if s.seen(key, data) {
		return false
	}
	s.rememberHash(key, data)
	if s.config.Logger != nil {
		s.config.Logger.Debug("external change detected", "key", key, "op", event.Op.String())
	}
	return true
}

func (s *Storage) reportError(err error) {
	if s.config.Logger != nil {
		s.config.Logger.Error("fsnotify error", "error", err)
	}
	if s.config.ErrorHandler != nil {
		s.config.ErrorHandler(err)
	}
}

func (s *Storage) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}
