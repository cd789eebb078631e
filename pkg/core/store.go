package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
)

// maxIDAttempts bounds how often Create asks the generator for a fresh id
// when it collides with an existing note.
const maxIDAttempts = 8

// Store owns the authoritative, ordered note collection.
// Every mutation rewrites the whole collection through the Storage port.
type Store struct {
	mu       sync.RWMutex
	storage  Storage
	codec    Codec
	ids      IDGenerator
	key      string
	now      func() time.Time
	logger   *slog.Logger
	notes    []Note
	broker   *broker
	watching bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKey overrides the storage key (defaults to StorageKey).
func WithKey(key string) StoreOption {
	return func(s *Store) {
		s.key = key
	}
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithEventBuffer sets the per-subscriber event buffer. Zero means default (100).
func WithEventBuffer(size int) StoreOption {
	return func(s *Store) {
		if size > 0 {
			s.broker.size = size
		}
	}
}

// NewStore creates an empty Store. Call Load to read the persisted collection.
func NewStore(storage Storage, codec Codec, ids IDGenerator, opts ...StoreOption) *Store {
	s := &Store{
		storage: storage,
		codec:   codec,
		ids:     ids,
		key:     StorageKey,
		now:     time.Now,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		notes:   []Note{},
		broker:  newBroker(100),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.broker.logger = s.logger
	return s
}

// Load reads the collection from storage. It never fails: a missing,
// unreadable or corrupt blob yields an empty collection.
func (s *Store) Load(ctx context.Context) []Note {
	notes, err := s.read(ctx)
	if err != nil {
		s.logger.Warn("starting with an empty collection", "key", s.key, "error", err)
		notes = []Note{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = notes
	s.logger.Debug("notes loaded", "key", s.key, "count", len(notes))
	return clone(notes)
}

// read fetches and decodes the stored blob. Absence is not an error.
func (s *Store) read(ctx context.Context) ([]Note, error) {
	blob, ok, err := s.storage.Read(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	if !ok || len(bytes.TrimSpace(blob)) == 0 {
		return []Note{}, nil
	}

	notes, err := s.codec.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeserialization, err)
	}
	return s.sanitize(notes), nil
}

// sanitize drops entries that would break id uniqueness.
func (s *Store) sanitize(notes []Note) []Note {
	seen := make(map[string]struct{}, len(notes))
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if n.ID == "" {
			s.logger.Warn("dropping stored note without id", "title", n.Title)
			continue
		}
		if _, dup := seen[n.ID]; dup {
			s.logger.Warn("dropping stored note with duplicate id", "id", n.ID)
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, n)
	}
	return out
}

// persist encodes and writes the given collection. Callers hold s.mu.
func (s *Store) persist(ctx context.Context, notes []Note, reason string) error {
	blob, err := s.codec.Encode(notes)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrPersistence, err)
	}

	if val, ok := ctx.Value(ChangeReasonKey).(string); !ok || val == "" {
		ctx = context.WithValue(ctx, ChangeReasonKey, reason)
	}

	if err := s.storage.Write(ctx, s.key, blob); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

// Create adds a note at the front of the collection.
// Title and body are trimmed; a blank title becomes DefaultTitle.
func (s *Store) Create(ctx context.Context, title, body string) (Note, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" {
		title = DefaultTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.ids.Next()
	for attempt := 1; indexOf(s.notes, id) >= 0; attempt++ {
		if attempt >= maxIDAttempts {
			return Note{}, fmt.Errorf("id generator keeps returning existing id %q", id)
		}
		id = s.ids.Next()
	}

	ts := s.now().UnixMilli()
	n := Note{ID: id, Title: title, Body: body, Created: ts, Updated: ts}

	next := make([]Note, 0, len(s.notes)+1)
	next = append(next, n)
	next = append(next, s.notes...)

	if err := s.persist(ctx, next, "create note "+id); err != nil {
		return Note{}, err
	}
	s.notes = next

	s.logger.Debug("note created", "id", id)
	s.broker.publish(Event{Type: EventCreate, ID: id, Timestamp: ts})
	return n, nil
}

// Update replaces the title and body of an existing note and refreshes its
// updated timestamp. Unlike Create, the values are stored as given.
func (s *Store) Update(ctx context.Context, id, title, body string) (Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.notes, id)
	if i < 0 {
		return Note{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	n := s.notes[i]
	ts := s.now().UnixMilli()
	if ts < n.Updated {
		ts = n.Updated
	}
	n.Title = title
	n.Body = body
	n.Updated = ts

	next := clone(s.notes)
	next[i] = n

	if err := s.persist(ctx, next, "update note "+id); err != nil {
		return Note{}, err
	}
	s.notes = next

	s.logger.Debug("note updated", "id", id)
	s.broker.publish(Event{Type: EventModify, ID: id, Timestamp: ts})
	return n, nil
}

// Delete removes a note and returns the resulting collection.
// Deleting an absent id changes nothing and writes nothing.
func (s *Store) Delete(ctx context.Context, id string) ([]Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.notes, id)
	if i < 0 {
		return clone(s.notes), nil
	}

	next := make([]Note, 0, len(s.notes)-1)
	next = append(next, s.notes[:i]...)
	next = append(next, s.notes[i+1:]...)

	if err := s.persist(ctx, next, "delete note "+id); err != nil {
		return nil, err
	}
	s.notes = next

	s.logger.Debug("note deleted", "id", id)
	s.broker.publish(Event{Type: EventDelete, ID: id, Timestamp: s.now().UnixMilli()})
	return clone(next), nil
}

// Search returns the notes whose title or body contains query,
// ignoring case. A blank query returns the whole collection.
func (s *Store) Search(query string) []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Filter(s.notes, query)
}

// Match returns the notes whose title matches a glob pattern, ignoring case.
func (s *Store) Match(pattern string) ([]Note, error) {
	pattern = strings.ToLower(pattern)
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("%w: %q", doublestar.ErrBadPattern, pattern)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Note, 0, len(s.notes))
	for _, n := range s.notes {
		ok, err := doublestar.Match(pattern, strings.ToLower(n.Title))
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// Get returns the note with the given id.
func (s *Store) Get(id string) (Note, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := indexOf(s.notes, id); i >= 0 {
		return s.notes[i], true
	}
	return Note{}, false
}

// Notes returns a copy of the collection in display order.
func (s *Store) Notes() []Note {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.notes)
}

// Len returns the number of notes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

// Filter applies the search rule to an arbitrary collection.
func Filter(notes []Note, query string) []Note {
	if strings.TrimSpace(query) == "" {
		return clone(notes)
	}

	q := strings.ToLower(query)
	out := make([]Note, 0, len(notes))
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), q) || strings.Contains(strings.ToLower(n.Body), q) {
			out = append(out, n)
		}
	}
	return out
}

// Watch streams collection events until ctx is done.
// Local mutations are always reported. When the storage implements Watcher,
// changes written by other processes trigger a reload and an EventReload.
func (s *Store) Watch(ctx context.Context) (<-chan Event, error) {
	if w, ok := s.storage.(Watcher); ok {
		if err := s.startUpstream(ctx, w); err != nil {
			return nil, err
		}
	}
	return s.broker.subscribe(ctx), nil
}

func (s *Store) startUpstream(ctx context.Context, w Watcher) error {
	s.mu.Lock()
	if s.watching {
		s.mu.Unlock()
		return nil
	}
	s.watching = true
	s.mu.Unlock()

	upstream, err := w.Watch(ctx, s.key)
	if err != nil {
		s.setWatching(false)
		return fmt.Errorf("failed to watch %s: %w", s.key, err)
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer s.setWatching(false)
		for {
			select {
			case <-ctx.Done():
				return nil
			case _, ok := <-upstream:
				if !ok {
					return nil
				}
				s.reload(ctx)
			}
		}
	}, lifecycle.WithErrorHandler(func(err error) {
		s.logger.Error("store watch loop failed", "error", err)
	}))
	return nil
}

func (s *Store) setWatching(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watching = active
}

// reload re-reads the collection after an external change. Unlike Load, an
// undecodable blob keeps the current collection. The read happens under the
// write lock so a local mutation cannot persist between read and assignment.
func (s *Store) reload(ctx context.Context) {
	s.mu.Lock()
	notes, err := s.read(ctx)
	if err != nil {
		s.mu.Unlock()
		s.logger.Warn("ignoring external change", "key", s.key, "error", err)
		return
	}
	s.notes = notes
	s.mu.Unlock()

	s.logger.Debug("notes reloaded", "key", s.key, "count", len(notes))
	s.broker.publish(Event{Type: EventReload, ID: s.key, Timestamp: s.now().UnixMilli()})
}
