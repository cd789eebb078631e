// Package prefs persists user preferences next to the note collection.
package prefs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/pocket/pkg/core"
)

// ThemeKey is the storage key holding the theme.
const ThemeKey = "personal_notes_theme"

// Theme is the color scheme of interactive views.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

func (t Theme) String() string {
	return string(t)
}

// ParseTheme accepts "light" or "dark", ignoring case and surrounding space.
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", fmt.Errorf("unknown theme %q (want light or dark)", s)
}

// document is the stored form of the preferences. It is written as a JSON
// object, which YAML readers accept too, so the value reads correctly from a
// .json or a .yaml file.
type document struct {
	Theme string `json:"theme" yaml:"theme"`
}

func encode(t Theme) ([]byte, error) {
	return json.Marshal(document{Theme: string(t)})
}

// decode accepts a document in either format and falls back to a bare
// theme name.
func decode(blob []byte) (Theme, error) {
	var doc document
	if err := yaml.Unmarshal(blob, &doc); err == nil && doc.Theme != "" {
		return ParseTheme(doc.Theme)
	}
	return ParseTheme(string(blob))
}

// Store reads and writes preferences through a core.Storage.
type Store struct {
	storage core.Storage
	logger  *slog.Logger
}

// NewStore creates a preference store. A nil logger discards output.
func NewStore(storage core.Storage, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{storage: storage, logger: logger}
}

// Theme returns the stored theme. Missing or unreadable values yield Light.
func (s *Store) Theme(ctx context.Context) Theme {
	blob, ok, err := s.storage.Read(ctx, ThemeKey)
	if err != nil {
		s.logger.Warn("failed to read theme", "error", err)
		return Light
	}
	if !ok {
		return Light
	}
	t, err := decode(blob)
	if err != nil {
		s.logger.Warn("ignoring stored theme", "error", err)
		return Light
	}
	return t
}

// SetTheme stores t.
func (s *Store) SetTheme(ctx context.Context, t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	blob, err := encode(t)
	if err != nil {
		return fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	ctx = context.WithValue(ctx, core.ChangeReasonKey, "set theme "+string(t))
	if err := s.storage.Write(ctx, ThemeKey, blob); err != nil {
		return fmt.Errorf("%w: %w", core.ErrPersistence, err)
	}
	return nil
}

// ToggleTheme flips the stored theme and returns the new value.
func (s *Store) ToggleTheme(ctx context.Context) (Theme, error) {
	next := s.Theme(ctx).Toggle()
	if err := s.SetTheme(ctx, next); err != nil {
		return s.Theme(ctx), err
	}
	return next, nil
}
