package core

import (
	"fmt"
	"unicode/utf8"
)

// DefaultTitle replaces a blank title when a note is created.
const DefaultTitle = "Untitled"

// Input limits enforced by the surfaces that collect note text (CLI, TUI).
// The Store itself accepts any length.
const (
	MaxTitleLength = 120
	MaxBodyLength  = 5000
)

// Note is the central entity of the domain: a titled block of free text.
// Timestamps are milliseconds since the Unix epoch.
type Note struct {
	ID      string `json:"id" yaml:"id"`
	Title   string `json:"title" yaml:"title"`
	Body    string `json:"body" yaml:"body"`
	Created int64  `json:"created" yaml:"created"`
	Updated int64  `json:"updated" yaml:"updated"`
}

// CheckLimits reports ErrTooLong when title or body exceed the input limits.
func CheckLimits(title, body string) error {
	if n := utf8.RuneCountInString(title); n > MaxTitleLength {
		return fmt.Errorf("%w: title has %d characters (max %d)", ErrTooLong, n, MaxTitleLength)
	}
	if n := utf8.RuneCountInString(body); n > MaxBodyLength {
		return fmt.Errorf("%w: body has %d characters (max %d)", ErrTooLong, n, MaxBodyLength)
	}
	return nil
}

func indexOf(notes []Note, id string) int {
	for i, n := range notes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// clone copies a note slice. It never returns nil so empty collections
// encode as [] rather than null.
func clone(notes []Note) []Note {
	out := make([]Note, len(notes))
	copy(out, notes)
	return out
}
