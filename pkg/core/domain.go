package core

import (
	"fmt"
	"time"
)

// StorageKey is the fixed logical key the note collection lives under.
const StorageKey = "personal_notes_v1"

// EventType represents the type of change in the collection.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
	// EventReload signals the stored blob changed outside this process and
	// the collection was re-read. ID carries the storage key.
	EventReload EventType = "RELOAD"
)

// Event represents a change in the collection.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix milliseconds
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s at %s", e.Type, e.ID, time.UnixMilli(e.Timestamp).Format(time.RFC3339))
}

type contextKey string

// ChangeReasonKey is the context key for passing a change reason (e.g. a
// commit message) to storage adapters during writes.
const ChangeReasonKey contextKey = "change_reason"
