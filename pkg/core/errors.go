package core

import "errors"

// Common errors.
var (
	ErrNotFound        = errors.New("note not found")
	ErrNotVisible      = errors.New("note is not in the visible set")
	ErrNotEditing      = errors.New("no edit in progress")
	ErrEditing         = errors.New("an edit is in progress")
	ErrPersistence     = errors.New("failed to persist notes")
	ErrReadOnly        = errors.New("storage is in read-only mode")
	ErrDeserialization = errors.New("stored notes could not be decoded")
	ErrTooLong         = errors.New("input exceeds limit")
)
