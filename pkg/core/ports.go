package core

import "context"

// Storage is the persistence boundary: a key-value store holding whole blobs.
// Implementations must overwrite the full value on Write.
type Storage interface {
	// Read returns the blob stored under key. ok is false when nothing is stored.
	Read(ctx context.Context, key string) (blob []byte, ok bool, err error)

	// Write replaces the blob stored under key.
	Write(ctx context.Context, key string, blob []byte) error
}

// Watcher is implemented by storages that can report changes made to a key
// by other processes.
type Watcher interface {
	Watch(ctx context.Context, key string) (<-chan Event, error)
}

// Codec converts the note collection to and from its stored form.
type Codec interface {
	Encode(notes []Note) ([]byte, error)
	Decode(blob []byte) ([]Note, error)
}

// IDGenerator produces identifiers unique within a running session.
type IDGenerator interface {
	Next() string
}
