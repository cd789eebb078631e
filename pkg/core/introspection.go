package core

import (
	"fmt"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Key         string `json:"key"`
	Notes       int    `json:"notes"`
	StorageType string `json:"storage_type"`
	Codec       string `json:"codec"`
	Subscribers int    `json:"subscribers"`
	Watching    bool   `json:"watching"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	storageType := fmt.Sprintf("%T", s.storage)
	if comp, ok := s.storage.(introspection.Component); ok {
		storageType = comp.ComponentType()
	}

	codecName := fmt.Sprintf("%T", s.codec)
	if named, ok := s.codec.(interface{ Name() string }); ok {
		codecName = named.Name()
	}

	return StoreState{
		Key:         s.key,
		Notes:       len(s.notes),
		StorageType: storageType,
		Codec:       codecName,
		Subscribers: s.broker.count(),
		Watching:    s.watching,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
