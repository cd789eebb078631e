package core_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/pocket/pkg/codec"
	"github.com/aretw0/pocket/pkg/core"
)

// memStorage implements core.Storage in memory, like a browser's localStorage.
type memStorage struct {
	mu       sync.Mutex
	data     map[string][]byte
	writes   int
	reasons  []string
	writeErr error
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string][]byte)}
}

func (m *memStorage) Read(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), blob...), true, nil
}

func (m *memStorage) Write(ctx context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.data[key] = append([]byte(nil), blob...)
	m.writes++
	if reason, ok := ctx.Value(core.ChangeReasonKey).(string); ok {
		m.reasons = append(m.reasons, reason)
	}
	return nil
}

func (m *memStorage) set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = []byte(value)
}

func (m *memStorage) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// seqIDs hands out id-1, id-2, ...
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.UnixMilli(1700000000000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestStore(storage core.Storage, clock *fakeClock) *core.Store {
	return core.NewStore(storage, codec.JSON{}, &seqIDs{}, core.WithClock(clock.Now))
}
