package prefs_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pocket/pkg/core"
	"github.com/aretw0/pocket/pkg/prefs"
)

type memStorage struct {
	mu       sync.Mutex
	data     map[string][]byte
	readErr  error
	writeErr error
}

func (m *memStorage) Read(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, false, m.readErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStorage) Write(ctx context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.data[key] = blob
	return nil
}

func TestParseTheme(t *testing.T) {
	tests := []struct {
		in      string
		want    prefs.Theme
		wantErr bool
	}{
		{"light", prefs.Light, false},
		{" Dark\n", prefs.Dark, false},
		{"solarized", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := prefs.ParseTheme(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestToggle(t *testing.T) {
	assert.Equal(t, prefs.Dark, prefs.Light.Toggle())
	assert.Equal(t, prefs.Light, prefs.Dark.Toggle())
}

func TestStore_Theme(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults To Light", func(t *testing.T) {
		s := prefs.NewStore(&memStorage{data: map[string][]byte{}}, nil)
		assert.Equal(t, prefs.Light, s.Theme(ctx))
	})

	t.Run("Ignores Garbage", func(t *testing.T) {
		s := prefs.NewStore(&memStorage{data: map[string][]byte{prefs.ThemeKey: []byte("neon")}}, nil)
		assert.Equal(t, prefs.Light, s.Theme(ctx))
	})

	t.Run("Reads Every Stored Form", func(t *testing.T) {
		for _, blob := range []string{`{"theme":"dark"}`, "theme: dark\n", "dark"} {
			s := prefs.NewStore(&memStorage{data: map[string][]byte{prefs.ThemeKey: []byte(blob)}}, nil)
			assert.Equal(t, prefs.Dark, s.Theme(ctx), blob)
		}
	})

	t.Run("Read Failure Falls Back", func(t *testing.T) {
		s := prefs.NewStore(&memStorage{readErr: errors.New("boom")}, nil)
		assert.Equal(t, prefs.Light, s.Theme(ctx))
	})

	t.Run("Toggle Persists", func(t *testing.T) {
		mem := &memStorage{data: map[string][]byte{}}
		s := prefs.NewStore(mem, nil)

		got, err := s.ToggleTheme(ctx)
		require.NoError(t, err)
		assert.Equal(t, prefs.Dark, got)
		assert.JSONEq(t, `{"theme":"dark"}`, string(mem.data[prefs.ThemeKey]))

		got, err = s.ToggleTheme(ctx)
		require.NoError(t, err)
		assert.Equal(t, prefs.Light, got)
	})

	t.Run("Write Failure Keeps Old Theme", func(t *testing.T) {
		mem := &memStorage{data: map[string][]byte{}, writeErr: errors.New("disk full")}
		s := prefs.NewStore(mem, nil)

		got, err := s.ToggleTheme(ctx)
		assert.True(t, errors.Is(err, core.ErrPersistence), "got %v", err)
		assert.Equal(t, prefs.Light, got)
	})

	t.Run("Rejects Unknown Theme", func(t *testing.T) {
		s := prefs.NewStore(&memStorage{data: map[string][]byte{}}, nil)
		assert.Error(t, s.SetTheme(ctx, prefs.Theme("neon")))
	})
}
