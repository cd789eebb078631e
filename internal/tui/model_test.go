package tui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/pocket/pkg/codec"
	"github.com/aretw0/pocket/pkg/core"
	"github.com/aretw0/pocket/pkg/idgen"
	"github.com/aretw0/pocket/pkg/prefs"
)

type memStorage struct {
	mu       sync.Mutex
	data     map[string][]byte
	writeErr error
}

func (m *memStorage) Read(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
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

func newTestModel(t *testing.T, titles ...string) (*Model, *memStorage) {
	t.Helper()
	ctx := context.Background()
	mem := &memStorage{data: map[string][]byte{}}

	clock := time.UnixMilli(1700000000000)
	store := core.NewStore(mem, codec.JSON{}, idgen.UUID{}, core.WithClock(func() time.Time { return clock }))
	store.Load(ctx)
	// Created in reverse so the first title ends up on top.
	for i := len(titles) - 1; i >= 0; i-- {
		_, err := store.Create(ctx, titles[i], "body of "+titles[i])
		require.NoError(t, err)
	}

	m := New(ctx, core.NewSession(store), prefs.NewStore(mem, nil))
	return m, mem
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m *Model, msgs ...tea.Msg) {
	for _, msg := range msgs {
		m.Update(msg)
	}
}

func TestModel_CreateNote(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, runes("n"))
	assert.Equal(t, core.ModeEditing, m.session.Mode())
	assert.Equal(t, focusTitle, m.focus)

	press(m, runes("Groceries"), tea.KeyMsg{Type: tea.KeyTab}, runes("milk"))
	assert.Equal(t, focusBody, m.focus)

	press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NoError(t, m.err)
	assert.Equal(t, focusList, m.focus)
	assert.Equal(t, core.ModeSelected, m.session.Mode())

	n, ok := m.session.Current()
	require.True(t, ok)
	assert.Equal(t, "Groceries", n.Title)
	assert.Equal(t, "milk", n.Body)
	assert.Contains(t, m.View(), "Groceries")
}

func TestModel_CancelKeepsCollection(t *testing.T) {
	m, _ := newTestModel(t, "Only")

	press(m, runes("j"), runes("e"), runes(" changed"), tea.KeyMsg{Type: tea.KeyEsc})

	assert.Equal(t, focusList, m.focus)
	n, ok := m.session.Current()
	require.True(t, ok)
	assert.Equal(t, "Only", n.Title)
}

func TestModel_EditRequiresSelection(t *testing.T) {
	m, _ := newTestModel(t, "A")

	press(m, runes("e"))
	assert.True(t, errors.Is(m.err, core.ErrNotFound), "got %v", m.err)
	assert.Equal(t, focusList, m.focus)
}

func TestModel_NavigateAndDelete(t *testing.T) {
	m, _ := newTestModel(t, "A", "B", "C")

	press(m, runes("j"), runes("j"))
	n, _ := m.session.Current()
	assert.Equal(t, "B", n.Title)

	press(m, runes("d"))
	require.NoError(t, m.err)
	n, ok := m.session.Current()
	require.True(t, ok)
	assert.Equal(t, "C", n.Title, "selection moves to the note now at the same position")

	press(m, runes("k"))
	n, _ = m.session.Current()
	assert.Equal(t, "A", n.Title)
}

func TestModel_Search(t *testing.T) {
	m, _ := newTestModel(t, "Groceries", "Ideas", "grocery list")

	press(m, runes("/"), runes("groc"))
	assert.Equal(t, "groc", m.session.Query())
	assert.Len(t, m.session.Visible(), 2)

	press(m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, focusList, m.focus)
	assert.Equal(t, "groc", m.session.Query(), "enter keeps the query")

	press(m, runes("/"), tea.KeyMsg{Type: tea.KeyEsc})
	assert.Empty(t, m.session.Query())
	assert.Len(t, m.session.Visible(), 3)
}

func TestModel_SaveClearsHidingSearch(t *testing.T) {
	m, _ := newTestModel(t, "Groceries", "Ideas")

	press(m, runes("/"), runes("groc"), tea.KeyMsg{Type: tea.KeyEnter})
	press(m, runes("n"), runes("Trip"), tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NoError(t, m.err)

	assert.Empty(t, m.session.Query())
	assert.Empty(t, m.search.Value(), "search input follows the cleared query")
	n, ok := m.session.Current()
	require.True(t, ok)
	assert.Equal(t, "Trip", n.Title)
}

func TestModel_ThemeToggle(t *testing.T) {
	m, mem := newTestModel(t)
	assert.Equal(t, prefs.Light, m.theme)

	press(m, runes("t"))
	assert.Equal(t, prefs.Dark, m.theme)
	assert.JSONEq(t, `{"theme":"dark"}`, string(mem.data[prefs.ThemeKey]))
}

func TestModel_CopyBody(t *testing.T) {
	m, _ := newTestModel(t, "A")
	var copied string
	m.copyFn = func(s string) error {
		copied = s
		return nil
	}

	press(m, runes("y"))
	assert.ErrorIs(t, m.err, errNothingSelected)

	press(m, runes("j"), runes("y"))
	require.NoError(t, m.err)
	assert.Equal(t, "body of A", copied)
}

func TestModel_SaveFailureKeepsDraft(t *testing.T) {
	m, mem := newTestModel(t)
	mem.writeErr = errors.New("quota exceeded")

	press(m, runes("n"), runes("Lost?"), tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.True(t, errors.Is(m.err, core.ErrPersistence), "got %v", m.err)
	assert.Equal(t, core.ModeEditing, m.session.Mode())
	assert.Equal(t, focusTitle, m.focus)
	assert.Equal(t, "Lost?", m.title.Value())
}

func TestModel_StoreEventsRefresh(t *testing.T) {
	events := make(chan core.Event, 1)
	m, _ := newTestModel(t, "A")
	m.events = events

	events <- core.Event{Type: core.EventReload}
	msg := m.Init()()
	_, cmd := m.Update(msg)
	assert.NotNil(t, cmd, "keeps listening")
	assert.Contains(t, m.status, "reloaded")

	close(events)
	assert.Equal(t, eventsClosedMsg{}, cmd())
}

func TestModel_Quit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_Resize(t *testing.T) {
	m, _ := newTestModel(t, "A very long title that will not fit into a narrow sidebar at all")
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	press(m, runes("j"))

	view := m.View()
	assert.Contains(t, view, "…")
}
