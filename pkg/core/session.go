package core

import (
	"context"
	"fmt"
)

// Mode is the state of a Session's selection state machine.
type Mode int

const (
	ModeNone Mode = iota
	ModeSelected
	ModeEditing
)

func (m Mode) String() string {
	switch m {
	case ModeSelected:
		return "selected"
	case ModeEditing:
		return "editing"
	default:
		return "none"
	}
}

// Draft holds uncommitted title/body input. An empty ID means a new note.
type Draft struct {
	ID    string
	Title string
	Body  string
}

// IsNew reports whether saving the draft creates a note.
func (d Draft) IsNew() bool {
	return d.ID == ""
}

// Session holds the view state around a Store: the search query, the
// selection and the edit draft. Selection is re-derived after every query
// change and mutation so it always points at a visible note, or at nothing.
type Session struct {
	store      *Store
	query      string
	selectedID string
	draft      *Draft
}

// NewSession starts with no query, no selection and no draft.
func NewSession(store *Store) *Session {
	return &Session{store: store}
}

// Store returns the underlying store.
func (s *Session) Store() *Store {
	return s.store
}

// Mode reports the current state.
func (s *Session) Mode() Mode {
	switch {
	case s.draft != nil:
		return ModeEditing
	case s.selectedID != "":
		return ModeSelected
	default:
		return ModeNone
	}
}

// Query returns the active search query.
func (s *Session) Query() string {
	return s.query
}

// SetQuery changes the search query and re-derives the selection.
func (s *Session) SetQuery(query string) {
	s.query = query
	s.reconcile()
}

// Visible returns the notes matching the active query.
func (s *Session) Visible() []Note {
	return s.store.Search(s.query)
}

// SelectedID returns the raw selection, empty when nothing is selected.
func (s *Session) SelectedID() string {
	return s.selectedID
}

// Current returns the selected note.
func (s *Session) Current() (Note, bool) {
	return ResolveSelection(s.selectedID, s.Visible())
}

// Select points the selection at a visible note.
func (s *Session) Select(id string) error {
	if s.draft != nil {
		return ErrEditing
	}
	if indexOf(s.Visible(), id) < 0 {
		return fmt.Errorf("%w: %s", ErrNotVisible, id)
	}
	s.selectedID = id
	return nil
}

// ClearSelection returns to the no-selection state.
func (s *Session) ClearSelection() {
	if s.draft == nil {
		s.selectedID = ""
	}
}

// MoveCursor moves the selection delta steps through the visible list,
// clamped to its bounds.
func (s *Session) MoveCursor(delta int) {
	if s.draft != nil {
		return
	}
	visible := s.Visible()
	if len(visible) == 0 {
		s.selectedID = ""
		return
	}

	target := indexOf(visible, s.selectedID) + delta
	if s.selectedID == "" && delta > 0 {
		target = delta - 1
	}
	target = max(0, min(target, len(visible)-1))
	s.selectedID = visible[target].ID
}

// BeginEdit captures the selected note as a draft.
func (s *Session) BeginEdit() (Draft, error) {
	if s.draft != nil {
		return Draft{}, ErrEditing
	}
	n, ok := s.Current()
	if !ok {
		return Draft{}, fmt.Errorf("%w: nothing selected", ErrNotFound)
	}
	s.draft = &Draft{ID: n.ID, Title: n.Title, Body: n.Body}
	return *s.draft, nil
}

// BeginCreate starts an empty draft for a new note.
func (s *Session) BeginCreate() (Draft, error) {
	if s.draft != nil {
		return Draft{}, ErrEditing
	}
	s.draft = &Draft{}
	return *s.draft, nil
}

// Draft returns the draft being edited.
func (s *Session) Draft() (Draft, bool) {
	if s.draft == nil {
		return Draft{}, false
	}
	return *s.draft, true
}

// SetDraft replaces the draft's title and body.
func (s *Session) SetDraft(title, body string) error {
	if s.draft == nil {
		return ErrNotEditing
	}
	s.draft.Title = title
	s.draft.Body = body
	return nil
}

// Cancel discards the draft and returns to the prior selection.
func (s *Session) Cancel() {
	s.draft = nil
	s.reconcile()
}

// Save commits the draft through Create or Update and selects the result.
// When the active query would hide the saved note, the query is cleared.
// On failure the draft is kept so the input is not lost.
func (s *Session) Save(ctx context.Context) (Note, error) {
	if s.draft == nil {
		return Note{}, ErrNotEditing
	}

	var (
		n   Note
		err error
	)
	if s.draft.IsNew() {
		n, err = s.store.Create(ctx, s.draft.Title, s.draft.Body)
	} else {
		n, err = s.store.Update(ctx, s.draft.ID, s.draft.Title, s.draft.Body)
	}
	if err != nil {
		return Note{}, err
	}

	s.draft = nil
	s.selectedID = n.ID
	if indexOf(s.Visible(), n.ID) < 0 {
		s.query = ""
	}
	s.reconcile()
	return n, nil
}

// Delete removes a note. When it was selected, the selection moves to the
// note that now holds its position in the visible list, else the one before.
func (s *Session) Delete(ctx context.Context, id string) error {
	visible := s.Visible()
	wasSelected := id != "" && id == s.selectedID

	if _, err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if s.draft != nil && s.draft.ID == id {
		s.draft = nil
	}
	if wasSelected {
		s.selectedID, _ = NeighborAfterDelete(visible, id)
	}
	s.reconcile()
	return nil
}

// DeleteSelected deletes the selected note.
func (s *Session) DeleteSelected(ctx context.Context) error {
	if s.selectedID == "" {
		return fmt.Errorf("%w: nothing selected", ErrNotFound)
	}
	return s.Delete(ctx, s.selectedID)
}

// Refresh re-derives the selection, e.g. after the store reloaded.
func (s *Session) Refresh() {
	s.reconcile()
}

func (s *Session) reconcile() {
	n, ok := ResolveSelection(s.selectedID, s.Visible())
	if !ok {
		s.selectedID = ""
		return
	}
	s.selectedID = n.ID
}
