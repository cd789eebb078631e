package core

// ResolveSelection derives the note to show from the raw selection and the
// visible set. A selected note that is still visible stays selected; one that
// dropped out falls back to the first visible note. No selection stays none.
func ResolveSelection(selectedID string, visible []Note) (Note, bool) {
	if selectedID == "" {
		return Note{}, false
	}
	if i := indexOf(visible, selectedID); i >= 0 {
		return visible[i], true
	}
	if len(visible) > 0 {
		return visible[0], true
	}
	return Note{}, false
}

// NeighborAfterDelete picks the selection that follows deleting deletedID
// from before: the note that takes over its index, else the one before it.
func NeighborAfterDelete(before []Note, deletedID string) (string, bool) {
	idx := indexOf(before, deletedID)
	if idx < 0 {
		return "", false
	}

	after := make([]Note, 0, len(before)-1)
	after = append(after, before[:idx]...)
	after = append(after, before[idx+1:]...)

	switch {
	case idx < len(after):
		return after[idx].ID, true
	case len(after) > 0:
		return after[idx-1].ID, true
	default:
		return "", false
	}
}
