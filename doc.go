// Package pocket is the composition root of a small personal note store.
//
// It wires the domain layer (pkg/core: Store, Session, selection rules)
// to a storage adapter chosen at runtime, following a hexagonal layout.
//
// Features:
//
//   - **Whole-collection persistence**: every mutation rewrites the full,
//     ordered note array under a single key (`personal_notes_v1`).
//   - **Pluggable storage**: one file per key (default, optionally committed
//     to Git), a bbolt database, or a SQLite table.
//   - **Formats**: JSON (default) or YAML.
//   - **Derived selection**: core.Session keeps the selection pointing at a
//     visible note across searches, edits and deletes.
//   - **Preferences**: a light/dark theme stored next to the notes.
//
// Usage:
//
//	nb, err := pocket.New("./notes", pocket.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	defer nb.Close()
//
//	note, err := nb.Store.Create(ctx, "Groceries", "milk, eggs")
package pocket
