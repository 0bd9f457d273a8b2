// Package noot is the composition root of the Nootverse client library.
//
// It wires the remote actor client (pkg/adapters/actor) to one sync engine
// per scope (pkg/core) through the kind bindings of pkg/typed.
//
// The actor only addresses records by their position in the caller's list.
// Each engine keeps a local copy of that list and mutates it only after the
// remote call succeeded, so the copy never needs a rollback. Positions are
// re-checked against the record identifier captured when a dialog opened; a
// mismatch closes the dialog, reloads the list and reports a stale position
// instead of overwriting the wrong record.
//
// Usage:
//
//	cfg, err := noot.LoadConfig("")
//	app, err := noot.New(cfg, noot.WithLogger(logger))
//
//	// Load and edit the caller's notes
//	err = app.Notes.Load(ctx)
//	_, err = app.Notes.OpenEdit(0)
//	note, err := app.Notes.Commit(ctx, core.Note{Title: "Renamed"})
package noot
