// Package typed binds each record kind to the actor methods that serve it,
// yielding the capability set a core.Engine is parameterized over.
package typed

import (
	"context"

	"github.com/google/uuid"

	"github.com/nootverse/noot/pkg/core"
)

// NoteRemote is the part of the actor surface that serves notes.
type NoteRemote interface {
	AddNote(ctx context.Context, id, title, content string, tags []string) error
	GetAllOwnedNotes(ctx context.Context) ([]core.Note, error)
	UpdateNote(ctx context.Context, position int, id, title, content string, tags []string) error
	DeleteNote(ctx context.Context, position int) error
	SearchNotes(ctx context.Context, query string) ([]core.Note, error)
}

// Notes is the binding for the caller's private notes. It supports every
// capability, including server-side search.
type Notes struct {
	remote NoteRemote
	newID  func() string
}

// NewNotes binds notes to remote. Note identifiers are generated client-side.
func NewNotes(remote NoteRemote) *Notes {
	return &Notes{remote: remote, newID: uuid.NewString}
}

func (n *Notes) Load(ctx context.Context) ([]core.Note, error) {
	return n.remote.GetAllOwnedNotes(ctx)
}

// Create assigns an identifier unless draft carries one, then appends.
func (n *Notes) Create(ctx context.Context, draft core.Note) (core.Note, error) {
	note := draft.Normalized()
	if note.ID == "" {
		note.ID = n.newID()
	}
	if err := n.remote.AddNote(ctx, note.ID, note.Title, note.Content, note.Tags); err != nil {
		return core.Note{}, err
	}
	return note, nil
}

func (n *Notes) UpdateAt(ctx context.Context, position int, id string, rec core.Note) (core.Note, error) {
	note := rec.Normalized()
	note.ID = id
	if err := n.remote.UpdateNote(ctx, position, id, note.Title, note.Content, note.Tags); err != nil {
		return core.Note{}, err
	}
	return note, nil
}

func (n *Notes) DeleteAt(ctx context.Context, position int) error {
	return n.remote.DeleteNote(ctx, position)
}

func (n *Notes) Search(ctx context.Context, query string) ([]core.Note, error) {
	return n.remote.SearchNotes(ctx, query)
}

var (
	_ core.Store[core.Note]    = (*Notes)(nil)
	_ core.Mutator[core.Note]  = (*Notes)(nil)
	_ core.Searcher[core.Note] = (*Notes)(nil)
)
