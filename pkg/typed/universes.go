package typed

import (
	"context"
	"time"

	"github.com/nootverse/noot/pkg/core"
)

// UniverseRemote is the part of the actor surface that serves the caller's
// own universes.
type UniverseRemote interface {
	CreateUniverse(ctx context.Context, in core.UniverseInput) (string, error)
	GetMyUniverses(ctx context.Context) ([]core.Universe, error)
	UpdateUniverse(ctx context.Context, position int, in core.UniverseInput) (bool, error)
	DeleteUniverse(ctx context.Context, position int) (bool, error)
}

// PublicRemote serves the shared, read-only universe list.
type PublicRemote interface {
	GetPublicUniverses(ctx context.Context) ([]core.Universe, error)
	SearchUniverses(ctx context.Context, query string) ([]core.Universe, error)
}

// OwnedUniverses is the binding for the caller's universes. The actor has
// no universe search for owned lists, so filtering stays local.
type OwnedUniverses struct {
	remote UniverseRemote
	now    func() time.Time
}

func NewOwnedUniverses(remote UniverseRemote) *OwnedUniverses {
	return &OwnedUniverses{remote: remote, now: time.Now}
}

func (u *OwnedUniverses) Load(ctx context.Context) ([]core.Universe, error) {
	return u.remote.GetMyUniverses(ctx)
}

// Create returns the universe with the server-generated identifier.
// Timestamps are approximated locally until the next Load.
func (u *OwnedUniverses) Create(ctx context.Context, draft core.Universe) (core.Universe, error) {
	in := draft.Input().Normalized()
	id, err := u.remote.CreateUniverse(ctx, in)
	if err != nil {
		return core.Universe{}, err
	}
	now := u.stamp()
	return fromInput(id, in, now, now), nil
}

// UpdateAt fails with a stale position when the actor reports no universe
// at position.
func (u *OwnedUniverses) UpdateAt(ctx context.Context, position int, id string, rec core.Universe) (core.Universe, error) {
	in := rec.Input().Normalized()
	ok, err := u.remote.UpdateUniverse(ctx, position, in)
	if err != nil {
		return core.Universe{}, err
	}
	if !ok {
		return core.Universe{}, core.New(core.KindStalePosition, "updateUniverse", "no universe at position")
	}
	return fromInput(id, in, rec.CreatedAt, u.stamp()), nil
}

func (u *OwnedUniverses) DeleteAt(ctx context.Context, position int) error {
	ok, err := u.remote.DeleteUniverse(ctx, position)
	if err != nil {
		return err
	}
	if !ok {
		return core.New(core.KindStalePosition, "deleteUniverse", "no universe at position")
	}
	return nil
}

func (u *OwnedUniverses) stamp() time.Time {
	return u.now().UTC().Truncate(time.Millisecond)
}

func fromInput(id string, in core.UniverseInput, created, updated time.Time) core.Universe {
	return core.Universe{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		IsPublic:    in.IsPublic,
		Tags:        in.Tags,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
}

// PublicUniverses is the read-only binding for every principal's public
// universes, searched server-side.
type PublicUniverses struct {
	remote PublicRemote
}

func NewPublicUniverses(remote PublicRemote) *PublicUniverses {
	return &PublicUniverses{remote: remote}
}

func (p *PublicUniverses) Load(ctx context.Context) ([]core.Universe, error) {
	return p.remote.GetPublicUniverses(ctx)
}

func (p *PublicUniverses) Search(ctx context.Context, query string) ([]core.Universe, error) {
	return p.remote.SearchUniverses(ctx, query)
}

var (
	_ core.Store[core.Universe]    = (*OwnedUniverses)(nil)
	_ core.Mutator[core.Universe]  = (*OwnedUniverses)(nil)
	_ core.Store[core.Universe]    = (*PublicUniverses)(nil)
	_ core.Searcher[core.Universe] = (*PublicUniverses)(nil)
)
