package typed

import "github.com/nootverse/noot/pkg/core"

// Remote is the full actor surface, as implemented by actor.Client.
type Remote interface {
	NoteRemote
	UniverseRemote
	PublicRemote
}

// NewNotesEngine returns the engine for the caller's notes. It requires an
// authenticated session.
func NewNotesEngine(remote NoteRemote, opts ...core.EngineOption) *core.Engine[core.Note] {
	opts = append(opts, core.WithRequireSession(true))
	return core.NewEngine[core.Note](core.ScopeNotes, NewNotes(remote), opts...)
}

// NewOwnedUniversesEngine returns the engine for the caller's universes. It
// requires an authenticated session.
func NewOwnedUniversesEngine(remote UniverseRemote, opts ...core.EngineOption) *core.Engine[core.Universe] {
	opts = append(opts, core.WithRequireSession(true))
	return core.NewEngine[core.Universe](core.ScopeOwnedUniverses, NewOwnedUniverses(remote), opts...)
}

// NewPublicUniversesEngine returns the read-only engine over public
// universes. Anonymous callers may load and search it.
func NewPublicUniversesEngine(remote PublicRemote, opts ...core.EngineOption) *core.Engine[core.Universe] {
	return core.NewEngine[core.Universe](core.ScopePublicUniverses, NewPublicUniverses(remote), opts...)
}
