package core

import "context"

// Loader reads a full remote list in its canonical order.
type Loader[T Record] interface {
	Load(ctx context.Context) ([]T, error)
}

// Mutator issues positional mutations against a remote list.
// Positions are the ones observed by the caller's last Load; the remote
// store does not address records by identifier.
type Mutator[T Record] interface {
	// Create appends the record and returns it as stored, identifier included.
	Create(ctx context.Context, draft T) (T, error)
	// UpdateAt replaces the record at position. id is sent for validation only.
	UpdateAt(ctx context.Context, position int, id string, rec T) (T, error)
	// DeleteAt removes the record at position, shifting later records down by one.
	DeleteAt(ctx context.Context, position int) error
}

// Searcher is implemented by stores backed by server-side full-text search.
type Searcher[T Record] interface {
	Search(ctx context.Context, query string) ([]T, error)
}

// Store is the capability set a record kind offers to the engine.
// Only Loader is required; Mutator and Searcher are detected at runtime.
type Store[T Record] interface {
	Loader[T]
}
