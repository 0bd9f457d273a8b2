package core

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/lifecycle"
)

const defaultEventBuffer = 100

type engineOptions struct {
	logger         *slog.Logger
	session        Session
	requireSession bool
	eventBuffer    int
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

// WithLogger sets the logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

// WithSession sets the initial session.
func WithSession(s Session) EngineOption {
	return func(o *engineOptions) {
		o.session = s
	}
}

// WithRequireSession makes every load and mutation fail with
// ErrUnauthenticated while the session is anonymous, and clears the cache
// when the session is lost.
func WithRequireSession(required bool) EngineOption {
	return func(o *engineOptions) {
		o.requireSession = required
	}
}

// WithEventBuffer sets the size of the event channel. Zero means default (100).
func WithEventBuffer(size int) EngineOption {
	return func(o *engineOptions) {
		o.eventBuffer = size
	}
}

// Engine keeps a Cache consistent with one remote list. The cache is mutated
// only after the remote call succeeded, so no rollback is ever needed.
type Engine[T Record] struct {
	scope  Scope
	store  Store[T]
	cache  *Cache[T]
	flow   *Workflow[T]
	logger *slog.Logger
	events chan Event

	// mutating serializes commits against each other. Load is not serialized
	// against commits; load tickets are the only ordering guarantee.
	mutating sync.Mutex

	mu             sync.Mutex
	session        Session
	requireSession bool
	sessionGen     uint64
	loadTicket     uint64
	searchTicket   uint64
	reloadRequired bool
	query          string
	remoteView     bool
	results        []T
}

// NewEngine creates an engine for scope backed by store.
func NewEngine[T Record](scope Scope, store Store[T], opts ...EngineOption) *Engine[T] {
	o := &engineOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.eventBuffer <= 0 {
		o.eventBuffer = defaultEventBuffer
	}

	return &Engine[T]{
		scope:          scope,
		store:          store,
		cache:          NewCache[T](),
		flow:           NewWorkflow[T](),
		logger:         o.logger.With("scope", string(scope)),
		events:         make(chan Event, o.eventBuffer),
		session:        o.session,
		requireSession: o.requireSession,
	}
}

func (e *Engine[T]) Scope() Scope { return e.scope }

// Events returns the stream of cache changes. Events are dropped when the
// buffer is full.
func (e *Engine[T]) Events() <-chan Event { return e.events }

// Records returns a copy of the cached list.
func (e *Engine[T]) Records() []T { return e.cache.Snapshot() }

// Len returns the number of cached records.
func (e *Engine[T]) Len() int { return e.cache.Len() }

// Epoch returns the epoch of the last full reload.
func (e *Engine[T]) Epoch() uint64 { return e.cache.Epoch() }

// At returns the cached record at position.
func (e *Engine[T]) At(position int) (T, error) { return e.cache.At(position) }

// Dialog returns the active dialog.
func (e *Engine[T]) Dialog() Dialog[T] { return e.flow.Current() }

// Session returns the current session.
func (e *Engine[T]) Session() Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// ReloadRequired reports whether cached positions are known to be unreliable.
func (e *Engine[T]) ReloadRequired() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reloadRequired
}

// ReadOnly reports whether the scope rejects mutations.
func (e *Engine[T]) ReadOnly() bool {
	_, ok := e.store.(Mutator[T])
	return !ok
}

// RemoteSearch reports whether the scope is searched server-side.
func (e *Engine[T]) RemoteSearch() bool {
	_, ok := e.store.(Searcher[T])
	return ok
}

// --- Loading ---

// Load replaces the cache with the remote list. A result whose load was
// superseded by a later Load, or by a session change, is discarded.
func (e *Engine[T]) Load(ctx context.Context) error {
	e.mu.Lock()
	if err := e.authorize(); err != nil {
		e.mu.Unlock()
		return opError("load", err)
	}
	e.loadTicket++
	ticket, gen := e.loadTicket, e.sessionGen
	e.mu.Unlock()

	records, err := e.store.Load(ctx)
	if err != nil {
		e.logger.Warn("load failed", "error", err)
		return opError("load", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if ticket != e.loadTicket || gen != e.sessionGen {
		e.logger.Debug("discarding superseded load", "ticket", ticket, "latest", e.loadTicket)
		return nil
	}
	epoch := e.cache.ReplaceAll(records)
	e.reloadRequired = false
	e.logger.Debug("loaded", "records", len(records), "epoch", epoch)
	e.emit(newEvent(EventLoad, e.scope, "", NoPosition, epoch))
	return nil
}

// LoadAsync runs Load in the background. onErr receives load failures.
func (e *Engine[T]) LoadAsync(ctx context.Context, onErr func(error)) {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		if err := e.Load(ctx); err != nil && onErr != nil {
			onErr(err)
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		e.logger.Error("background load panic", "error", err)
	}))
}

// SetSession replaces the session. Becoming authenticated, or switching
// principal, reloads; losing the session clears scopes that require one.
func (e *Engine[T]) SetSession(ctx context.Context, s Session) error {
	e.mu.Lock()
	prev := e.session
	e.session = s
	if prev.Same(s) {
		e.mu.Unlock()
		return nil
	}
	e.sessionGen++
	switched := prev.Authenticated && s.Authenticated && prev.Identity != s.Identity

	if !s.Authenticated {
		if !e.requireSession {
			e.mu.Unlock()
			return nil
		}
		epoch := e.cache.Clear()
		e.query, e.remoteView, e.results = "", false, nil
		e.reloadRequired = false
		e.emit(newEvent(EventClear, e.scope, "", NoPosition, epoch))
		e.mu.Unlock()
		e.flow.Close()
		e.logger.Info("session ended, cache cleared")
		return nil
	}
	// Positions held for another principal must never be mutated, even if
	// the reload below fails.
	e.reloadRequired = true
	if switched && e.requireSession {
		epoch := e.cache.Clear()
		e.query, e.remoteView, e.results = "", false, nil
		e.emit(newEvent(EventClear, e.scope, "", NoPosition, epoch))
	}
	e.mu.Unlock()
	if switched {
		e.flow.Close()
	}

	e.logger.Info("session started", "identity", s.Identity)
	return e.Load(ctx)
}

// --- Dialogs ---

// OpenCreate opens the create dialog.
func (e *Engine[T]) OpenCreate() (Dialog[T], error) {
	if e.ReadOnly() {
		return e.flow.Current(), opError("create", ErrReadOnly)
	}
	return e.flow.OpenCreate()
}

// OpenEdit opens the edit dialog on the cached record at position.
func (e *Engine[T]) OpenEdit(position int) (Dialog[T], error) {
	if e.ReadOnly() {
		return e.flow.Current(), opError("edit", ErrReadOnly)
	}
	rec, err := e.cache.At(position)
	if err != nil {
		return e.flow.Current(), opError("edit", err)
	}
	return e.flow.OpenEdit(position, rec)
}

// OpenView opens the view dialog on the cached record at position.
func (e *Engine[T]) OpenView(position int) (Dialog[T], error) {
	rec, err := e.cache.At(position)
	if err != nil {
		return e.flow.Current(), opError("view", err)
	}
	return e.flow.OpenView(position, rec)
}

// OpenDelete asks for confirmation before deleting the record at position.
func (e *Engine[T]) OpenDelete(position int) (Dialog[T], error) {
	if e.ReadOnly() {
		return e.flow.Current(), opError("delete", ErrReadOnly)
	}
	rec, err := e.cache.At(position)
	if err != nil {
		return e.flow.Current(), opError("delete", err)
	}
	return e.flow.OpenConfirmDelete(position, rec)
}

// Close cancels the active dialog. An in-flight commit is not cancelled;
// its result is still applied to the cache.
func (e *Engine[T]) Close() {
	e.flow.Close()
}

// Commit saves draft through the active Creating or Editing dialog.
// On failure the dialog stays open, except on StalePosition.
func (e *Engine[T]) Commit(ctx context.Context, draft T) (T, error) {
	d := e.flow.Current()
	switch d.State {
	case Creating:
		return e.create(ctx, d, draft)
	case Editing:
		return e.update(ctx, d, draft)
	default:
		var zero T
		return zero, opError("commit", Wrap(KindValidation, "", ErrInvalidTransition.Message, errors.New("no create or edit dialog open")))
	}
}

// ConfirmDelete deletes the record targeted by the ConfirmingDelete dialog.
func (e *Engine[T]) ConfirmDelete(ctx context.Context) error {
	d := e.flow.Current()
	if d.State != ConfirmingDelete {
		return opError("delete", Wrap(KindValidation, "", ErrInvalidTransition.Message, errors.New("delete was not confirmed")))
	}
	return e.delete(ctx, d)
}

// --- Mutations ---

func (e *Engine[T]) create(ctx context.Context, d Dialog[T], draft T) (T, error) {
	var zero T
	m, ok := e.store.(Mutator[T])
	if !ok {
		return zero, opError("create", ErrReadOnly)
	}
	if strings.TrimSpace(draft.RecordTitle()) == "" {
		return zero, opError("create", ErrEmptyTitle)
	}

	e.mutating.Lock()
	defer e.mutating.Unlock()

	if err := e.prepareMutation(ctx); err != nil {
		return zero, opError("create", err)
	}

	rec, err := m.Create(ctx, draft)
	if err != nil {
		e.logger.Warn("create failed", "error", err)
		return zero, opError("create", err)
	}

	e.mu.Lock()
	// A reload that raced the call may already carry the new record.
	pos := e.cache.IndexOf(rec.RecordID())
	if pos == NoPosition {
		pos = e.cache.InsertEnd(rec)
	}
	e.syncResults(rec.RecordID(), &rec)
	e.mu.Unlock()
	e.emit(newEvent(EventCreate, e.scope, rec.RecordID(), pos, e.cache.Epoch()))
	e.flow.CloseTicket(d.Ticket)
	e.logger.Debug("created", "id", rec.RecordID(), "position", pos)
	return rec, nil
}

func (e *Engine[T]) update(ctx context.Context, d Dialog[T], draft T) (T, error) {
	var zero T
	m, ok := e.store.(Mutator[T])
	if !ok {
		return zero, opError("update", ErrReadOnly)
	}
	if strings.TrimSpace(draft.RecordTitle()) == "" {
		return zero, opError("update", ErrEmptyTitle)
	}

	e.mutating.Lock()
	defer e.mutating.Unlock()

	if err := e.prepareMutation(ctx); err != nil {
		return zero, opError("update", err)
	}

	id := d.Record.RecordID()
	if err := e.verifyTarget(d.Position, id); err != nil {
		return zero, e.stale(ctx, "update", err)
	}

	rec, err := m.UpdateAt(ctx, d.Position, id, draft)
	if err != nil {
		if errors.Is(err, ErrStalePosition) {
			return zero, e.stale(ctx, "update", err)
		}
		e.logger.Warn("update failed", "position", d.Position, "error", err)
		return zero, opError("update", err)
	}

	if err := e.apply(d.Position, id, func() error {
		if err := e.cache.ReplaceAt(d.Position, rec); err != nil {
			return err
		}
		e.syncResults(id, &rec)
		return nil
	}); err != nil {
		return rec, e.stale(ctx, "update", err)
	}
	e.emit(newEvent(EventUpdate, e.scope, id, d.Position, e.cache.Epoch()))
	e.flow.CloseTicket(d.Ticket)
	return rec, nil
}

func (e *Engine[T]) delete(ctx context.Context, d Dialog[T]) error {
	m, ok := e.store.(Mutator[T])
	if !ok {
		return opError("delete", ErrReadOnly)
	}

	e.mutating.Lock()
	defer e.mutating.Unlock()

	if err := e.prepareMutation(ctx); err != nil {
		return opError("delete", err)
	}

	id := d.Record.RecordID()
	if err := e.verifyTarget(d.Position, id); err != nil {
		return e.stale(ctx, "delete", err)
	}

	if err := m.DeleteAt(ctx, d.Position); err != nil {
		if errors.Is(err, ErrStalePosition) {
			return e.stale(ctx, "delete", err)
		}
		e.logger.Warn("delete failed", "position", d.Position, "error", err)
		return opError("delete", err)
	}

	if err := e.apply(d.Position, id, func() error {
		if err := e.cache.RemoveAt(d.Position); err != nil {
			return err
		}
		e.syncResults(id, nil)
		return nil
	}); err != nil {
		return e.stale(ctx, "delete", err)
	}
	e.emit(newEvent(EventDelete, e.scope, id, d.Position, e.cache.Epoch()))
	e.flow.CloseTicket(d.Ticket)
	// Every position after the deleted one shifted; dialogs holding them are stale.
	if e.flow.InvalidateFrom(d.Position) {
		e.logger.Debug("closed dialog targeting a shifted position", "deleted", d.Position)
	}
	return nil
}

// prepareMutation checks the session and, when positions are known to be
// unreliable, reloads before anything is mutated.
func (e *Engine[T]) prepareMutation(ctx context.Context) error {
	e.mu.Lock()
	err := e.authorize()
	reload := e.reloadRequired
	e.mu.Unlock()
	if err != nil {
		return err
	}
	if reload {
		if err := e.Load(ctx); err != nil {
			return Wrap(KindStalePosition, "", ErrReloadRequired.Message, err)
		}
	}
	return nil
}

// verifyTarget checks that position still denotes the record with id.
func (e *Engine[T]) verifyTarget(position int, id string) error {
	current, err := e.cache.At(position)
	if err != nil {
		return err
	}
	if current.RecordID() != id {
		return Wrap(KindStalePosition, "", "record at position changed", nil)
	}
	return nil
}

// apply runs a cache mutation after re-checking the target under the engine
// lock, so a concurrent Load cannot slip in between check and mutation.
func (e *Engine[T]) apply(position int, id string, mutate func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.verifyTarget(position, id); err != nil {
		return err
	}
	return mutate()
}

// stale closes the dialog, marks positions unreliable and reloads.
func (e *Engine[T]) stale(ctx context.Context, op string, cause error) error {
	e.flow.Close()
	e.mu.Lock()
	e.reloadRequired = true
	e.mu.Unlock()

	e.logger.Warn("stale position, reloading", "op", op, "error", cause)
	if err := e.Load(ctx); err != nil {
		e.logger.Warn("reload after stale position failed", "error", err)
	}

	if KindOf(cause) != KindStalePosition {
		cause = Wrap(KindStalePosition, "", "", cause)
	}
	return opError(op, cause)
}

// --- Search ---

// Search computes the displayed view for query. Scopes with server-side
// search query the remote store for non-blank queries; the owned cache is
// never replaced by search results.
func (e *Engine[T]) Search(ctx context.Context, query string) ([]Entry[T], error) {
	searcher, remote := e.store.(Searcher[T])
	blank := strings.TrimSpace(query) == ""

	e.mu.Lock()
	e.searchTicket++
	ticket := e.searchTicket
	e.query = query
	if blank || !remote {
		e.remoteView, e.results = false, nil
	}
	needsLoad := blank && e.cache.Epoch() == 0
	authErr := e.authorize()
	e.mu.Unlock()

	if blank || !remote {
		if needsLoad && authErr == nil {
			if err := e.Load(ctx); err != nil {
				return nil, opError("search", err)
			}
		}
		return e.View(), nil
	}
	if authErr != nil {
		return nil, opError("search", authErr)
	}

	results, err := searcher.Search(ctx, query)
	if err != nil {
		e.logger.Warn("search failed", "query", query, "error", err)
		return nil, opError("search", err)
	}

	e.mu.Lock()
	if ticket != e.searchTicket {
		e.mu.Unlock()
		e.logger.Debug("discarding superseded search", "query", query)
		return e.resolve(results), nil
	}
	e.remoteView, e.results = true, results
	e.mu.Unlock()
	return e.resolve(results), nil
}

// View returns the displayed records: the remote search results, or the
// cache filtered by the current query.
func (e *Engine[T]) View() []Entry[T] {
	e.mu.Lock()
	query, remote, results := e.query, e.remoteView, e.results
	e.mu.Unlock()

	if remote {
		return e.resolve(results)
	}
	return Filter(e.cache.Entries(), query)
}

// Query returns the query behind the displayed view.
func (e *Engine[T]) Query() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

// resolve pairs search results with their position in the cache, looked up
// by identifier. Search order says nothing about list positions.
func (e *Engine[T]) resolve(results []T) []Entry[T] {
	out := make([]Entry[T], len(results))
	for i, r := range results {
		out[i] = Entry[T]{Position: e.cache.IndexOf(r.RecordID()), Record: r}
	}
	return out
}

// syncResults keeps a remote search view in step with a cache mutation:
// rec replaces the result with id, or is added when it matches the query.
// A nil rec drops id. Must be called with e.mu held.
func (e *Engine[T]) syncResults(id string, rec *T) {
	if !e.remoteView {
		return
	}
	q := strings.ToLower(strings.TrimSpace(e.query))
	out := make([]T, 0, len(e.results)+1)
	found := false
	for _, r := range e.results {
		if r.RecordID() != id {
			out = append(out, r)
			continue
		}
		found = true
		if rec != nil && matches(*rec, q) {
			out = append(out, *rec)
		}
	}
	if !found && rec != nil && matches(*rec, q) {
		out = append(out, *rec)
	}
	e.results = out
}

// --- helpers ---

// authorize must be called with e.mu held.
func (e *Engine[T]) authorize() error {
	if e.requireSession && !e.session.Authenticated {
		return ErrUnauthenticated
	}
	return nil
}

func (e *Engine[T]) emit(ev Event) {
	select {
	case e.events <- ev:
	default:
		e.logger.Debug("event dropped, buffer full", "event", ev.String())
	}
}
