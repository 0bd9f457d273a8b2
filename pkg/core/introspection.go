package core

import (
	"github.com/aretw0/introspection"
)

// EngineState exposes internal state for observability.
type EngineState struct {
	Scope          Scope  `json:"scope"`
	StoreType      string `json:"store_type"`
	Records        int    `json:"records"`
	Epoch          uint64 `json:"epoch"`
	Dialog         string `json:"dialog"`
	Authenticated  bool   `json:"authenticated"`
	ReloadRequired bool   `json:"reload_required"`
	ReadOnly       bool   `json:"read_only"`
	RemoteSearch   bool   `json:"remote_search"`
	Query          string `json:"query,omitempty"`
	EventBacklog   int    `json:"event_backlog"`
}

// State implements introspection.Introspectable.
func (e *Engine[T]) State() any {
	storeType := "store"
	// Try to get component type if the store implements introspection.Component
	if comp, ok := e.store.(introspection.Component); ok {
		storeType = comp.ComponentType()
	}

	e.mu.Lock()
	authenticated := e.session.Authenticated
	reload := e.reloadRequired
	query := e.query
	e.mu.Unlock()

	return EngineState{
		Scope:          e.scope,
		StoreType:      storeType,
		Records:        e.cache.Len(),
		Epoch:          e.cache.Epoch(),
		Dialog:         e.flow.Current().String(),
		Authenticated:  authenticated,
		ReloadRequired: reload,
		ReadOnly:       e.ReadOnly(),
		RemoteSearch:   e.RemoteSearch(),
		Query:          query,
		EventBacklog:   len(e.events),
	}
}

// ComponentType implements introspection.Component.
func (e *Engine[T]) ComponentType() string {
	return "engine"
}

var _ introspection.Introspectable = (*Engine[Note])(nil)
var _ introspection.Component = (*Engine[Universe])(nil)
