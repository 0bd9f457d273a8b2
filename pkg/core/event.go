package core

import (
	"fmt"
	"time"
)

// EventType represents the type of change applied to a cache.
type EventType string

const (
	EventLoad   EventType = "LOAD"
	EventCreate EventType = "CREATE"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
	EventClear  EventType = "CLEAR"
)

// Event represents a change in an engine's cache.
type Event struct {
	Type      EventType
	Scope     Scope
	ID        string
	Position  int
	Epoch     uint64
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	switch e.Type {
	case EventLoad, EventClear:
		return fmt.Sprintf("%s %s epoch=%d", e.Type, e.Scope, e.Epoch)
	default:
		return fmt.Sprintf("%s %s[%d] id=%s", e.Type, e.Scope, e.Position, e.ID)
	}
}

func newEvent(t EventType, scope Scope, id string, position int, epoch uint64) Event {
	return Event{
		Type:      t,
		Scope:     scope,
		ID:        id,
		Position:  position,
		Epoch:     epoch,
		Timestamp: time.Now().Unix(),
	}
}
