package actor

import (
	"time"

	"github.com/nootverse/noot/pkg/core"
)

const nanosPerMilli = 1_000_000

// wireNote is a note as the actor encodes it.
type wireNote struct {
	ID      string   `cbor:"id"`
	Title   string   `cbor:"title"`
	Content string   `cbor:"content"`
	Tags    []string `cbor:"tags"`
}

// wireUniverse carries nanosecond timestamps.
type wireUniverse struct {
	ID          string   `cbor:"id"`
	Title       string   `cbor:"title"`
	Description string   `cbor:"description"`
	Content     string   `cbor:"content"`
	IsPublic    bool     `cbor:"isPublic"`
	Tags        []string `cbor:"tags"`
	CreatedAt   int64    `cbor:"createdAt"`
	UpdatedAt   int64    `cbor:"updatedAt"`
}

type wireUniverseInput struct {
	Title       string   `cbor:"title"`
	Description string   `cbor:"description"`
	Content     string   `cbor:"content"`
	IsPublic    bool     `cbor:"isPublic"`
	Tags        []string `cbor:"tags"`
}

type wireStats struct {
	TotalUniverses  uint64 `cbor:"totalUniverses"`
	PublicUniverses uint64 `cbor:"publicUniverses"`
	TotalUsers      uint64 `cbor:"totalUsers"`
}

// FromNanos converts an actor timestamp (nanoseconds since the epoch) to a
// time at millisecond resolution.
func FromNanos(ns int64) time.Time {
	return time.UnixMilli(ns / nanosPerMilli).UTC()
}

// ToNanos is the inverse of FromNanos.
func ToNanos(t time.Time) int64 {
	return t.UnixNano()
}

func (w wireNote) toCore() core.Note {
	tags := w.Tags
	if tags == nil {
		tags = []string{}
	}
	return core.Note{ID: w.ID, Title: w.Title, Content: w.Content, Tags: tags}
}

func (w wireUniverse) toCore() core.Universe {
	tags := w.Tags
	if tags == nil {
		tags = []string{}
	}
	return core.Universe{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Content:     w.Content,
		IsPublic:    w.IsPublic,
		Tags:        tags,
		CreatedAt:   FromNanos(w.CreatedAt),
		UpdatedAt:   FromNanos(w.UpdatedAt),
	}
}

func toWireInput(in core.UniverseInput) wireUniverseInput {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	return wireUniverseInput{
		Title:       in.Title,
		Description: in.Description,
		Content:     in.Content,
		IsPublic:    in.IsPublic,
		Tags:        tags,
	}
}

func notesToCore(ws []wireNote) []core.Note {
	out := make([]core.Note, len(ws))
	for i, w := range ws {
		out[i] = w.toCore()
	}
	return out
}

func universesToCore(ws []wireUniverse) []core.Universe {
	out := make([]core.Universe, len(ws))
	for i, w := range ws {
		out[i] = w.toCore()
	}
	return out
}
