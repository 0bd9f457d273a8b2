// Package core holds the domain of noot: the record kinds, the positional cache,
// the dialog workflow and the generic sync engine that keeps them consistent with
// the remote actor.
package core

import (
	"strings"
	"time"
)

// Scope names a remote list with its own position space.
type Scope string

const (
	ScopeNotes           Scope = "notes"
	ScopeOwnedUniverses  Scope = "universes/mine"
	ScopePublicUniverses Scope = "universes/public"
)

// Record is the capability set the engine needs from a record kind.
// Note and Universe implement it with value receivers.
type Record interface {
	RecordID() string
	RecordTitle() string
	RecordTags() []string
	// SearchFields returns the texts matched by local filtering.
	SearchFields() []string
}

// Note is a private markdown note owned by the authenticated principal.
type Note struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Content string   `json:"content" yaml:"content"`
	Tags    []string `json:"tags" yaml:"tags"`
}

func (n Note) RecordID() string     { return n.ID }
func (n Note) RecordTitle() string  { return n.Title }
func (n Note) RecordTags() []string { return n.Tags }

func (n Note) SearchFields() []string {
	fields := make([]string, 0, 2+len(n.Tags))
	fields = append(fields, n.Title, n.Content)
	return append(fields, n.Tags...)
}

// Normalized returns the note as it is committed: trimmed title and content,
// cleaned tags.
func (n Note) Normalized() Note {
	n.Title = strings.TrimSpace(n.Title)
	n.Content = strings.TrimSpace(n.Content)
	n.Tags = NormalizeTags(n.Tags)
	return n
}

// Universe is a titled world description that may be shared publicly.
// Timestamps are server assigned and kept at millisecond resolution.
type Universe struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Content     string    `json:"content" yaml:"content"`
	IsPublic    bool      `json:"is_public" yaml:"is_public"`
	Tags        []string  `json:"tags" yaml:"tags"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" yaml:"updated_at"`
}

func (u Universe) RecordID() string     { return u.ID }
func (u Universe) RecordTitle() string  { return u.Title }
func (u Universe) RecordTags() []string { return u.Tags }

func (u Universe) SearchFields() []string {
	fields := make([]string, 0, 3+len(u.Tags))
	fields = append(fields, u.Title, u.Description, u.Content)
	return append(fields, u.Tags...)
}

// Input returns the writable subset of the universe.
func (u Universe) Input() UniverseInput {
	return UniverseInput{
		Title:       u.Title,
		Description: u.Description,
		Content:     u.Content,
		IsPublic:    u.IsPublic,
		Tags:        u.Tags,
	}
}

// UniverseInput is what the actor accepts on create and update.
type UniverseInput struct {
	Title       string
	Description string
	Content     string
	IsPublic    bool
	Tags        []string
}

// Normalized trims the title and cleans the tags.
func (in UniverseInput) Normalized() UniverseInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Tags = NormalizeTags(in.Tags)
	return in
}

// Stats are aggregate counters derived server-side.
type Stats struct {
	TotalUniverses  int `json:"total_universes"`
	PublicUniverses int `json:"public_universes"`
	TotalUsers      int `json:"total_users"`
}

// NormalizeTags trims every tag, drops empty ones and removes duplicates,
// keeping the first occurrence. Comparison is case-sensitive.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// NoPosition marks a displayed record whose position in the owned list is unknown.
const NoPosition = -1

// Entry is one element of a displayed view.
type Entry[T Record] struct {
	Position int
	Record   T
}

// Addressable reports whether the entry may be targeted by update or delete.
func (e Entry[T]) Addressable() bool {
	return e.Position != NoPosition
}
