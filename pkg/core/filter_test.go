package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/nootverse/noot/pkg/core"
)

func entries(notes ...core.Note) []core.Entry[core.Note] {
	out := make([]core.Entry[core.Note], len(notes))
	for i, n := range notes {
		out[i] = core.Entry[core.Note]{Position: i, Record: n}
	}
	return out
}

func TestFilter(t *testing.T) {
	all := entries(
		core.Note{ID: "a", Title: "Grocery list", Content: "milk"},
		core.Note{ID: "b", Title: "Ideas", Content: "Build a ROCKET"},
		core.Note{ID: "c", Title: "Trip", Tags: []string{"travel", "Rocket-science"}},
		core.Note{ID: "d", Title: "Empty"},
	)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"a", "b", "c", "d"}},
		{"   ", []string{"a", "b", "c", "d"}},
		{"rocket", []string{"b", "c"}},
		{"GROCERY", []string{"a"}},
		{"travel", []string{"c"}},
		{"nothing", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := core.Filter(all, tt.query)
			gotIDs := make([]string, 0, len(got))
			for _, e := range got {
				gotIDs = append(gotIDs, e.Record.ID)
			}
			assert.Equal(t, tt.want, gotIDs)
		})
	}

	// Filtered entries keep their cache positions.
	got := core.Filter(all, "trip")
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].Position)
}

func TestFilter_UniverseFields(t *testing.T) {
	all := []core.Entry[core.Universe]{
		{Position: 0, Record: core.Universe{ID: "u1", Title: "Dune", Description: "desert planet"}},
		{Position: 1, Record: core.Universe{ID: "u2", Title: "Solaris", Content: "ocean"}},
	}
	got := core.Filter(all, "DESERT")
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].Record.ID)
}

func TestFilter_Idempotent(t *testing.T) {
	word := rapid.StringMatching(`[a-cA-C]{0,4}`)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(rt, "n")
		notes := make([]core.Note, n)
		for i := range notes {
			notes[i] = core.Note{
				ID:      word.Draw(rt, "id"),
				Title:   word.Draw(rt, "title"),
				Content: word.Draw(rt, "content"),
				Tags:    rapid.SliceOfN(word, 0, 3).Draw(rt, "tags"),
			}
		}
		query := word.Draw(rt, "query")

		once := core.Filter(entries(notes...), query)
		twice := core.Filter(once, query)
		if len(once) != len(twice) {
			rt.Fatalf("filter not idempotent: %d then %d", len(once), len(twice))
		}
		for i := range once {
			if once[i].Position != twice[i].Position {
				rt.Fatalf("entry %d moved from %d to %d", i, once[i].Position, twice[i].Position)
			}
		}
	})
}

func TestFilterByTag(t *testing.T) {
	all := entries(
		core.Note{ID: "a", Tags: []string{"scifi", "draft"}},
		core.Note{ID: "b", Tags: []string{"SciFi"}},
		core.Note{ID: "c", Tags: []string{"science"}},
	)

	got := core.FilterByTag(all, "scifi")
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Record.ID)

	got, err := core.FilterByTagPattern(all, "sci*")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Record.ID)
	assert.Equal(t, "c", got[1].Record.ID)

	_, err = core.FilterByTagPattern(all, "sci[")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrValidation))
}

func TestAllTags(t *testing.T) {
	notes := []core.Note{
		{Tags: []string{"b", "a"}},
		{Tags: []string{"a", "c"}},
		{},
	}
	assert.Equal(t, []string{"b", "a", "c"}, core.AllTags(notes))
	assert.Empty(t, core.AllTags[core.Note](nil))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"x", "X", "y"}, core.NormalizeTags([]string{" x", "X", "", "x ", "y", "  "}))
}
