package core_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/nootverse/noot/pkg/core"
)

func benchEngine(b *testing.B, n int) (*core.Engine[core.Note], *MockStore) {
	b.Helper()
	notes := make([]core.Note, n)
	for i := range notes {
		notes[i] = core.Note{ID: fmt.Sprintf("n%d", i), Title: fmt.Sprintf("note %d", i), Tags: []string{"bench"}}
	}
	store := NewMockStore(notes...)
	e := core.NewEngine[core.Note](core.ScopeNotes, store, core.WithSession(core.NewSession("bench", "t")))
	if err := e.Load(context.Background()); err != nil {
		b.Fatal(err)
	}
	return e, store
}

func BenchmarkEngine_Load(b *testing.B) {
	e, _ := benchEngine(b, 1000)
	ctx := context.Background()
	b.ResetTimer()
	for b.Loop() {
		if err := e.Load(ctx); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEngine_UpdateCommit(b *testing.B) {
	e, _ := benchEngine(b, 1000)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; b.Loop(); i++ {
		if _, err := e.OpenEdit(i % 1000); err != nil {
			b.Fatal(err)
		}
		if _, err := e.Commit(ctx, core.Note{Title: "edited"}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFilter(b *testing.B) {
	e, _ := benchEngine(b, 1000)
	entries := e.View()
	b.ResetTimer()
	for b.Loop() {
		_ = core.Filter(entries, "NOTE 9")
	}
}
