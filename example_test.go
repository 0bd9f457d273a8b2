package noot_test

import (
	"context"
	"fmt"
	"log"
	"net/http/httptest"
	"os"

	"github.com/nootverse/noot"
	"github.com/nootverse/noot/pkg/adapters/actor"
	"github.com/nootverse/noot/pkg/core"
)

// Example_basic signs in against an in-process fake actor, creates a note
// and edits it by position.
func Example_basic() {
	srv := httptest.NewServer(actor.NewFakeActor())
	defer srv.Close()

	tmp, err := os.MkdirTemp("", "noot-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmp)

	cfg := noot.DefaultConfig()
	cfg.Host = srv.URL
	cfg.CredentialFile = tmp + "/credentials.yaml"

	app, err := noot.New(cfg, noot.WithSession(core.NewSession("gopher", "gopher")))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := app.Notes.Load(ctx); err != nil {
		log.Fatal(err)
	}

	if _, err := app.Notes.OpenCreate(); err != nil {
		log.Fatal(err)
	}
	if _, err := app.Notes.Commit(ctx, core.Note{Title: " Hello ", Tags: []string{"intro"}}); err != nil {
		log.Fatal(err)
	}

	if _, err := app.Notes.OpenEdit(0); err != nil {
		log.Fatal(err)
	}
	note, err := app.Notes.Commit(ctx, core.Note{Title: "Hello, Nootverse", Tags: []string{"intro"}})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s %v (%d cached, dialog %s)\n", note.Title, note.Tags, app.Notes.Len(), app.Notes.Dialog())
	// Output:
	// Hello, Nootverse [intro] (1 cached, dialog closed)
}

// Example_staleEdit shows a dialog whose target moved being refused.
func Example_staleEdit() {
	fake := actor.NewFakeActor()
	srv := httptest.NewServer(fake)
	defer srv.Close()

	cfg := noot.DefaultConfig()
	cfg.Host = srv.URL
	app, err := noot.New(cfg, noot.WithSession(core.NewSession("gopher", "gopher")), noot.WithCredentialFile(os.DevNull))
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	other := actor.NewClient(srv.URL, cfg.CanisterID, actor.WithCredential("gopher"))
	_ = other.AddNote(ctx, "a", "first", "", nil)
	_ = other.AddNote(ctx, "b", "second", "", nil)

	_ = app.Notes.Load(ctx)
	_, _ = app.Notes.OpenEdit(1)

	// Another device deletes the first note: "second" moves to position 0.
	_ = other.DeleteNote(ctx, 0)

	_, err = app.Notes.Commit(ctx, core.Note{Title: "second, edited"})
	fmt.Println(core.Notice(err))
	fmt.Println(app.Notes.Len(), app.Notes.Dialog())
	// Output:
	// The list changed since it was loaded. It has been refreshed.
	// 1 closed
}
