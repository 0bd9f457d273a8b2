package main

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nootverse/noot/pkg/adapters/actor"
	"github.com/nootverse/noot/pkg/core"
)

func run(t *testing.T, args ...string) {
	t.Helper()
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), "noot %s", strings.Join(args, " "))
}

func TestCLI_NotesFlow(t *testing.T) {
	fake := actor.NewFakeActor()
	fake.Register("alice-token", "alice")
	srv := httptest.NewServer(fake)
	defer srv.Close()
	t.Setenv("NOOT_HOST", srv.URL)

	dir := t.TempDir()
	cfg := filepath.Join(dir, "noot.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("network: local\ncredential_file: creds.yaml\n"), 0o644))

	run(t, "--config", cfg, "login", "--identity", "alice", "--credential", "alice-token")
	assert.FileExists(t, filepath.Join(dir, "creds.yaml"))

	run(t, "--config", cfg, "notes", "add", "--title", " Groceries ", "--tag", "home")
	run(t, "--config", cfg, "notes", "edit", "0", "--content", "milk")

	client := actor.NewClient(srv.URL, "rrkah-fqaaa-aaaaa-aaaaq-cai", actor.WithCredential("alice-token"))
	notes, err := client.GetAllOwnedNotes(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Groceries", notes[0].Title)
	assert.Equal(t, "milk", notes[0].Content)
	assert.Equal(t, []string{"home"}, notes[0].Tags)

	run(t, "--config", cfg, "notes", "list", "--json")
	run(t, "--config", cfg, "notes", "delete", "0", "--yes")
	notes, err = client.GetAllOwnedNotes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, notes)

	run(t, "--config", cfg, "logout")
	assert.NoFileExists(t, filepath.Join(dir, "creds.yaml"))
}

func TestCLI_UniversesFlow(t *testing.T) {
	fake := actor.NewFakeActor()
	srv := httptest.NewServer(fake)
	defer srv.Close()
	t.Setenv("NOOT_HOST", srv.URL)

	dir := t.TempDir()
	cfg := filepath.Join(dir, "noot.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("credential_file: creds.yaml\n"), 0o644))

	run(t, "--config", cfg, "login", "--identity", "bob", "--credential", "bob")
	run(t, "--config", cfg, "universes", "create", "--title", "Dune", "--public", "--tag", "scifi")
	run(t, "--config", cfg, "universes", "update", "0", "--description", "desert planet")
	run(t, "--config", cfg, "universes", "public", "--tag", "sci*")
	run(t, "--config", cfg, "explore")

	client := actor.NewClient(srv.URL, "rrkah-fqaaa-aaaaa-aaaaq-cai")
	public, err := client.GetPublicUniverses(context.Background())
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "desert planet", public[0].Description)
	assert.True(t, public[0].IsPublic, "omitted flags keep their value")
	assert.Equal(t, 1, fake.Calls("getStats"))
}

func TestFail_ReleasesBeforeExit(t *testing.T) {
	srv := httptest.NewServer(actor.NewFakeActor())
	var order []string
	cleanup := func() {
		order = append(order, "cleanup")
		srv.Close()
	}

	exit = func(code int) {
		order = append(order, "exit")
		panic(code)
	}
	t.Cleanup(func() { exit = os.Exit })

	assert.PanicsWithValue(t, 1, func() {
		fail(cleanup, "Failed to load notes", core.ErrTransport)
	})
	assert.Equal(t, []string{"cleanup", "exit"}, order)

	_, err := srv.Client().Get(srv.URL)
	assert.Error(t, err, "the fake actor must be closed before exiting")
}

func TestConfirm(t *testing.T) {
	assert.True(t, confirm(strings.NewReader("y\n"), "Delete?"))
	assert.True(t, confirm(strings.NewReader(" YES \n"), "Delete?"))
	assert.False(t, confirm(strings.NewReader("\n"), "Delete?"))
	assert.False(t, confirm(strings.NewReader(""), "Delete?"))
}

func TestDescribeUniverse(t *testing.T) {
	u := core.Universe{Title: "Dune", IsPublic: true, Tags: []string{"scifi", "desert"}}
	assert.Equal(t, "Dune (public) [scifi, desert]", describeUniverse(u))

	u = core.Universe{Title: "Notes", UpdatedAt: time.Date(2024, 1, 2, 3, 4, 0, 0, time.Local)}
	assert.Equal(t, "Notes (private) 2024-01-02 03:04", describeUniverse(u))
}
