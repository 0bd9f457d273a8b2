package actor_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nootverse/noot/pkg/adapters/actor"
	"github.com/nootverse/noot/pkg/core"
)

const canister = "rrkah-fqaaa-aaaaa-aaaaq-cai"

func setup(t *testing.T, opts ...actor.FakeOption) (*actor.FakeActor, *actor.Client) {
	t.Helper()
	fake := actor.NewFakeActor(opts...)
	fake.Register("alice-token", "alice")
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	client := actor.NewClient(srv.URL, canister,
		actor.WithHTTPClient(srv.Client()),
		actor.WithCredential("alice-token"),
	)
	return fake, client
}

func TestClient_Notes(t *testing.T) {
	ctx := context.Background()
	_, c := setup(t)

	require.NoError(t, c.AddNote(ctx, "n1", "Groceries", "milk", []string{"home"}))
	require.NoError(t, c.AddNote(ctx, "n2", "Rocket", "fuel", nil))

	notes, err := c.GetAllOwnedNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, core.Note{ID: "n1", Title: "Groceries", Content: "milk", Tags: []string{"home"}}, notes[0])
	assert.Equal(t, []string{}, notes[1].Tags)

	require.NoError(t, c.UpdateNote(ctx, 1, "n2", "Rocket v2", "more fuel", []string{"space"}))
	require.NoError(t, c.DeleteNote(ctx, 0))

	notes, err = c.GetAllOwnedNotes(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Rocket v2", notes[0].Title)

	found, err := c.SearchNotes(ctx, "SPACE")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "n2", found[0].ID)

	who, err := c.Whoami(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", who)
}

func TestClient_WireContract(t *testing.T) {
	var gotPath, gotAuth, gotCT string
	var gotArgs []any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotCT = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = cbor.Unmarshal(body, &gotArgs)

		out, _ := cbor.Marshal(map[string]any{"ok": nil})
		w.Header().Set("Content-Type", "application/cbor")
		_, _ = w.Write(out)
	}))
	defer srv.Close()

	c := actor.NewClient(srv.URL+"/", canister, actor.WithHTTPClient(srv.Client()), actor.WithCredential("tok"))
	require.NoError(t, c.UpdateNote(context.Background(), 2, "n1", "T", "C", []string{"x"}))

	assert.Equal(t, "/api/v1/actor/"+canister+"/updateNote", gotPath)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "application/cbor", gotCT)
	require.Len(t, gotArgs, 5)
	assert.EqualValues(t, 2, gotArgs[0])
	assert.Equal(t, []any{"n1", "T", "C", []any{"x"}}, gotArgs[1:])

	c.SetCredential("")
	require.NoError(t, c.DeleteNote(context.Background(), 0))
	assert.Empty(t, gotAuth)
}

func TestClient_FailureClassification(t *testing.T) {
	errReply := func(msg string) []byte {
		out, _ := cbor.Marshal(map[string]any{"err": msg})
		return out
	}

	tests := []struct {
		name    string
		status  int
		body    []byte
		kind    core.Kind
		message string
	}{
		{"unauthorized", http.StatusUnauthorized, nil, core.KindTransport, core.ErrUnauthenticated.Message},
		{"forbidden", http.StatusForbidden, nil, core.KindTransport, core.ErrUnauthenticated.Message},
		{"server error", http.StatusBadGateway, nil, core.KindTransport, "unexpected status"},
		{"bad request with reason", http.StatusBadRequest, errReply("title too long"), core.KindRejected, "title too long"},
		{"not found", http.StatusNotFound, nil, core.KindRejected, "request rejected"},
		{"conflict", http.StatusConflict, nil, core.KindRejected, "request rejected"},
		{"unprocessable", http.StatusUnprocessableEntity, nil, core.KindRejected, "request rejected"},
		{"err reply", http.StatusOK, errReply("quota exceeded"), core.KindRejected, "quota exceeded"},
		{"out of range", http.StatusOK, errReply("index out of range"), core.KindStalePosition, "index out of range"},
		{"undecodable", http.StatusOK, []byte("not cbor at all"), core.KindTransport, "undecodable reply"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write(tt.body)
			}))
			defer srv.Close()

			c := actor.NewClient(srv.URL, canister, actor.WithHTTPClient(srv.Client()))
			_, err := c.GetAllOwnedNotes(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.kind, core.KindOf(err))

			var coded *core.Error
			require.True(t, errors.As(err, &coded))
			assert.Equal(t, "getAllOwnedNotes", coded.Op)
			assert.Equal(t, tt.message, coded.Message)
		})
	}
}

func TestClient_Unauthenticated(t *testing.T) {
	_, c := setup(t)
	c.SetCredential("")

	_, err := c.GetAllOwnedNotes(context.Background())
	assert.ErrorIs(t, err, core.ErrUnauthenticated)
	assert.Equal(t, "Please sign in and try again.", core.Notice(err))

	who, err := c.Whoami(context.Background())
	require.NoError(t, err)
	assert.Equal(t, actor.AnonymousPrincipal, who)
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := actor.NewClient(url, canister)
	err := c.AddNote(context.Background(), "n1", "t", "", nil)
	assert.ErrorIs(t, err, core.ErrTransport)
}

func TestClient_CanceledContext(t *testing.T) {
	_, c := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetAllOwnedNotes(ctx)
	assert.ErrorIs(t, err, core.ErrTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_StalePositions(t *testing.T) {
	ctx := context.Background()
	fake, c := setup(t)
	require.NoError(t, c.AddNote(ctx, "n1", "a", "", nil))

	err := c.DeleteNote(ctx, -1)
	assert.ErrorIs(t, err, core.ErrStalePosition)
	assert.Zero(t, fake.Calls("deleteNote"))

	err = c.UpdateNote(ctx, 5, "n1", "a", "", nil)
	assert.ErrorIs(t, err, core.ErrStalePosition)

	err = c.UpdateNote(ctx, 0, "other", "a", "", nil)
	assert.ErrorIs(t, err, core.ErrStalePosition)
}

func TestClient_Universes(t *testing.T) {
	ctx := context.Background()
	clock := time.Unix(0, 1_700_000_000_123_456_789)
	_, c := setup(t, actor.WithClock(func() time.Time { return clock }))

	id, err := c.CreateUniverse(ctx, core.UniverseInput{Title: "Dune", IsPublic: true, Tags: []string{"scifi"}})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	_, err = c.CreateUniverse(ctx, core.UniverseInput{Title: "Private"})
	require.NoError(t, err)

	mine, err := c.GetMyUniverses(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, id, mine[0].ID)
	assert.Equal(t, time.UnixMilli(1_700_000_000_123).UTC(), mine[0].CreatedAt)

	public, err := c.GetPublicUniverses(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Dune", public[0].Title)

	ok, err := c.UpdateUniverse(ctx, 1, core.UniverseInput{Title: "Now public", IsPublic: true})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.UpdateUniverse(ctx, 5, core.UniverseInput{Title: "missing"})
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := c.SearchUniverses(ctx, "now")
	require.NoError(t, err)
	require.Len(t, found, 1)

	stats, err := c.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.Stats{TotalUniverses: 2, PublicUniverses: 2, TotalUsers: 1}, stats)

	ok, err = c.DeleteUniverse(ctx, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	mine, err = c.GetMyUniverses(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Now public", mine[0].Title)
}

func TestClient_OwnedListsArePerPrincipal(t *testing.T) {
	ctx := context.Background()
	fake, alice := setup(t)
	fake.Register("bob-token", "bob")

	_, err := alice.CreateUniverse(ctx, core.UniverseInput{Title: "A1"})
	require.NoError(t, err)

	srv := httptest.NewServer(fake)
	defer srv.Close()
	bob := actor.NewClient(srv.URL, canister, actor.WithHTTPClient(srv.Client()), actor.WithCredential("bob-token"))
	_, err = bob.CreateUniverse(ctx, core.UniverseInput{Title: "B1"})
	require.NoError(t, err)
	_, err = alice.CreateUniverse(ctx, core.UniverseInput{Title: "A2"})
	require.NoError(t, err)

	// Alice's position 1 is A2, even though B1 sits between them remotely.
	ok, err := alice.DeleteUniverse(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)

	mine, err := alice.GetMyUniverses(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "A1", mine[0].Title)

	theirs, err := bob.GetMyUniverses(ctx)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
}

func TestClient_State(t *testing.T) {
	fake, c := setup(t)
	fake.FailNext("whoami", http.StatusInternalServerError, "")

	_, _ = c.Whoami(context.Background())
	_, _ = c.Whoami(context.Background())

	state, ok := c.State().(actor.ClientState)
	require.True(t, ok)
	assert.Equal(t, canister, state.Canister)
	assert.True(t, state.Authenticated)
	assert.Equal(t, uint64(2), state.Calls)
	assert.Equal(t, uint64(1), state.Failures)
	assert.Equal(t, "actor", c.ComponentType())
}

func TestFromNanos(t *testing.T) {
	assert.Equal(t, time.UnixMilli(1).UTC(), actor.FromNanos(1_999_999))
	assert.Equal(t, time.UnixMilli(0).UTC(), actor.FromNanos(0))
}
