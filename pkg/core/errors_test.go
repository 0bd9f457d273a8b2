package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nootverse/noot/pkg/core"
)

func TestError_Is(t *testing.T) {
	err := core.Wrap(core.KindTransport, "getAllOwnedNotes", "request failed", errors.New("connection reset"))
	wrapped := fmt.Errorf("load notes: %w", err)

	assert.True(t, errors.Is(wrapped, core.ErrTransport))
	assert.False(t, errors.Is(wrapped, core.ErrRejected))
	assert.False(t, errors.Is(wrapped, core.ErrUnauthenticated))
	assert.Equal(t, core.KindTransport, core.KindOf(wrapped))
	assert.Equal(t, "getAllOwnedNotes: request failed: connection reset", err.Error())
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, core.KindInternal, core.KindOf(errors.New("boom")))
	assert.Equal(t, core.KindInternal, core.KindOf(nil))
}

func TestNotice(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{core.ErrEmptyTitle, "title cannot be empty"},
		{core.ErrUnauthenticated, "Please sign in and try again."},
		{core.New(core.KindTransport, "addNote", "timeout"), "Could not reach the service. Please try again."},
		{core.New(core.KindRejected, "addNote", "bad input"), "The service rejected the request."},
		{core.New(core.KindStalePosition, "updateNote", "gone"), "The list changed since it was loaded. It has been refreshed."},
		{core.Wrap(core.KindStalePosition, "create", core.ErrReloadRequired.Message, core.ErrTransport), "The list could not be refreshed. Please try again."},
		{errors.New("raw"), "Something went wrong."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, core.Notice(tt.err))
	}
}
