package core_test

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nootverse/noot/pkg/core"
)

// MockStore implements core.Store and core.Mutator over an in-memory positional
// list. It deliberately does NOT implement core.Searcher; see searchStore.
type MockStore struct {
	mu    sync.Mutex
	notes []core.Note
	seq   int
	calls map[string]int

	// fail, when set, is returned by the next remote call.
	fail error
	// hooks run at the start of the named call, outside the lock.
	hooks map[string]func(n int)
}

func NewMockStore(notes ...core.Note) *MockStore {
	return &MockStore{
		notes: append([]core.Note(nil), notes...),
		calls: make(map[string]int),
		hooks: make(map[string]func(int)),
	}
}

func (m *MockStore) enter(op string) error {
	m.mu.Lock()
	m.calls[op]++
	n := m.calls[op]
	hook := m.hooks[op]
	m.mu.Unlock()

	if hook != nil {
		hook(n)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		err := m.fail
		m.fail = nil
		return err
	}
	return nil
}

func (m *MockStore) Calls(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

func (m *MockStore) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func (m *MockStore) Hook(op string, fn func(n int)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[op] = fn
}

// Remote returns the authoritative list.
func (m *MockStore) Remote() []core.Note {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]core.Note(nil), m.notes...)
}

// SetRemote replaces the authoritative list, as another client would.
func (m *MockStore) SetRemote(notes ...core.Note) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notes = append([]core.Note(nil), notes...)
}

func (m *MockStore) Load(ctx context.Context) ([]core.Note, error) {
	if err := m.enter("load"); err != nil {
		return nil, err
	}
	return m.Remote(), nil
}

func (m *MockStore) Create(ctx context.Context, draft core.Note) (core.Note, error) {
	if err := m.enter("create"); err != nil {
		return core.Note{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := draft.Normalized()
	if n.ID == "" {
		m.seq++
		n.ID = fmt.Sprintf("note-%d", m.seq)
	}
	m.notes = append(m.notes, n)
	return n, nil
}

func (m *MockStore) UpdateAt(ctx context.Context, position int, id string, rec core.Note) (core.Note, error) {
	if err := m.enter("update"); err != nil {
		return core.Note{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if position < 0 || position >= len(m.notes) {
		return core.Note{}, core.New(core.KindStalePosition, "updateNote", "index out of range")
	}
	n := rec.Normalized()
	n.ID = id
	m.notes[position] = n
	return n, nil
}

func (m *MockStore) DeleteAt(ctx context.Context, position int) error {
	if err := m.enter("delete"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if position < 0 || position >= len(m.notes) {
		return core.New(core.KindStalePosition, "deleteNote", "index out of range")
	}
	m.notes = append(m.notes[:position], m.notes[position+1:]...)
	return nil
}

// searchStore adds case-insensitive server-side search and returns results
// in reverse list order, so positions cannot be inferred from it.
type searchStore struct {
	*MockStore
}

func (s searchStore) Search(ctx context.Context, query string) ([]core.Note, error) {
	if err := s.enter("search"); err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	var out []core.Note
	remote := s.Remote()
	for i := len(remote) - 1; i >= 0; i-- {
		if strings.Contains(strings.ToLower(remote[i].Title+" "+remote[i].Content), q) {
			out = append(out, remote[i])
		}
	}
	return out, nil
}

// readOnlyStore only loads.
type readOnlyStore struct {
	notes []core.Note
}

func (r readOnlyStore) Load(ctx context.Context) ([]core.Note, error) {
	return r.notes, nil
}

func note(id, title string, tags ...string) core.Note {
	return core.Note{ID: id, Title: title, Tags: tags}
}

func titles(notes []core.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.Title
	}
	return out
}
