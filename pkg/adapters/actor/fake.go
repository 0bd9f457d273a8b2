package actor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// AnonymousPrincipal is the principal of calls without a credential.
const AnonymousPrincipal = "2vxsx-fae"

type ownedUniverse struct {
	owner string
	u     wireUniverse
}

type injected struct {
	status int
	err    string
}

// FakeActor is an in-memory actor served over the gateway protocol.
// Notes are kept as one positional list per principal. Universes live in a
// single list; a principal's owned list is the subsequence it created.
type FakeActor struct {
	mu         sync.Mutex
	principals map[string]string
	notes      map[string][]wireNote
	universes  []ownedUniverse
	users      map[string]struct{}
	calls      map[string]int
	failures   map[string]injected
	hooks      map[string]func()
	now        func() time.Time
	logger     *slog.Logger
}

// FakeOption configures a FakeActor.
type FakeOption func(*FakeActor)

// WithClock sets the time source used for universe timestamps.
func WithClock(now func() time.Time) FakeOption {
	return func(f *FakeActor) {
		f.now = now
	}
}

// WithFakeLogger sets the logger of the fake.
func WithFakeLogger(logger *slog.Logger) FakeOption {
	return func(f *FakeActor) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// NewFakeActor returns an empty fake actor.
func NewFakeActor(opts ...FakeOption) *FakeActor {
	f := &FakeActor{
		principals: make(map[string]string),
		notes:      make(map[string][]wireNote),
		users:      make(map[string]struct{}),
		calls:      make(map[string]int),
		failures:   make(map[string]injected),
		hooks:      make(map[string]func()),
		now:        time.Now,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Register maps credential to principal. Unregistered credentials act as
// their own principal.
func (f *FakeActor) Register(credential, principal string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.principals[credential] = principal
}

// FailNext makes the next call to method answer with status. A non-empty
// message is sent as an err reply.
func (f *FakeActor) FailNext(method string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = injected{status: status, err: message}
}

// Hook runs fn before the next call to method is served.
func (f *FakeActor) Hook(method string, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[method] = fn
}

// Calls returns how many times method was invoked.
func (f *FakeActor) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

// ServeHTTP implements http.Handler.
func (f *FakeActor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest, ok := strings.CutPrefix(r.URL.Path, "/api/v1/actor/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	_, method, ok := strings.Cut(rest, "/")
	if !ok || method == "" {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxReply))
	if err != nil {
		writeReply(w, http.StatusBadRequest, map[string]any{"err": "unreadable body"})
		return
	}
	var args []cbor.RawMessage
	if err := unmarshal(body, &args); err != nil {
		writeReply(w, http.StatusBadRequest, map[string]any{"err": "arguments must be a CBOR array"})
		return
	}

	f.mu.Lock()
	f.calls[method]++
	hook := f.hooks[method]
	delete(f.hooks, method)
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if fail, ok := f.failures[method]; ok {
		delete(f.failures, method)
		if fail.err != "" {
			writeReply(w, fail.status, map[string]any{"err": fail.err})
		} else {
			w.WriteHeader(fail.status)
		}
		return
	}

	principal := AnonymousPrincipal
	if credential, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && credential != "" {
		principal = credential
		if p, ok := f.principals[credential]; ok {
			principal = p
		}
	}

	f.logger.Debug("fake actor call", "method", method, "principal", principal)
	value, err := f.dispatch(method, principal, args)
	if err != nil {
		var ae *actorError
		if errors.As(err, &ae) {
			writeReply(w, ae.status, map[string]any{"err": ae.msg})
			return
		}
		writeReply(w, http.StatusOK, map[string]any{"err": err.Error()})
		return
	}
	writeReply(w, http.StatusOK, map[string]any{"ok": value})
}

// actorError is a failure answered with a specific status.
type actorError struct {
	status int
	msg    string
}

func (e *actorError) Error() string { return e.msg }

var errAnonymous = &actorError{status: http.StatusUnauthorized, msg: "anonymous caller"}

func writeReply(w http.ResponseWriter, status int, v map[string]any) {
	data, err := marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func decodeArgs(args []cbor.RawMessage, out ...any) error {
	if len(args) != len(out) {
		return &actorError{status: http.StatusBadRequest, msg: fmt.Sprintf("expected %d arguments, got %d", len(out), len(args))}
	}
	for i, a := range args {
		if err := unmarshal(a, out[i]); err != nil {
			return &actorError{status: http.StatusBadRequest, msg: fmt.Sprintf("argument %d: %v", i, err)}
		}
	}
	return nil
}

// dispatch must be called with f.mu held.
func (f *FakeActor) dispatch(method, principal string, args []cbor.RawMessage) (any, error) {
	owned := principal != AnonymousPrincipal
	if owned {
		f.users[principal] = struct{}{}
	}

	switch method {
	case "whoami":
		return principal, decodeArgs(args)

	case "addNote":
		if !owned {
			return nil, errAnonymous
		}
		var n wireNote
		if err := decodeArgs(args, &n.ID, &n.Title, &n.Content, &n.Tags); err != nil {
			return nil, err
		}
		f.notes[principal] = append(f.notes[principal], n)
		return nil, nil

	case "getAllOwnedNotes":
		if !owned {
			return nil, errAnonymous
		}
		if err := decodeArgs(args); err != nil {
			return nil, err
		}
		return append([]wireNote{}, f.notes[principal]...), nil

	case "updateNote":
		if !owned {
			return nil, errAnonymous
		}
		var pos uint64
		var n wireNote
		if err := decodeArgs(args, &pos, &n.ID, &n.Title, &n.Content, &n.Tags); err != nil {
			return nil, err
		}
		list := f.notes[principal]
		if pos >= uint64(len(list)) {
			return nil, errors.New(outOfRange)
		}
		if list[pos].ID != n.ID {
			return nil, errors.New(idMismatch)
		}
		list[pos] = n
		return nil, nil

	case "deleteNote":
		if !owned {
			return nil, errAnonymous
		}
		var pos uint64
		if err := decodeArgs(args, &pos); err != nil {
			return nil, err
		}
		list := f.notes[principal]
		if pos >= uint64(len(list)) {
			return nil, errors.New(outOfRange)
		}
		f.notes[principal] = append(list[:pos], list[pos+1:]...)
		return nil, nil

	case "searchNotes":
		if !owned {
			return nil, errAnonymous
		}
		var query string
		if err := decodeArgs(args, &query); err != nil {
			return nil, err
		}
		out := []wireNote{}
		for _, n := range f.notes[principal] {
			if matches(query, append([]string{n.Title, n.Content}, n.Tags...)...) {
				out = append(out, n)
			}
		}
		return out, nil

	case "createUniverse":
		if !owned {
			return nil, errAnonymous
		}
		var in wireUniverseInput
		if err := decodeArgs(args, &in); err != nil {
			return nil, err
		}
		now := f.now().UnixNano()
		u := wireUniverse{
			ID:          uuid.NewString(),
			Title:       in.Title,
			Description: in.Description,
			Content:     in.Content,
			IsPublic:    in.IsPublic,
			Tags:        in.Tags,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		f.universes = append(f.universes, ownedUniverse{owner: principal, u: u})
		return u.ID, nil

	case "getMyUniverses":
		if !owned {
			return nil, errAnonymous
		}
		if err := decodeArgs(args); err != nil {
			return nil, err
		}
		out := []wireUniverse{}
		for _, i := range f.ownedIndexes(principal) {
			out = append(out, f.universes[i].u)
		}
		return out, nil

	case "getPublicUniverses":
		if err := decodeArgs(args); err != nil {
			return nil, err
		}
		return f.public(""), nil

	case "updateUniverse":
		if !owned {
			return nil, errAnonymous
		}
		var pos uint64
		var in wireUniverseInput
		if err := decodeArgs(args, &pos, &in); err != nil {
			return nil, err
		}
		idx := f.ownedIndexes(principal)
		if pos >= uint64(len(idx)) {
			return false, nil
		}
		u := &f.universes[idx[pos]].u
		u.Title, u.Description, u.Content = in.Title, in.Description, in.Content
		u.IsPublic, u.Tags = in.IsPublic, in.Tags
		u.UpdatedAt = f.now().UnixNano()
		return true, nil

	case "deleteUniverse":
		if !owned {
			return nil, errAnonymous
		}
		var pos uint64
		if err := decodeArgs(args, &pos); err != nil {
			return nil, err
		}
		idx := f.ownedIndexes(principal)
		if pos >= uint64(len(idx)) {
			return false, nil
		}
		i := idx[pos]
		f.universes = append(f.universes[:i], f.universes[i+1:]...)
		return true, nil

	case "searchUniverses":
		var query string
		if err := decodeArgs(args, &query); err != nil {
			return nil, err
		}
		return f.public(query), nil

	case "getStats":
		if err := decodeArgs(args); err != nil {
			return nil, err
		}
		public := 0
		for _, ou := range f.universes {
			if ou.u.IsPublic {
				public++
			}
		}
		return wireStats{
			TotalUniverses:  uint64(len(f.universes)),
			PublicUniverses: uint64(public),
			TotalUsers:      uint64(len(f.users)),
		}, nil

	default:
		return nil, &actorError{status: http.StatusNotFound, msg: "unknown method " + method}
	}
}

func (f *FakeActor) ownedIndexes(principal string) []int {
	var idx []int
	for i, ou := range f.universes {
		if ou.owner == principal {
			idx = append(idx, i)
		}
	}
	return idx
}

func (f *FakeActor) public(query string) []wireUniverse {
	out := []wireUniverse{}
	for _, ou := range f.universes {
		if !ou.u.IsPublic {
			continue
		}
		if query != "" && !matches(query, append([]string{ou.u.Title, ou.u.Description}, ou.u.Tags...)...) {
			continue
		}
		out = append(out, ou.u)
	}
	return out
}

func matches(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
