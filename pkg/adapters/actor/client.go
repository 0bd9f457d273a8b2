// Package actor talks to the Nootverse actor through its HTTP gateway.
//
// Every actor method is a POST of a CBOR array of positional arguments to
// {host}/api/v1/actor/{canister}/{method}. The reply is a CBOR map holding
// either "ok" or "err".
package actor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/aretw0/introspection"
	"github.com/nootverse/noot/pkg/core"
)

const (
	contentType = "application/cbor"
	maxReply    = 16 << 20

	// outOfRange is the actor's reply when a position does not exist.
	outOfRange = "index out of range"
	// idMismatch is the actor's reply when a position holds another record.
	idMismatch = "id mismatch"
)

// Client is a typed wrapper over the actor methods. It is safe for
// concurrent use; the credential can be swapped while calls are in flight.
type Client struct {
	host       string
	canister   string
	httpClient *http.Client
	logger     *slog.Logger

	mu         sync.RWMutex
	credential string

	calls    atomic.Uint64
	failures atomic.Uint64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client. Defaults to http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCredential sets the initial bearer credential.
func WithCredential(credential string) Option {
	return func(c *Client) {
		c.credential = credential
	}
}

// NewClient returns a client for the actor deployed as canister on host.
func NewClient(host, canister string, opts ...Option) *Client {
	c := &Client{
		host:       strings.TrimRight(host, "/"),
		canister:   canister,
		httpClient: http.DefaultClient,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetCredential replaces the bearer credential. Empty means anonymous.
func (c *Client) SetCredential(credential string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credential = credential
}

func (c *Client) Host() string     { return c.host }
func (c *Client) Canister() string { return c.canister }

func (c *Client) endpoint(method string) (string, error) {
	if c.host == "" {
		return "", fmt.Errorf("missing actor host")
	}
	if c.canister == "" {
		return "", fmt.Errorf("missing canister id")
	}
	u, err := url.Parse(c.host)
	if err != nil {
		return "", fmt.Errorf("invalid actor host: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/actor/" + url.PathEscape(c.canister) + "/" + method
	return u.String(), nil
}

// call invokes method with args and decodes the ok value into out.
// out may be nil for methods without a result.
func (c *Client) call(ctx context.Context, method string, out any, args ...any) error {
	c.calls.Add(1)
	err := c.do(ctx, method, out, args)
	if err != nil {
		c.failures.Add(1)
		c.logger.Debug("actor call failed", "method", method, "error", err)
	}
	return err
}

func (c *Client) do(ctx context.Context, method string, out any, args []any) error {
	endpoint, err := c.endpoint(method)
	if err != nil {
		return core.Wrap(core.KindTransport, method, "invalid endpoint", err)
	}
	if args == nil {
		args = []any{}
	}
	body, err := marshal(args)
	if err != nil {
		return core.Wrap(core.KindInternal, method, "encode arguments", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return core.Wrap(core.KindTransport, method, "build request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", contentType)
	c.mu.RLock()
	credential := c.credential
	c.mu.RUnlock()
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	c.logger.Debug("actor call", "method", method, "args", len(args))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.Wrap(core.KindTransport, method, "request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReply))
	if err != nil {
		return core.Wrap(core.KindTransport, method, "read reply", err)
	}
	if err := classifyStatus(method, resp.StatusCode, data); err != nil {
		return err
	}

	var r reply
	if err := unmarshal(data, &r); err != nil {
		return core.Wrap(core.KindTransport, method, "undecodable reply", err)
	}
	if r.Err != nil {
		if stalePosition(*r.Err) {
			return core.New(core.KindStalePosition, method, *r.Err)
		}
		return core.New(core.KindRejected, method, *r.Err)
	}
	if out == nil {
		return nil
	}
	if len(r.Ok) == 0 {
		return core.Wrap(core.KindTransport, method, "undecodable reply", errors.New("missing ok value"))
	}
	if err := unmarshal(r.Ok, out); err != nil {
		return core.Wrap(core.KindTransport, method, "undecodable reply", err)
	}
	return nil
}

// classifyStatus maps non-2xx statuses. A rejection body may carry an err
// reply whose message is kept.
func classifyStatus(method string, status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	cause := fmt.Errorf("http %d", status)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return core.Wrap(core.KindTransport, method, core.ErrUnauthenticated.Message, cause)
	case status == http.StatusBadRequest, status == http.StatusNotFound,
		status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		var r reply
		if err := unmarshal(body, &r); err == nil && r.Err != nil {
			if stalePosition(*r.Err) {
				return core.Wrap(core.KindStalePosition, method, *r.Err, cause)
			}
			return core.Wrap(core.KindRejected, method, *r.Err, cause)
		}
		return core.Wrap(core.KindRejected, method, "request rejected", cause)
	default:
		return core.Wrap(core.KindTransport, method, "unexpected status", cause)
	}
}

func stalePosition(msg string) bool {
	return msg == outOfRange || msg == idMismatch
}

func position(method string, p int) (uint64, error) {
	if p < 0 {
		return 0, core.New(core.KindStalePosition, method, outOfRange)
	}
	return uint64(p), nil
}

// --- Notes ---

// AddNote appends a note to the caller's list.
func (c *Client) AddNote(ctx context.Context, id, title, content string, tags []string) error {
	return c.call(ctx, "addNote", nil, id, title, content, nonNil(tags))
}

// GetAllOwnedNotes returns the caller's notes in list order.
func (c *Client) GetAllOwnedNotes(ctx context.Context) ([]core.Note, error) {
	var ws []wireNote
	if err := c.call(ctx, "getAllOwnedNotes", &ws); err != nil {
		return nil, err
	}
	return notesToCore(ws), nil
}

// UpdateNote replaces the note at position. id is checked by the actor.
func (c *Client) UpdateNote(ctx context.Context, pos int, id, title, content string, tags []string) error {
	p, err := position("updateNote", pos)
	if err != nil {
		return err
	}
	return c.call(ctx, "updateNote", nil, p, id, title, content, nonNil(tags))
}

// DeleteNote removes the note at position.
func (c *Client) DeleteNote(ctx context.Context, pos int) error {
	p, err := position("deleteNote", pos)
	if err != nil {
		return err
	}
	return c.call(ctx, "deleteNote", nil, p)
}

// SearchNotes runs the actor's full-text search over the caller's notes.
// Result order carries no positional meaning.
func (c *Client) SearchNotes(ctx context.Context, query string) ([]core.Note, error) {
	var ws []wireNote
	if err := c.call(ctx, "searchNotes", &ws, query); err != nil {
		return nil, err
	}
	return notesToCore(ws), nil
}

// Whoami returns the principal the actor sees for the current credential.
func (c *Client) Whoami(ctx context.Context) (string, error) {
	var principal string
	if err := c.call(ctx, "whoami", &principal); err != nil {
		return "", err
	}
	return principal, nil
}

// --- Universes ---

// CreateUniverse appends a universe and returns its generated id.
func (c *Client) CreateUniverse(ctx context.Context, in core.UniverseInput) (string, error) {
	var id string
	if err := c.call(ctx, "createUniverse", &id, toWireInput(in)); err != nil {
		return "", err
	}
	return id, nil
}

func (c *Client) GetMyUniverses(ctx context.Context) ([]core.Universe, error) {
	return c.universes(ctx, "getMyUniverses")
}

func (c *Client) GetPublicUniverses(ctx context.Context) ([]core.Universe, error) {
	return c.universes(ctx, "getPublicUniverses")
}

// UpdateUniverse replaces the caller's universe at position. The actor
// answers false when the position does not exist.
func (c *Client) UpdateUniverse(ctx context.Context, pos int, in core.UniverseInput) (bool, error) {
	p, err := position("updateUniverse", pos)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := c.call(ctx, "updateUniverse", &ok, p, toWireInput(in)); err != nil {
		return false, err
	}
	return ok, nil
}

// DeleteUniverse removes the caller's universe at position.
func (c *Client) DeleteUniverse(ctx context.Context, pos int) (bool, error) {
	p, err := position("deleteUniverse", pos)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := c.call(ctx, "deleteUniverse", &ok, p); err != nil {
		return false, err
	}
	return ok, nil
}

// SearchUniverses searches public universes.
func (c *Client) SearchUniverses(ctx context.Context, query string) ([]core.Universe, error) {
	return c.universes(ctx, "searchUniverses", query)
}

func (c *Client) GetStats(ctx context.Context) (core.Stats, error) {
	var w wireStats
	if err := c.call(ctx, "getStats", &w); err != nil {
		return core.Stats{}, err
	}
	return core.Stats{
		TotalUniverses:  int(w.TotalUniverses),
		PublicUniverses: int(w.PublicUniverses),
		TotalUsers:      int(w.TotalUsers),
	}, nil
}

func (c *Client) universes(ctx context.Context, method string, args ...any) ([]core.Universe, error) {
	var ws []wireUniverse
	if err := c.call(ctx, method, &ws, args...); err != nil {
		return nil, err
	}
	return universesToCore(ws), nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// --- Introspection ---

// ClientState is the observable state of a Client.
type ClientState struct {
	Host          string `json:"host"`
	Canister      string `json:"canister"`
	Authenticated bool   `json:"authenticated"`
	Calls         uint64 `json:"calls"`
	Failures      uint64 `json:"failures"`
}

// State implements introspection.Introspectable.
func (c *Client) State() any {
	c.mu.RLock()
	authenticated := c.credential != ""
	c.mu.RUnlock()
	return ClientState{
		Host:          c.host,
		Canister:      c.canister,
		Authenticated: authenticated,
		Calls:         c.calls.Load(),
		Failures:      c.failures.Load(),
	}
}

// ComponentType implements introspection.Component.
func (c *Client) ComponentType() string {
	return "actor"
}

var (
	_ introspection.Introspectable = (*Client)(nil)
	_ introspection.Component      = (*Client)(nil)
)
