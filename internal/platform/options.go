package platform

import (
	"log/slog"
	"net/http"

	"github.com/nootverse/noot/pkg/core"
)

type options struct {
	logger         *slog.Logger
	httpClient     *http.Client
	session        *core.Session
	credentialFile string
	eventBuffer    int
}

// Option configures the App.
type Option func(*options)

func defaultOptions() *options {
	return &options{}
}

// WithLogger sets the logger shared by the client and every engine.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHTTPClient sets the HTTP client used to reach the actor gateway.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithSession sets the initial session instead of reading the credential file.
func WithSession(s core.Session) Option {
	return func(o *options) {
		o.session = &s
	}
}

// WithCredentialFile overrides the configured credential file.
func WithCredentialFile(path string) Option {
	return func(o *options) {
		o.credentialFile = path
	}
}

// WithEventBuffer sets the size of each engine's event channel.
// Zero means default (100).
func WithEventBuffer(size int) Option {
	return func(o *options) {
		o.eventBuffer = size
	}
}
