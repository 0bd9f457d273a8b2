package noot

import (
	"log/slog"
	"net/http"

	"github.com/nootverse/noot/internal/platform"
	"github.com/nootverse/noot/pkg/core"
)

// Version is declared in version.go, embedded from VERSION.

// --- Types ---

// App is a public alias for the wired client and engines.
type App = platform.App

// Config is a public alias for the deployment configuration.
type Config = platform.Config

// Overview is a public alias for the explore page data.
type Overview = platform.Overview

// Credentials is a public alias for the credential file contents.
type Credentials = platform.Credentials

// NotesEngine keeps the caller's notes in sync.
type NotesEngine = core.Engine[core.Note]

// UniversesEngine keeps a universe list in sync.
type UniversesEngine = core.Engine[core.Universe]

// --- Configuration ---

// Option defines a functional option for configuring the App.
type Option = platform.Option

// WithLogger sets the logger shared by the client and every engine.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithHTTPClient sets the HTTP client used to reach the actor gateway.
func WithHTTPClient(hc *http.Client) Option {
	return platform.WithHTTPClient(hc)
}

// WithSession sets the initial session instead of reading the credential file.
func WithSession(s core.Session) Option {
	return platform.WithSession(s)
}

// WithCredentialFile overrides the configured credential file.
func WithCredentialFile(path string) Option {
	return platform.WithCredentialFile(path)
}

// WithEventBuffer sets the size of each engine's event channel.
func WithEventBuffer(size int) Option {
	return platform.WithEventBuffer(size)
}

// DefaultConfig targets the local replica with the default canister.
func DefaultConfig() Config {
	return platform.DefaultConfig()
}

// LoadConfig reads noot.yaml (searched upwards when path is empty) and
// applies environment overrides.
func LoadConfig(path string) (Config, error) {
	return platform.LoadConfig(path)
}

// --- Factory ---

// New wires a client and the notes, owned universes and public universes
// engines for cfg.
func New(cfg Config, opts ...Option) (*App, error) {
	return platform.New(cfg, opts...)
}

// --- Credentials ---

// SaveCredentials writes the credential file read by New and watched by
// App.WatchCredentials.
func SaveCredentials(path string, c Credentials) error {
	return platform.SaveCredentials(path, c)
}

// RemoveCredentials deletes the credential file, signing every watcher out.
func RemoveCredentials(path string) error {
	return platform.RemoveCredentials(path)
}
