package platform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/introspection"
	"github.com/aretw0/lifecycle"
	"golang.org/x/sync/errgroup"

	"github.com/nootverse/noot/pkg/adapters/actor"
	nootlifecycle "github.com/nootverse/noot/pkg/adapters/lifecycle"
	"github.com/nootverse/noot/pkg/core"
	"github.com/nootverse/noot/pkg/typed"
)

// App wires one actor client to the engines of every scope and keeps their
// sessions in step.
type App struct {
	Client          *actor.Client
	Notes           *core.Engine[core.Note]
	MyUniverses     *core.Engine[core.Universe]
	PublicUniverses *core.Engine[core.Universe]

	config         Config
	credentialPath string
	logger         *slog.Logger

	mu      sync.Mutex
	session core.Session
}

// New builds the App for cfg. Unless WithSession is given, the initial
// session is read from the credential file.
func New(cfg Config, opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	credentialPath := o.credentialFile
	if credentialPath == "" {
		var err error
		if credentialPath, err = cfg.CredentialPath(); err != nil {
			return nil, err
		}
	}

	var session core.Session
	if o.session != nil {
		session = *o.session
	} else {
		var err error
		if session, err = ReadSession(credentialPath); err != nil {
			return nil, err
		}
	}

	buffer := o.eventBuffer
	if buffer == 0 {
		buffer = cfg.EventBuffer
	}

	client := actor.NewClient(cfg.GatewayHost(), cfg.CanisterID,
		actor.WithHTTPClient(o.httpClient),
		actor.WithLogger(logger.With("component", "actor")),
		actor.WithCredential(session.Credential),
	)

	engineOpts := []core.EngineOption{
		core.WithLogger(logger),
		core.WithSession(session),
		core.WithEventBuffer(buffer),
	}

	logger.Debug("app ready", "host", client.Host(), "canister", client.Canister(), "authenticated", session.Authenticated)
	return &App{
		Client:          client,
		Notes:           typed.NewNotesEngine(client, engineOpts...),
		MyUniverses:     typed.NewOwnedUniversesEngine(client, engineOpts...),
		PublicUniverses: typed.NewPublicUniversesEngine(client, engineOpts...),
		config:          cfg,
		credentialPath:  credentialPath,
		logger:          logger,
		session:         session,
	}, nil
}

// Config returns the configuration the App was built with.
func (a *App) Config() Config { return a.config }

// CredentialPath returns the credential file the App reads and watches.
func (a *App) CredentialPath() string { return a.credentialPath }

func (a *App) Session() core.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// SetSession swaps the client credential and forwards s to every engine.
// Engines that reload report their errors joined.
func (a *App) SetSession(ctx context.Context, s core.Session) error {
	a.mu.Lock()
	a.session = s
	a.mu.Unlock()

	a.Client.SetCredential(s.Credential)
	return errors.Join(
		a.Notes.SetSession(ctx, s),
		a.MyUniverses.SetSession(ctx, s),
		a.PublicUniverses.SetSession(ctx, s),
	)
}

// WatchCredentials applies every change of the credential file until ctx is
// done. Reload failures go to onErr.
func (a *App) WatchCredentials(ctx context.Context, onErr func(error)) error {
	w := NewCredentialWatcher(a.credentialPath, func(ctx context.Context, s core.Session) {
		a.logger.Info("credentials changed", "authenticated", s.Authenticated, "identity", s.Identity)
		if err := a.SetSession(ctx, s); err != nil && onErr != nil {
			onErr(err)
		}
	}, WithWatcherLogger(a.logger), WithWatcherErrorHandler(onErr))
	return w.Start(ctx)
}

// Events merges the event streams of every engine.
func (a *App) Events() lifecycle.Source {
	return nootlifecycle.NewSource(a.Notes.Events(), a.MyUniverses.Events(), a.PublicUniverses.Events())
}

// Whoami asks the actor which principal the current credential maps to.
func (a *App) Whoami(ctx context.Context) (string, error) {
	principal, err := a.Client.Whoami(ctx)
	if err != nil {
		return "", fmt.Errorf("whoami: %w", err)
	}
	return principal, nil
}

// Stats fetches the aggregate counters.
func (a *App) Stats(ctx context.Context) (core.Stats, error) {
	stats, err := a.Client.GetStats(ctx)
	if err != nil {
		return core.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

// Overview is what the explore page shows.
type Overview struct {
	Public []core.Universe
	Tags   []string
	Stats  core.Stats
}

// Explore loads the public universes and the stats concurrently.
// Either failure fails the whole call.
func (a *App) Explore(ctx context.Context) (Overview, error) {
	var stats core.Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.PublicUniverses.Load(gctx)
	})
	g.Go(func() error {
		var err error
		stats, err = a.Client.GetStats(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, fmt.Errorf("explore: %w", err)
	}

	public := a.PublicUniverses.Records()
	return Overview{
		Public: public,
		Tags:   core.AllTags(public),
		Stats:  stats,
	}, nil
}

// AppState is the observable state of the App.
type AppState struct {
	Network         string `json:"network"`
	Client          any    `json:"client"`
	Notes           any    `json:"notes"`
	MyUniverses     any    `json:"my_universes"`
	PublicUniverses any    `json:"public_universes"`
}

// State implements introspection.Introspectable.
func (a *App) State() any {
	return AppState{
		Network:         a.config.Network,
		Client:          a.Client.State(),
		Notes:           a.Notes.State(),
		MyUniverses:     a.MyUniverses.State(),
		PublicUniverses: a.PublicUniverses.State(),
	}
}

func (a *App) ComponentType() string {
	return "app"
}

var (
	_ introspection.Introspectable = (*App)(nil)
	_ introspection.Component      = (*App)(nil)
)
