package platform

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/fsnotify/fsnotify"

	"github.com/nootverse/noot/pkg/core"
)

const defaultDebounce = 50 * time.Millisecond

// CredentialWatcher reports session changes whenever the credential file is
// written, replaced or removed.
type CredentialWatcher struct {
	path     string
	onChange func(context.Context, core.Session)
	onError  func(error)
	logger   *slog.Logger
	delay    time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// WatcherOption configures a CredentialWatcher.
type WatcherOption func(*CredentialWatcher)

// WithWatcherLogger sets the watcher logger.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *CredentialWatcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithWatcherErrorHandler receives fsnotify and credential read failures,
// which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) WatcherOption {
	return func(w *CredentialWatcher) {
		w.onError = fn
	}
}

// WithDebounce sets how long bursts of file events are coalesced.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *CredentialWatcher) {
		w.delay = d
	}
}

// NewCredentialWatcher watches path and calls onChange with the session the
// file holds after each settled change.
func NewCredentialWatcher(path string, onChange func(context.Context, core.Session), opts ...WatcherOption) *CredentialWatcher {
	w := &CredentialWatcher{
		path:     filepath.Clean(path),
		onChange: onChange,
		logger:   slog.New(slog.DiscardHandler),
		delay:    defaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins watching. The watch runs until ctx is done. The parent
// directory is watched so atomic replacements are seen.
func (w *CredentialWatcher) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.logger.Debug("watching credentials", "path", w.path)
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer watcher.Close()
		defer w.stopTimer()
		return w.loop(ctx, watcher)
	}, lifecycle.WithErrorHandler(func(err error) {
		w.report(fmt.Errorf("credential watcher panic: %w", err))
	}))
	return nil
}

func (w *CredentialWatcher) loop(ctx context.Context, watcher *fsnotify.Watcher) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			w.logger.Debug("credential file changed", "op", event.Op.String())
			w.schedule(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.report(err)
		}
	}
}

// schedule coalesces bursts (temp write, rename) into one reload.
func (w *CredentialWatcher) schedule(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, func() {
		if ctx.Err() != nil {
			return
		}
		session, err := ReadSession(w.path)
		if err != nil {
			w.report(err)
			return
		}
		w.onChange(ctx, session)
	})
}

func (w *CredentialWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *CredentialWatcher) report(err error) {
	w.logger.Error("credential watcher", "error", err)
	if w.onError != nil {
		w.onError(err)
	}
}
