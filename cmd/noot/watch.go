package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nootverse/noot/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print engine events while following the credential file",
	Long: `watch loads every list the current session can see, then prints each change
applied to the local caches. Signing in or out (noot login / noot logout in
another terminal) reloads or clears the owned lists.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, cleanup := openApp()
		defer cleanup()

		onErr := func(err error) {
			slog.Warn("session change failed", "error", err, "notice", core.Notice(err))
		}

		src := app.Events()
		if err := src.Start(ctx); err != nil {
			fail(cleanup, "Failed to start event stream", err)
		}
		if err := app.WatchCredentials(ctx, onErr); err != nil {
			fail(cleanup, "Failed to watch credentials", err)
		}

		app.PublicUniverses.LoadAsync(ctx, onErr)
		if app.Session().Authenticated {
			app.Notes.LoadAsync(ctx, onErr)
			app.MyUniverses.LoadAsync(ctx, onErr)
		}

		fmt.Fprintf(os.Stderr, "Watching %s (Ctrl+C to stop)\n", app.CredentialPath())
		for {
			select {
			case <-ctx.Done():
				return
			case e, ok := <-src.Events():
				if !ok {
					return
				}
				fmt.Println(e.String())
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
