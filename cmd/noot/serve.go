package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nootverse/noot/pkg/adapters/actor"
)

var serveAddr string

var serveMockCmd = &cobra.Command{
	Use:   "serve-mock",
	Short: "Serve an in-memory fake actor for local development",
	Long: `serve-mock speaks the gateway protocol with an in-memory actor. Point other
noot commands at it with NOOT_HOST=http://<addr>. Any credential is accepted
and acts as its own principal.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{
			Addr:              serveAddr,
			Handler:           actor.NewFakeActor(actor.WithFakeLogger(slog.Default())),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.ListenAndServe()
		}()
		fmt.Fprintf(os.Stderr, "Fake actor listening on %s\n", serveAddr)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				fatal("Fake actor stopped", err)
			}
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				fatal("Failed to shut down", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveMockCmd)
	serveMockCmd.Flags().StringVar(&serveAddr, "addr", "127.0.0.1:4943", "Listen address")
}
