package main

import (
	"fmt"
	"log/slog"
	"net/http/httptest"
	"os"

	"github.com/spf13/cobra"

	"github.com/nootverse/noot"
	"github.com/nootverse/noot/pkg/adapters/actor"
)

var (
	verbose    bool
	configPath string
	mock       bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "noot",
	Short: "Notes and universes from the Nootverse actor, kept in sync locally",
	Long: `noot loads your notes and universes from the Nootverse actor and edits them
by position. Every edit is checked against the record it was opened on, so a
list changed by another device is reloaded instead of overwritten.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to noot.yaml (default: searched upwards from the working directory)")
	rootCmd.PersistentFlags().BoolVar(&mock, "mock", false, "Use an in-process fake actor instead of the network")
}

func loadConfig() noot.Config {
	cfg, err := noot.LoadConfig(configPath)
	if err != nil {
		fatal("Failed to load config", err)
	}
	return cfg
}

// openApp builds the App from the config and the credential file. The
// returned func releases the in-process fake actor, if any.
func openApp() (*noot.App, func()) {
	cfg := loadConfig()
	cleanup := func() {}
	if mock {
		srv := httptest.NewServer(actor.NewFakeActor(actor.WithFakeLogger(slog.Default())))
		cfg.Host = srv.URL
		cleanup = srv.Close
		slog.Debug("using in-process fake actor", "host", srv.URL)
	}

	app, err := noot.New(cfg, noot.WithLogger(slog.Default()))
	if err != nil {
		cleanup()
		fatal("Failed to initialize noot", err)
	}
	return app, cleanup
}
