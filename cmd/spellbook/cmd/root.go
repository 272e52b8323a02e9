// Package cmd provides the CLI commands for the Spellbook client.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/spellbook-cards/spellbook-go/internal/client"
	"github.com/spellbook-cards/spellbook-go/internal/config"
	"github.com/spellbook-cards/spellbook-go/internal/errs"
	"github.com/spellbook-cards/spellbook-go/internal/session"
)

var (
	cfgFile    string
	serverURL  string
	reqTimeout time.Duration

	cfg    *config.Config
	logger *zap.Logger
	app    *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "spellbook",
	Short: "Spellbook - trading card collection manager",
	Long: `Spellbook is a CLI client for the Spellbook card collection service.

Sign in once with "spellbook login"; the session is persisted under
$XDG_CONFIG_HOME/spellbook and refreshed automatically when the access
token expires.

Configuration:
  Config is loaded from spellbook.yaml in the current directory or
  $XDG_CONFIG_HOME/spellbook/. Environment variables override config
  values with the SPELLBOOK_ prefix, e.g. SPELLBOOK_SERVER_URL.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp(cmd.Context())
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(func() { config.InitViper(cfgFile) })
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./spellbook.yaml)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Spellbook server URL (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&reqTimeout, "timeout", 0, "per-request timeout (overrides config)")
}

// initApp loads config, builds the logger, rehydrates the persisted session,
// and constructs the API client. Every command runs against a hydrated store.
func initApp(ctx context.Context) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if reqTimeout > 0 {
		cfg.Timeout = reqTimeout
	}

	logger, err = buildLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	dir := cfg.SessionDir
	if dir == "" {
		dir = session.DefaultDir()
	}
	store := session.NewStore(session.NewFileStore(dir, logger), logger)
	if err := store.Hydrate(ctx); err != nil {
		// A broken session file means starting signed out, not a dead CLI.
		logger.Warn("session restore failed", zap.Error(err))
	}

	app = client.New(cfg.ServerURL, store,
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(logger),
		client.WithUserAgent(cfg.UserAgent),
		client.WithSessionExpiredHandler(func() {
			fmt.Fprintln(os.Stderr, "Session expired. Run \"spellbook login\" to sign in again.")
		}),
	)
	return nil
}

func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

// requireAuth fails fast with a friendly message when no session exists.
func requireAuth() error {
	sess := app.Session()
	if !sess.Hydrated() {
		return errs.ErrNotHydrated
	}
	if !sess.IsAuthenticated() {
		return fmt.Errorf("not signed in (run \"spellbook login\")")
	}
	return nil
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
