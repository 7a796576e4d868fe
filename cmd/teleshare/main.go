package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bio33/TeleShare/internal/api"
	"github.com/bio33/TeleShare/internal/config"
)

// levelRouter is a slog.Handler that routes INFO/WARN to stdout and ERROR+ to stderr.
type levelRouter struct {
	level  slog.Level
	stdout slog.Handler
	stderr slog.Handler
}

func (lr *levelRouter) Enabled(_ context.Context, level slog.Level) bool {
	return level >= lr.level
}

func (lr *levelRouter) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return lr.stderr.Handle(ctx, r)
	}
	return lr.stdout.Handle(ctx, r)
}

func (lr *levelRouter) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithAttrs(attrs),
		stderr: lr.stderr.WithAttrs(attrs),
	}
}

func (lr *levelRouter) WithGroup(name string) slog.Handler {
	return &levelRouter{
		level:  lr.level,
		stdout: lr.stdout.WithGroup(name),
		stderr: lr.stderr.WithGroup(name),
	}
}

// setupLogger configures structured logging. INFO/WARN go to stdout, ERROR goes
// to stderr. If cfg.LogPath is set, all levels are also written to that file.
// Returns a cleanup function that closes the log file (if opened).
func setupLogger(cfg *config.Config, stdout, stderr io.Writer) (func(), error) {
	opts := &slog.HandlerOptions{Level: cfg.Level()}

	cleanup := func() {}
	if cfg.LogPath != "" {
		f, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		cleanup = func() { f.Close() }
		stdout = io.MultiWriter(stdout, f)
		stderr = io.MultiWriter(stderr, f)
	}

	newHandler := func(w io.Writer) slog.Handler {
		if cfg.LogFormat == "json" {
			return slog.NewJSONHandler(w, opts)
		}
		return slog.NewTextHandler(w, opts)
	}

	handler := &levelRouter{
		level:  cfg.Level(),
		stdout: newHandler(stdout),
		stderr: newHandler(stderr),
	}
	slog.SetDefault(slog.New(api.RequestIDHandler{Handler: handler}))
	return cleanup, nil
}

// rootOptions are the flags shared by every command.
type rootOptions struct {
	cfg    *config.Config
	dbPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "teleshare",
		Short: "TeleShare - track who has which shared item",
		Long: `TeleShare keeps a ledger of shared items and moves them between
people through requests that the current owner accepts or rejects.

Configuration is read from the environment (and an optional .env file).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if opts.dbPath != "" {
				cfg.DatabasePath = opts.dbPath
			}
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.dbPath, "db", "d", "", "SQLite database path (overrides DATABASE_PATH)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newHistoryCommand(opts))
	cmd.AddCommand(newVerifyCommand(opts))
	cmd.AddCommand(newBridgeKeyCommand(opts))

	return cmd
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
