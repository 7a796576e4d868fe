package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bio33/TeleShare/internal/api"
	"github.com/bio33/TeleShare/internal/catalog"
	"github.com/bio33/TeleShare/internal/command"
	"github.com/bio33/TeleShare/internal/db"
	"github.com/bio33/TeleShare/internal/metrics"
	"github.com/bio33/TeleShare/internal/notify"
	"github.com/bio33/TeleShare/internal/session"
	"github.com/bio33/TeleShare/internal/store"
	"github.com/bio33/TeleShare/internal/transfer"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				opts.cfg.Addr = addr
			}
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides ADDR)")
	return cmd
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg := opts.cfg

	closeLog, err := setupLogger(cfg, stdout, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return err
	}
	defer database.Close()

	// Ensure schema exists (idempotent).
	if err := db.Migrate(database); err != nil {
		slog.Error("failed to migrate database", "error", err)
		return err
	}
	slog.Info("database ready", "path", cfg.DatabasePath)

	// Load JWT secret from database (auto-generated on first run).
	jwtSecret, err := store.GetJWTSecret(ctx, database)
	if err != nil {
		slog.Error("failed to get JWT secret", "error", err)
		return err
	}
	if _, ok, err := store.GetSetting(ctx, database, store.SettingBridgeKeyHash); err != nil {
		return err
	} else if !ok {
		slog.Warn("no bridge key configured; run 'teleshare bridge-key' before connecting the chat bridge")
	}

	m := metrics.New()
	retrier := store.Retrier{
		Attempts: cfg.StoreRetries,
		OnRetry:  func(int, error) { m.StoreRetry() },
	}

	notifier, err := notify.NewDispatcher(
		notify.Fanout{notify.InboxSender{DB: database}, notify.LogSender{Logger: slog.Default()}},
		slog.Default(), m, cfg.NotifyBuffer)
	if err != nil {
		return fmt.Errorf("starting notifier: %w", err)
	}
	defer notifier.Close()

	cat := catalog.New(database, catalog.WithRetrier(retrier))
	engine := transfer.New(database,
		transfer.WithNotifier(notifier),
		transfer.WithRetrier(retrier),
		transfer.WithMetrics(m),
	)

	sessions := session.NewStore(cfg.SessionTimeout)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go sessions.RunSweeper(ctx, time.Minute)

	handler := api.NewRouter(api.Deps{
		DB:         database,
		Catalog:    cat,
		Engine:     engine,
		Dispatcher: command.NewDispatcher(database, cat, engine, sessions),
		Metrics:    m,
		JWTSecret:  jwtSecret,
		TokenTTL:   cfg.TokenTTL,
		RateLimit:  cfg.RateLimit,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", cfg.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		return err
	}

	slog.Info("server stopped, closing database")
	return nil
}
