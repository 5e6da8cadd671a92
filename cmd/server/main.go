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

	"github.com/Simplici0/cotizador/internal/config"
	"github.com/Simplici0/cotizador/internal/db"
	"github.com/Simplici0/cotizador/internal/history"
	"github.com/Simplici0/cotizador/internal/metrics"
	"github.com/Simplici0/cotizador/internal/migrations"
	"github.com/Simplici0/cotizador/internal/notify"
	"github.com/Simplici0/cotizador/internal/seed"
	"github.com/Simplici0/cotizador/internal/settings"
	"github.com/Simplici0/cotizador/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.LogLevel == "" && cfg.IsDev() {
		level = slog.LevelDebug
	}
	logging.SetupWithLevel(level)

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := migrations.Up(database); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	version, err := migrations.Version(database)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	stats, err := seed.Run(database, seed.Config{
		DefaultMarginPercent:     cfg.DefaultMarginPercent,
		Policy:                   cfg.Policy,
		InstallationCostPerPiece: cfg.InstallationCostPerPiece,
	})
	if err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}
	slog.Info("database ready", "path", cfg.DBPath, "schema_version", version, "seed_inserts", stats.Inserts)

	repo := settings.NewRepository(database)
	defaults, err := repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	m := metrics.New()

	notifier, err := newNotifier(ctx, cfg)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(notifier, cfg.NotifyTimeout, slog.Default(), notify.WithFailureHook(m.NotifyFailed))

	srv := &server{
		settings:   repo,
		history:    history.NewLog(history.NewSQLiteBackend(database), slog.Default()),
		dispatcher: dispatcher,
		metrics:    m,
		logger:     slog.Default(),
		now:        time.Now,
		ws:         newWorkspace(defaults),
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", httpServer.Addr, "env", cfg.Env, "policy", defaults.Policy)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	dispatcher.Wait()
	return nil
}

// newNotifier prefers the Sheets API when it is fully configured, then the web app
// URL, and otherwise drops notifications.
func newNotifier(ctx context.Context, cfg config.Config) (notify.Notifier, error) {
	switch {
	case cfg.UseSheetsAPI():
		n, err := notify.NewSheetsNotifier(ctx, cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID, cfg.SheetsRange)
		if err != nil {
			return nil, fmt.Errorf("failed to configure sheets notifier: %w", err)
		}
		slog.Info("quote notifications via sheets api", "spreadsheet_id", cfg.SheetsSpreadsheetID)
		return n, nil
	case cfg.SheetsWebhookURL != "":
		slog.Info("quote notifications via web app")
		return notify.NewWebhookNotifier(cfg.SheetsWebhookURL, &http.Client{Timeout: cfg.NotifyTimeout}), nil
	default:
		return notify.Nop{}, nil
	}
}
