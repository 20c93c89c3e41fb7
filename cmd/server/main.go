// Package main implements the entry point for the hanzi-cloze server, which
// generates Chinese fill-in-the-blank exercises with a local or hosted LLM.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/hanzi-cloze/internal/config"
	"github.com/phrazzld/hanzi-cloze/internal/platform/logger"
	"github.com/phrazzld/hanzi-cloze/internal/platform/postgres"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply archive database migrations and exit")
	flag.Parse()

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("hanzi-cloze: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *migrateOnly {
		if err := runMigrations(ctx, cfg, appLogger); err != nil {
			appLogger.Error("migration failed", "error", err)
			os.Exit(1)
		}
		return
	}

	app, err := newApplication(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		appLogger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"generator", cfg.Generator.Provider)
	l.Debug("optional components",
		"inference_configured", cfg.Inference.BaseURL != "",
		"translation_enabled", cfg.Translation.Enabled,
		"redis_configured", cfg.Translation.RedisAddr != "",
		"database_configured", cfg.Database.URL != "")

	return cfg, l, nil
}

// runMigrations applies the archive migrations without starting the server.
func runMigrations(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Database.URL == "" {
		return errors.New("database.url is not configured")
	}
	db, err := postgres.Open(ctx, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()
	return postgres.Migrate(ctx, db, logger)
}
