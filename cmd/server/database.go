package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/hanzi-cloze/internal/config"
	"github.com/phrazzld/hanzi-cloze/internal/platform/postgres"
	"github.com/phrazzld/hanzi-cloze/internal/store"
)

// setupArchive opens the archive database, applies pending migrations and
// returns the exercise store. It returns a nil store when no database is
// configured.
func setupArchive(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*sql.DB, store.ExerciseStore, error) {
	if cfg.URL == "" {
		logger.Info("no database configured, exercise archive disabled")
		return nil, nil, nil
	}

	db, err := postgres.Open(ctx, cfg.URL, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	if err := postgres.Migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate archive database: %w", err)
	}

	logger.Info("exercise archive enabled", "database", postgres.MaskDatabaseURL(cfg.URL))
	return db, postgres.NewPostgresExerciseStore(db, logger), nil
}
