package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/platform/logger"
	"github.com/phrazzld/hanzi-cloze/internal/store"
)

// MaxListLimit caps how many exercises ListByWord returns.
const MaxListLimit = 100

// PostgresExerciseStore implements the store.ExerciseStore interface
// using a PostgreSQL database as the storage backend.
type PostgresExerciseStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresExerciseStore creates a new PostgreSQL implementation of the ExerciseStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresExerciseStore(db store.DBTX, logger *slog.Logger) *PostgresExerciseStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresExerciseStore{
		db:     db,
		logger: logger.With(slog.String("component", "exercise_store")),
	}
}

// Ensure PostgresExerciseStore implements store.ExerciseStore interface
var _ store.ExerciseStore = (*PostgresExerciseStore)(nil)

// Save implements store.ExerciseStore.Save.
// Returns store.ErrInvalidEntity if the exercise fails validation and
// store.ErrExerciseExists if the id is already archived.
func (s *PostgresExerciseStore) Save(ctx context.Context, ex *domain.ArchivedExercise) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if ex == nil {
		return fmt.Errorf("%w: exercise cannot be nil", store.ErrInvalidEntity)
	}
	if err := ex.Validate(); err != nil {
		log.Warn("exercise validation failed during save",
			slog.String("error", err.Error()),
			slog.String("exercise_id", ex.ID.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	payload, err := json.Marshal(ex.Exercise)
	if err != nil {
		return store.NewStoreError("exercise", "save", "failed to encode payload", err)
	}

	var (
		confidence sql.NullFloat64
		isValid    sql.NullBool
	)
	if v := ex.Exercise.Validation; v != nil {
		confidence = sql.NullFloat64{Float64: v.Confidence, Valid: true}
		isValid = sql.NullBool{Bool: v.IsValid, Valid: true}
	}

	query := `
		INSERT INTO exercises (id, word, hsk_level, system_language, payload, confidence, is_valid, generated_with, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		ex.ID,
		ex.Word,
		ex.HSKLevel,
		string(ex.SystemLanguage),
		payload,
		confidence,
		isValid,
		ex.Exercise.GeneratedWith,
		ex.CreatedAt,
	)
	if err != nil {
		log.Error("failed to archive exercise",
			slog.String("error", err.Error()),
			slog.String("exercise_id", ex.ID.String()),
			slog.String("word", ex.Word))
		return MapError(err)
	}

	log.Debug("exercise archived",
		slog.String("exercise_id", ex.ID.String()),
		slog.String("word", ex.Word),
		slog.String("generated_with", ex.Exercise.GeneratedWith))
	return nil
}

// ListByWord implements store.ExerciseStore.ListByWord.
// limit is clamped to [1, MaxListLimit].
func (s *PostgresExerciseStore) ListByWord(ctx context.Context, word string, limit int) ([]*domain.ArchivedExercise, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 1
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := `
		SELECT id, word, hsk_level, system_language, payload, created_at
		FROM exercises
		WHERE word = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, word, limit)
	if err != nil {
		log.Error("failed to query archived exercises",
			slog.String("error", err.Error()),
			slog.String("word", word))
		return nil, MapError(err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	out := make([]*domain.ArchivedExercise, 0)
	for rows.Next() {
		var (
			a       domain.ArchivedExercise
			lang    string
			payload []byte
		)
		if err := rows.Scan(&a.ID, &a.Word, &a.HSKLevel, &lang, &payload, &a.CreatedAt); err != nil {
			return nil, store.NewStoreError("exercise", "list", "failed to scan row", err)
		}
		a.SystemLanguage = domain.Language(lang)
		if err := json.Unmarshal(payload, &a.Exercise); err != nil {
			return nil, store.NewStoreError("exercise", "list", "failed to decode payload", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("listed archived exercises", slog.String("word", word), slog.Int("count", len(out)))
	return out, nil
}
