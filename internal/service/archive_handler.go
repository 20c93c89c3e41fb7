package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/events"
	"github.com/phrazzld/hanzi-cloze/internal/store"
)

// ArchiveHandler persists generated exercises worth keeping.
type ArchiveHandler struct {
	store  store.ExerciseStore
	logger *slog.Logger
}

// NewArchiveHandler creates an ArchiveHandler.
func NewArchiveHandler(s store.ExerciseStore, logger *slog.Logger) (*ArchiveHandler, error) {
	if s == nil {
		return nil, &ExerciseServiceError{Operation: "create_archive_handler", Message: "store cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveHandler{
		store:  s,
		logger: logger.With("component", "archive_handler"),
	}, nil
}

var _ events.EventHandler = (*ArchiveHandler)(nil)

// HandleEvent archives the exercise carried by a generated event. Which
// exercises are worth keeping is decided at registration with
// events.Archivable. Archiving the same exercise twice is not an error.
func (h *ArchiveHandler) HandleEvent(ctx context.Context, event *events.ExerciseEvent) error {
	if event == nil || event.Type != events.TypeExerciseGenerated {
		return nil
	}

	archived, err := domain.NewArchivedExercise(event.HSKLevel, event.SystemLanguage, event.Exercise)
	if err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}
	if err := h.store.Save(ctx, archived); err != nil {
		if store.IsDuplicateError(err) {
			h.logger.DebugContext(ctx, "exercise already archived",
				"exercise_id", archived.ID,
				"word", archived.Word)
			return nil
		}
		return NewExerciseServiceError("archive", "failed to save exercise", err)
	}

	h.logger.InfoContext(ctx, "exercise archived",
		"exercise_id", archived.ID,
		"word", archived.Word,
		"source", event.Source)
	return nil
}

// Register subscribes h to archivable exercise events on emitter.
func (h *ArchiveHandler) Register(emitter *events.InMemoryEventEmitter) {
	emitter.RegisterHandler(h, events.Archivable)
}
