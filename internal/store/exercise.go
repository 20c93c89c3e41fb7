package store

import (
	"context"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

// ExerciseStore defines the interface for the exercise archive.
type ExerciseStore interface {
	// Save persists an archived exercise.
	// Returns ErrInvalidEntity if the exercise fails validation.
	// Returns ErrDuplicate if an exercise with the same ID already exists.
	Save(ctx context.Context, exercise *domain.ArchivedExercise) error

	// ListByWord returns up to limit archived exercises for word, newest first.
	// Returns an empty slice if none exist.
	ListByWord(ctx context.Context, word string, limit int) ([]*domain.ArchivedExercise, error)
}
