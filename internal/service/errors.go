package service

import (
	"errors"
	"fmt"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/generation"
	"github.com/phrazzld/hanzi-cloze/internal/task"
)

// ExerciseServiceError wraps errors from the exercise service with context.
type ExerciseServiceError struct {
	// Operation is the operation that failed (e.g., "generate", "archive")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ExerciseServiceError.
func (e *ExerciseServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("exercise service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("exercise service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ExerciseServiceError) Unwrap() error {
	return e.Err
}

// NewExerciseServiceError creates a new ExerciseServiceError.
// It returns known sentinel errors directly without wrapping.
func NewExerciseServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{
		generation.ErrEmptyWord,
		domain.ErrInvalidHSKLevel,
		domain.ErrUnsupportedLanguage,
		task.ErrQueueFull,
		task.ErrQueueClosed,
		task.ErrManagerStopped,
	} {
		if errors.Is(err, sentinel) {
			return sentinel
		}
	}

	return &ExerciseServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
