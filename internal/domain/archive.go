package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArchivedExercise is a generated exercise kept for later reuse.
type ArchivedExercise struct {
	ID             uuid.UUID         `json:"id"`
	Word           string            `json:"word"`
	HSKLevel       int               `json:"hsk_level"`
	SystemLanguage Language          `json:"system_language"`
	Exercise       GeneratedExercise `json:"exercise"`
	CreatedAt      time.Time         `json:"created_at"`
}

// NewArchivedExercise wraps ex for storage and validates the result.
func NewArchivedExercise(hskLevel int, lang Language, ex GeneratedExercise) (*ArchivedExercise, error) {
	a := &ArchivedExercise{
		ID:             uuid.New(),
		Word:           strings.TrimSpace(ex.Answer),
		HSKLevel:       hskLevel,
		SystemLanguage: lang,
		Exercise:       ex,
		CreatedAt:      time.Now().UTC(),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the fields the archive relies on.
func (a *ArchivedExercise) Validate() error {
	if a.ID == uuid.Nil {
		return fmt.Errorf("archived exercise: %w", ErrEmptyID)
	}
	if a.Word == "" {
		return fmt.Errorf("archived exercise: %w", ErrEmptyWord)
	}
	if a.HSKLevel < MinHSKLevel || a.HSKLevel > MaxHSKLevel {
		return fmt.Errorf("archived exercise: %w: %d", ErrInvalidHSKLevel, a.HSKLevel)
	}
	if _, ok := ParseLanguage(string(a.SystemLanguage)); !ok {
		return fmt.Errorf("archived exercise: %w: %q", ErrUnsupportedLanguage, a.SystemLanguage)
	}
	return nil
}

// Archivable reports whether an exercise is worth keeping: generated by a
// model, and either unvalidated or judged valid.
func (e GeneratedExercise) Archivable() bool {
	if e.IsFallback() {
		return false
	}
	return e.Validation == nil || e.Validation.IsValid
}
