package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrEmptyWord is returned when a generation request has no target word.
	ErrEmptyWord = errors.New("word cannot be empty")

	// ErrInvalidHSKLevel is returned when an HSK level is out of range.
	ErrInvalidHSKLevel = errors.New("invalid HSK level")

	// ErrEmptyID is returned when an entity has no identifier.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrUnsupportedLanguage is returned for language codes outside zh/en/ru.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)
