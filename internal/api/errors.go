package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/hanzi-cloze/internal/api/shared"
	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/generation"
	"github.com/phrazzld/hanzi-cloze/internal/platform/postgres"
	"github.com/phrazzld/hanzi-cloze/internal/store"
	"github.com/phrazzld/hanzi-cloze/internal/task"
	"github.com/phrazzld/hanzi-cloze/internal/translation"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, generation.ErrEmptyWord),
		errors.Is(err, domain.ErrInvalidHSKLevel),
		errors.Is(err, domain.ErrUnsupportedLanguage),
		errors.Is(err, translation.ErrUnsupportedLanguage),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Capacity and dependency errors
	case errors.Is(err, task.ErrQueueFull),
		errors.Is(err, task.ErrQueueClosed),
		errors.Is(err, task.ErrManagerStopped),
		errors.Is(err, translation.ErrUnavailable),
		errors.Is(err, postgres.ErrArchiveUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a user-facing message for err that carries no
// internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, generation.ErrEmptyWord):
		return "Word is required"
	case errors.Is(err, domain.ErrInvalidHSKLevel):
		return fmt.Sprintf("HSK level must be between %d and %d", domain.MinHSKLevel, domain.MaxHSKLevel)
	case errors.Is(err, domain.ErrUnsupportedLanguage),
		errors.Is(err, translation.ErrUnsupportedLanguage):
		return "Unsupported language. Supported languages: zh, en, ru"
	case errors.Is(err, shared.ErrEmptyBody):
		return "Request body is required"
	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"
	case errors.Is(err, store.ErrNotFound):
		return "Not found"
	case errors.Is(err, store.ErrDuplicate):
		return "Already exists"
	case errors.Is(err, task.ErrQueueFull):
		return "Server is busy, try again later"
	case errors.Is(err, task.ErrQueueClosed),
		errors.Is(err, task.ErrManagerStopped):
		return "Server is shutting down"
	case errors.Is(err, translation.ErrUnavailable):
		return "Translation service is not available"
	case errors.Is(err, postgres.ErrArchiveUnavailable):
		return "Exercise archive is not available"
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError writes the status and safe message for err. A non-empty
// message replaces the safe message for 4xx responses only.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := MapErrorToStatusCode(err)
	userMessage := GetSafeErrorMessage(err)
	if message != "" && status < http.StatusInternalServerError {
		userMessage = message
	}
	shared.RespondWithErrorAndLog(w, r, status, userMessage, err)
}

// SanitizeValidationError turns a validator error into a short message naming
// the first offending field.
func SanitizeValidationError(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Sprintf("Invalid %s: %s", fe.Field(), getValidationTagMessage(fe.Tag()))
	}
	return "Validation error"
}

func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min", "gt":
		return "too small"
	case "max", "lte":
		return "too large"
	case "oneof":
		return "must be one of zh, en, ru"
	default:
		return "validation failed"
	}
}
