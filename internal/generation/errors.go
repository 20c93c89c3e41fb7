package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrEmptyWord is returned when no target word was given
	ErrEmptyWord = errors.New("word is required")

	// ErrGenerationFailed is returned when exercise generation fails for any general reason
	ErrGenerationFailed = errors.New("failed to generate exercise")

	// ErrInvalidResponse is returned when the LLM response is empty or malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during exercise generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrGeneratorUnavailable marks an attempt whose generator call failed
	ErrGeneratorUnavailable = errors.New("generator unavailable")
)
