package generation

import (
	"context"
)

// Prompt is a single request to a text generation model.
type Prompt struct {
	Text        string
	Temperature float64
	MaxTokens   int
}

// Output is the raw text a model produced and the model that produced it.
type Output struct {
	Text  string
	Model string
}

// Generator is the boundary between the exercise pipeline and an external
// language model. Implementations return raw text; turning it into an
// exercise is the caller's job.
type Generator interface {
	// Generate sends the prompt and returns the model's reply. Errors wrap
	// ErrGenerationFailed, ErrTransientFailure, ErrContentBlocked or
	// ErrInvalidResponse.
	Generate(ctx context.Context, prompt Prompt) (Output, error)
}

// ModelLister is implemented by generators that can report which models
// the upstream server has loaded.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}
