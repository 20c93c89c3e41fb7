package gemini

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/phrazzld/hanzi-cloze/internal/config"
)

// GenerateContentFunc stands in for the genai client in tests.
type GenerateContentFunc func(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error)

func (f GenerateContentFunc) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	return f(ctx, model, contents, config)
}

// NewTestGenerator builds a generator around fn with a short retry delay.
func NewTestGenerator(logger *slog.Logger, cfg config.GeneratorConfig, fn GenerateContentFunc) *Generator {
	g := newGenerator(logger, cfg, fn)
	g.baseDelay = time.Millisecond
	return g
}
