package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/phrazzld/hanzi-cloze/internal/config"
	"github.com/phrazzld/hanzi-cloze/internal/generation"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second
)

// contentGenerator is the part of the genai client the generator uses.
// *genai.Models satisfies it.
type contentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator implements generation.Generator on top of the Gemini API.
type Generator struct {
	logger     *slog.Logger
	models     contentGenerator
	model      string
	maxRetries int
	baseDelay  time.Duration
	timeout    time.Duration
}

var _ generation.Generator = (*Generator)(nil)
var _ generation.ModelLister = (*Generator)(nil)

// NewGenerator creates a Gemini-backed generator.
//
// Parameters:
//   - ctx: Context for client creation
//   - logger: A structured logger for operation logging
//   - cfg: Generator configuration containing the API key, model name and retry settings
//
// Returns:
//   - A properly initialized Generator or an error if initialization fails
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.GeneratorConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return newGenerator(logger, cfg, client.Models), nil
}

func validateConfig(cfg config.GeneratorConfig) error {
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.GeminiModel == "" {
		return fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}
	return nil
}

func newGenerator(logger *slog.Logger, cfg config.GeneratorConfig, models contentGenerator) *Generator {
	g := &Generator{
		logger:     logger.With("component", "gemini_generator", "model", cfg.GeminiModel),
		models:     models,
		model:      cfg.GeminiModel,
		maxRetries: cfg.MaxRetries,
		baseDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
		timeout:    cfg.Timeout(),
	}
	if g.maxRetries < 0 {
		g.logger.Warn("invalid max retries value, using default", "max_retries", defaultMaxRetries)
		g.maxRetries = defaultMaxRetries
	}
	if g.baseDelay <= 0 {
		g.baseDelay = defaultRetryDelay
	}
	return g
}

// ListModels reports the single configured model.
func (g *Generator) ListModels(context.Context) ([]string, error) {
	return []string{g.model}, nil
}

// Generate sends the prompt to Gemini and returns the text of the first candidate.
func (g *Generator) Generate(ctx context.Context, prompt generation.Prompt) (generation.Output, error) {
	if strings.TrimSpace(prompt.Text) == "" {
		return generation.Output{}, fmt.Errorf("%w: empty prompt", generation.ErrGenerationFailed)
	}

	text, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return generation.Output{}, err
	}
	return generation.Output{Text: text, Model: g.model}, nil
}

// callWithRetry calls the API up to maxRetries+1 times. Transient errors are
// retried with delay = base * 2^attempt * (0.5 + rand(0, 0.5)); permanent
// errors are returned immediately.
func (g *Generator) callWithRetry(ctx context.Context, prompt generation.Prompt) (string, error) {
	temperature := float32(prompt.Temperature)
	genConfig := &genai.GenerateContentConfig{Temperature: &temperature}
	if prompt.MaxTokens > 0 {
		genConfig.MaxOutputTokens = int32(prompt.MaxTokens)
	}
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt.Text}},
	}}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		g.logger.DebugContext(ctx, "making Gemini API call",
			"attempt", attemptNum,
			"max_attempts", g.maxRetries+1)

		text, transient, err := g.call(ctx, contents, genConfig)
		if err == nil {
			g.logger.DebugContext(ctx, "Gemini API call successful", "attempt", attemptNum)
			return text, nil
		}

		g.logger.WarnContext(ctx, "Gemini API call failed", "attempt", attemptNum, "error", err)

		if !transient {
			return "", err
		}
		if attempt >= g.maxRetries {
			return "", fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				generation.ErrTransientFailure, g.maxRetries, err)
		}

		delay := g.backoff(attempt)
		g.logger.InfoContext(ctx, "retrying after delay",
			"attempt", attemptNum,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

func (g *Generator) backoff(attempt int) time.Duration {
	backoff := float64(g.baseDelay) * math.Pow(2, float64(attempt))
	jitter := 0.5 + rand.Float64()*0.5
	return time.Duration(backoff * jitter)
}

// call makes one request. The boolean reports whether a failure is worth retrying.
func (g *Generator) call(
	ctx context.Context,
	contents []*genai.Content,
	genConfig *genai.GenerateContentConfig,
) (string, bool, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, genConfig)
	switch {
	case err != nil:
		return "", true, err
	case resp == nil:
		return "", false, fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	case len(resp.Candidates) == 0:
		return "", false, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", false, fmt.Errorf("%w: content blocked by safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return "", false, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", false, fmt.Errorf("%w: empty text in response", generation.ErrInvalidResponse)
	}
	return b.String(), false, nil
}
