package gemini_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/phrazzld/hanzi-cloze/internal/config"
	"github.com/phrazzld/hanzi-cloze/internal/generation"
	"github.com/phrazzld/hanzi-cloze/internal/platform/gemini"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.GeneratorConfig {
	return config.GeneratorConfig{
		Provider:          config.ProviderGemini,
		GeminiAPIKey:      "test-api-key",
		GeminiModel:       "gemini-2.0-flash",
		MaxRetries:        2,
		RetryDelaySeconds: 1,
	}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestNewGenerator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		logger    *slog.Logger
		cfg       config.GeneratorConfig
		errorType error
		errorMsg  string
	}{
		{
			name:     "nil_logger_returns_error",
			logger:   nil,
			cfg:      testConfig(),
			errorMsg: "logger cannot be nil",
		},
		{
			name:   "empty_api_key_returns_config_error",
			logger: testLogger(),
			cfg: config.GeneratorConfig{
				GeminiModel: "gemini-2.0-flash",
			},
			errorType: generation.ErrInvalidConfig,
			errorMsg:  "gemini API key cannot be empty",
		},
		{
			name:   "empty_model_returns_config_error",
			logger: testLogger(),
			cfg: config.GeneratorConfig{
				GeminiAPIKey: "test-api-key",
			},
			errorType: generation.ErrInvalidConfig,
			errorMsg:  "model name cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			generator, err := gemini.NewGenerator(context.Background(), tt.logger, tt.cfg)

			require.Error(t, err)
			assert.Nil(t, generator)
			assert.Contains(t, err.Error(), tt.errorMsg)
			if tt.errorType != nil {
				assert.ErrorIs(t, err, tt.errorType)
			}
		})
	}
}

func TestGenerate_Success(t *testing.T) {
	t.Parallel()

	var gotModel string
	var gotConfig *genai.GenerateContentConfig
	var gotContents []*genai.Content
	g := gemini.NewTestGenerator(testLogger(), testConfig(),
		func(_ context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			gotModel, gotContents, gotConfig = model, contents, cfg
			return &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []*genai.Part{{Text: `{"answer":`}, {Text: `"银行"}`}}},
				}},
			}, nil
		})

	out, err := g.Generate(context.Background(), generation.Prompt{Text: "make one", Temperature: 0.9, MaxTokens: 800})
	require.NoError(t, err)

	assert.Equal(t, generation.Output{Text: `{"answer":"银行"}`, Model: "gemini-2.0-flash"}, out)
	assert.Equal(t, "gemini-2.0-flash", gotModel)
	require.Len(t, gotContents, 1)
	assert.Equal(t, "user", gotContents[0].Role)
	assert.Equal(t, "make one", gotContents[0].Parts[0].Text)
	require.NotNil(t, gotConfig.Temperature)
	assert.InDelta(t, 0.9, *gotConfig.Temperature, 1e-6)
	assert.EqualValues(t, 800, gotConfig.MaxOutputTokens)

	models, err := g.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gemini-2.0-flash"}, models)
}

func TestGenerate_RetriesTransientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	g := gemini.NewTestGenerator(testLogger(), testConfig(),
		func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			if calls.Add(1) < 3 {
				return nil, errors.New("503 service unavailable")
			}
			return textResponse("ok"), nil
		})

	out, err := g.Generate(context.Background(), generation.Prompt{Text: "p"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Text)
	assert.EqualValues(t, 3, calls.Load())
}

func TestGenerate_ExhaustsRetries(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	g := gemini.NewTestGenerator(testLogger(), testConfig(),
		func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			calls.Add(1)
			return nil, errors.New("deadline exceeded")
		})

	_, err := g.Generate(context.Background(), generation.Prompt{Text: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
	assert.EqualValues(t, 3, calls.Load(), "one call plus two retries")
}

func TestGenerate_PermanentErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		wantErr error
	}{
		{
			name:    "nil response",
			resp:    nil,
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "no candidates",
			resp:    &genai.GenerateContentResponse{},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name: "safety block",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
			},
			wantErr: generation.ErrContentBlocked,
		},
		{
			name: "nil content",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{}},
			},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "blank text",
			resp:    textResponse("  \n"),
			wantErr: generation.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls atomic.Int32
			g := gemini.NewTestGenerator(testLogger(), testConfig(),
				func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
					calls.Add(1)
					return tt.resp, nil
				})

			_, err := g.Generate(context.Background(), generation.Prompt{Text: "p"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.EqualValues(t, 1, calls.Load(), "permanent errors are not retried")
		})
	}
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	t.Parallel()

	g := gemini.NewTestGenerator(testLogger(), testConfig(),
		func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			t.Fatal("the API must not be called")
			return nil, nil
		})

	_, err := g.Generate(context.Background(), generation.Prompt{Text: " "})
	assert.ErrorIs(t, err, generation.ErrGenerationFailed)
}

func TestGenerate_CancelledDuringBackoff(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	g := gemini.NewTestGenerator(testLogger(), testConfig(),
		func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			cancel()
			return nil, errors.New("unavailable")
		})

	_, err := g.Generate(ctx, generation.Prompt{Text: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
}
