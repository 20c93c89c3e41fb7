package lmstudio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/hanzi-cloze/internal/generation"
)

// DefaultModels is the order in which models are tried when none are configured.
var DefaultModels = []string{
	"gemma-3-4b-it-qat",
	"gemma2-3-4b-it-qat",
	"gemma-2-7b-it-qat",
	"llama-7b-chat",
	"mistral-7b-instruct-v0.2",
}

const (
	defaultTimeout   = 90 * time.Second
	defaultMaxTokens = 800

	chatCompletionsPath = "/v1/chat/completions"
	modelsPath          = "/v1/models"
)

// Config configures a Client.
type Config struct {
	BaseURL string
	Models  []string
	APIKey  string
	// Timeout bounds each request to a single model.
	Timeout time.Duration
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	baseURL    string
	models     []string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

var _ generation.Generator = (*Client)(nil)
var _ generation.ModelLister = (*Client)(nil)

// New creates a client for cfg.BaseURL.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("%w: base URL is required", generation.ErrInvalidConfig)
	}

	models := make([]string, 0, len(cfg.Models))
	for _, m := range cfg.Models {
		if m = strings.TrimSpace(m); m != "" {
			models = append(models, m)
		}
	}
	if len(models) == 0 {
		models = append(models, DefaultModels...)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &Client{
		baseURL:    baseURL,
		models:     models,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		timeout:    timeout,
		httpClient: &http.Client{Transport: tr},
		logger:     logger.With("component", "lmstudio_client"),
	}, nil
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(cfg Config, logger *slog.Logger, httpClient *http.Client) (*Client, error) {
	c, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c, nil
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Models returns the models in the order they are tried.
func (c *Client) Models() []string {
	return append([]string(nil), c.models...)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Text string `json:"text"`
	} `json:"choices"`
}

// Generate sends the prompt to each configured model in turn and returns the
// first non-empty reply.
func (c *Client) Generate(ctx context.Context, prompt generation.Prompt) (generation.Output, error) {
	maxTokens := prompt.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	var lastErr error
	transient := false
	for _, model := range c.models {
		if err := ctx.Err(); err != nil {
			return generation.Output{}, fmt.Errorf("%w: %w", generation.ErrTransientFailure, err)
		}

		text, err := c.complete(ctx, model, prompt.Text, prompt.Temperature, maxTokens)
		if err == nil {
			c.logger.DebugContext(ctx, "model replied", "model", model, "chars", len(text))
			return generation.Output{Text: text, Model: model}, nil
		}

		c.logger.WarnContext(ctx, "model failed, trying next", "model", model, "error", err)
		lastErr = err
		transient = transient || isTransient(err)
	}

	switch {
	case transient:
		return generation.Output{}, fmt.Errorf("%w: all %d models failed: %w",
			generation.ErrTransientFailure, len(c.models), lastErr)
	case errors.Is(lastErr, errEmptyReply), errors.Is(lastErr, errBadReply):
		return generation.Output{}, fmt.Errorf("%w: all %d models failed: %w",
			generation.ErrInvalidResponse, len(c.models), lastErr)
	default:
		return generation.Output{}, fmt.Errorf("%w: all %d models failed: %w",
			generation.ErrGenerationFailed, len(c.models), lastErr)
	}
}

func (c *Client) complete(ctx context.Context, model, text string, temperature float64, maxTokens int) (string, error) {
	req := chatCompletionRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: text}},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	var resp chatCompletionResponse
	if err := c.doJSON(ctx, http.MethodPost, chatCompletionsPath, req, &resp); err != nil {
		return "", err
	}
	out := extractChatText(resp)
	if strings.TrimSpace(out) == "" {
		return "", errEmptyReply
	}
	return out, nil
}

func extractChatText(resp chatCompletionResponse) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	if s := resp.Choices[0].Message.Content; s != "" {
		return s
	}
	return resp.Choices[0].Text
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ListModels returns the identifiers the server reports as loaded.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var resp modelsResponse
	if err := c.doJSON(ctx, http.MethodGet, modelsPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}
	ids := make([]string, 0, len(resp.Data))
	for _, m := range resp.Data {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", errBadReply, err)
	}
	return nil
}
