package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/scoring"
)

const (
	fillMaskPath   = "/v1/fill-mask"
	embeddingsPath = "/v1/embeddings"
	translatePath  = "/v1/translate"

	defaultTimeout    = 30 * time.Second
	defaultRetryDelay = 250 * time.Millisecond
	defaultTopK       = 10
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	// TopK is the number of fill-mask predictions requested.
	TopK int
}

// Client calls the inference sidecar.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	topK       int
	httpClient *http.Client
	logger     *slog.Logger
}

var (
	_ scoring.MaskedPredictor = (*Client)(nil)
	_ scoring.Embedder        = (*Client)(nil)
)

// New creates a client for cfg.BaseURL.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("inference: base URL required")
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		topK:       cfg.TopK,
		logger:     logger.With("component", "inference_client"),
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.retryDelay <= 0 {
		c.retryDelay = defaultRetryDelay
	}
	if c.topK <= 0 {
		c.topK = defaultTopK
	}

	c.httpClient = &http.Client{Transport: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}}
	return c, nil
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

type fillMaskRequest struct {
	Text string `json:"text"`
	TopK int    `json:"top_k"`
}

type fillMaskResponse struct {
	Predictions []struct {
		Token string  `json:"token"`
		Score float64 `json:"score"`
	} `json:"predictions"`
}

// PredictMasked returns the model's ranked candidates for the mask token in
// masked, most probable first.
func (c *Client) PredictMasked(ctx context.Context, masked string) ([]scoring.Prediction, error) {
	var resp fillMaskResponse
	if err := c.do(ctx, http.MethodPost, fillMaskPath, fillMaskRequest{Text: masked, TopK: c.topK}, &resp); err != nil {
		return nil, fmt.Errorf("fill-mask: %w", err)
	}

	preds := make([]scoring.Prediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		preds = append(preds, scoring.Prediction{Token: strings.TrimSpace(p.Token), Probability: p.Score})
	}
	sort.SliceStable(preds, func(i, j int) bool { return preds[i].Probability > preds[j].Probability })
	return preds, nil
}

type embeddingsRequest struct {
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Embed returns one vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	var resp embeddingsResponse
	if err := c.do(ctx, http.MethodPost, embeddingsPath, embeddingsRequest{Input: texts}, &resp); err != nil {
		return nil, fmt.Errorf("embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings: %w: got %d vectors for %d inputs",
			ErrMalformedResponse, len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) || out[d.Index] != nil {
			return nil, fmt.Errorf("embeddings: %w: bad index %d", ErrMalformedResponse, d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, f := range d.Embedding {
			vec[i] = float32(f)
		}
		out[d.Index] = vec
	}
	return out, nil
}

type translateRequest struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type translateResponse struct {
	Translation string `json:"translation"`
}

// Translate translates text between two supported languages.
func (c *Client) Translate(ctx context.Context, text string, from, to domain.Language) (string, error) {
	var out translateResponse
	req := translateRequest{Text: text, Source: string(from), Target: string(to)}
	if err := c.do(ctx, http.MethodPost, translatePath, req, &out); err != nil {
		return "", fmt.Errorf("translate %s->%s: %w", from, to, err)
	}
	if strings.TrimSpace(out.Translation) == "" && strings.TrimSpace(text) != "" {
		return "", fmt.Errorf("translate %s->%s: %w: empty translation", from, to, ErrMalformedResponse)
	}
	return out.Translation, nil
}

// do runs doJSON with retries for transient failures.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = c.doJSON(ctx, method, path, body, out)
		if err == nil || !retryable(err) || attempt >= c.maxRetries {
			return err
		}

		delay := time.Duration(float64(c.retryDelay) * math.Pow(2, float64(attempt)) * (0.5 + rand.Float64()*0.5))
		c.logger.DebugContext(ctx, "inference call failed, retrying",
			"path", path,
			"attempt", attempt+1,
			"delay", delay,
			"error", err)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		}
	}
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
	req.Header.Set("Content-Type", "application/json")
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
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
