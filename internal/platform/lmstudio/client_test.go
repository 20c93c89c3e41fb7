package lmstudio_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/hanzi-cloze/internal/generation"
	"github.com/phrazzld/hanzi-cloze/internal/platform/lmstudio"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, v any) *http.Response {
	b, _ := json.Marshal(v)
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(b)),
	}
}

func textResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
	}
}

func chatReply(content string) map[string]any {
	return map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recorded struct {
	mu       sync.Mutex
	requests []map[string]any
	headers  []http.Header
}

func (r *recorded) add(req *http.Request) map[string]any {
	var body map[string]any
	if req.Body != nil {
		_ = json.NewDecoder(req.Body).Decode(&body)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, body)
	r.headers = append(r.headers, req.Header.Clone())
	return body
}

func (r *recorded) models() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.requests))
	for _, b := range r.requests {
		m, _ := b["model"].(string)
		out = append(out, m)
	}
	return out
}

func newClient(t *testing.T, cfg lmstudio.Config, rt roundTripperFunc) *lmstudio.Client {
	t.Helper()
	c, err := lmstudio.NewWithHTTPClient(cfg, testLogger(), &http.Client{Transport: rt})
	require.NoError(t, err)
	return c
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := lmstudio.New(lmstudio.Config{BaseURL: "http://localhost:1234"}, nil)
	assert.Error(t, err)

	_, err = lmstudio.New(lmstudio.Config{BaseURL: "  "}, testLogger())
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	c, err := lmstudio.New(lmstudio.Config{BaseURL: "http://localhost:1234/", Models: []string{" ", "qwen"}}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:1234", c.BaseURL())
	assert.Equal(t, []string{"qwen"}, c.Models())

	c, err = lmstudio.New(lmstudio.Config{BaseURL: "http://localhost:1234"}, testLogger())
	require.NoError(t, err)
	assert.Equal(t, lmstudio.DefaultModels, c.Models())
}

func TestGenerate_FirstModelAnswers(t *testing.T) {
	t.Parallel()

	rec := &recorded{}
	c := newClient(t, lmstudio.Config{BaseURL: "http://lm.local", Models: []string{"m1", "m2"}, APIKey: "secret"},
		func(r *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			rec.add(r)
			return jsonResponse(http.StatusOK, chatReply(`{"answer":"银行"}`)), nil
		})

	out, err := c.Generate(context.Background(), generation.Prompt{Text: "make an exercise", Temperature: 0.7})
	require.NoError(t, err)

	assert.Equal(t, generation.Output{Text: `{"answer":"银行"}`, Model: "m1"}, out)
	require.Len(t, rec.requests, 1)

	body := rec.requests[0]
	assert.Equal(t, "m1", body["model"])
	assert.InDelta(t, 0.7, body["temperature"], 1e-9)
	assert.InDelta(t, 800, body["max_tokens"], 1e-9)
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	assert.Equal(t, map[string]any{"role": "user", "content": "make an exercise"}, msgs[0])
	assert.Equal(t, "Bearer secret", rec.headers[0].Get("Authorization"))
}

func TestGenerate_FallsThroughModels(t *testing.T) {
	t.Parallel()

	rec := &recorded{}
	c := newClient(t, lmstudio.Config{BaseURL: "http://lm.local", Models: []string{"m1", "m2", "m3"}},
		func(r *http.Request) (*http.Response, error) {
			body := rec.add(r)
			switch body["model"] {
			case "m1":
				return textResponse(http.StatusNotFound, "model not loaded"), nil
			case "m2":
				return jsonResponse(http.StatusOK, chatReply("   ")), nil
			default:
				return jsonResponse(http.StatusOK, map[string]any{
					"choices": []any{map[string]any{"text": "plain completion"}},
				}), nil
			}
		})

	out, err := c.Generate(context.Background(), generation.Prompt{Text: "p", MaxTokens: 100})
	require.NoError(t, err)

	assert.Equal(t, "m3", out.Model)
	assert.Equal(t, "plain completion", out.Text)
	assert.Equal(t, []string{"m1", "m2", "m3"}, rec.models())
	assert.InDelta(t, 100, rec.requests[2]["max_tokens"], 1e-9)
}

func TestGenerate_AllModelsFail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rt      roundTripperFunc
		wantErr error
	}{
		{
			name: "server errors are transient",
			rt: func(*http.Request) (*http.Response, error) {
				return textResponse(http.StatusServiceUnavailable, "busy"), nil
			},
			wantErr: generation.ErrTransientFailure,
		},
		{
			name: "connection refused is transient",
			rt: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
			wantErr: generation.ErrTransientFailure,
		},
		{
			name: "client errors fail generation",
			rt: func(*http.Request) (*http.Response, error) {
				return textResponse(http.StatusBadRequest, "bad request"), nil
			},
			wantErr: generation.ErrGenerationFailed,
		},
		{
			name: "empty replies are invalid",
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, map[string]any{"choices": []any{}}), nil
			},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name: "undecodable replies are invalid",
			rt: func(*http.Request) (*http.Response, error) {
				return textResponse(http.StatusOK, "<html>"), nil
			},
			wantErr: generation.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newClient(t, lmstudio.Config{BaseURL: "http://lm.local", Models: []string{"a", "b"}}, tt.rt)

			_, err := c.Generate(context.Background(), generation.Prompt{Text: "p"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGenerate_HTTPErrorIsExposed(t *testing.T) {
	t.Parallel()

	c := newClient(t, lmstudio.Config{BaseURL: "http://lm.local", Models: []string{"only"}},
		func(*http.Request) (*http.Response, error) {
			return textResponse(http.StatusInternalServerError, "boom"), nil
		})

	_, err := c.Generate(context.Background(), generation.Prompt{Text: "p"})

	var httpErr *lmstudio.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
	assert.Equal(t, "boom", httpErr.Body)
	assert.Contains(t, httpErr.Error(), "status=500")
}

func TestGenerate_CancelledContext(t *testing.T) {
	t.Parallel()

	calls := 0
	c := newClient(t, lmstudio.Config{BaseURL: "http://lm.local", Models: []string{"a"}},
		func(*http.Request) (*http.Response, error) {
			calls++
			return jsonResponse(http.StatusOK, chatReply("x")), nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, generation.Prompt{Text: "p"})
	assert.ErrorIs(t, err, generation.ErrTransientFailure)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestListModels(t *testing.T) {
	t.Parallel()

	c := newClient(t, lmstudio.Config{BaseURL: "http://lm.local"},
		func(r *http.Request) (*http.Response, error) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/v1/models", r.URL.Path)
			return jsonResponse(http.StatusOK, map[string]any{
				"data": []any{
					map[string]any{"id": "gemma-3-4b-it-qat"},
					map[string]any{"id": ""},
					map[string]any{"id": "qwen2.5-7b"},
				},
			}), nil
		})

	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gemma-3-4b-it-qat", "qwen2.5-7b"}, models)
}

func TestListModels_Error(t *testing.T) {
	t.Parallel()

	c := newClient(t, lmstudio.Config{BaseURL: "http://lm.local"},
		func(*http.Request) (*http.Response, error) {
			return textResponse(http.StatusBadGateway, ""), nil
		})

	_, err := c.ListModels(context.Background())
	var httpErr *lmstudio.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "lmstudio http error: status=502", httpErr.Error())
}
