package api_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/hanzi-cloze/internal/api"
	"github.com/phrazzld/hanzi-cloze/internal/mocks"
)

func healthRouter(deps api.HealthDeps) http.Handler {
	h := api.NewHealthHandler(deps, testLogger())
	r := chi.NewRouter()
	r.Get("/health", h.Health)
	r.Get("/test-connection", h.TestConnection)
	return r
}

func TestHealth(t *testing.T) {
	t.Parallel()

	gen := &mocks.MockGenerator{Models: []string{"qwen2.5-7b-instruct", "llama-3-8b"}}
	h := healthRouter(api.HealthDeps{
		Models:            gen,
		TranslatorEnabled: func() bool { return true },
		ValidatorEnabled:  func() bool { return false },
		Info:              api.ServerInfo{ServerPort: 5000, GeneratorURL: "http://localhost:1234"},
	})

	w := doJSON(t, h, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody[api.HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.False(t, resp.ServerTime.IsZero())
	assert.True(t, resp.TranslatorEnabled)
	assert.False(t, resp.ValidatorEnabled)
	assert.True(t, resp.GeneratorEnabled)
	assert.Equal(t, []string{"qwen2.5-7b-instruct", "llama-3-8b"}, resp.AvailableModels)
	assert.Equal(t, api.ServerInfo{
		APIVersion:   api.APIVersion,
		ServerPort:   5000,
		GeneratorURL: "http://localhost:1234",
	}, resp.ServerInfo)
}

func TestHealth_GeneratorDown(t *testing.T) {
	t.Parallel()

	h := healthRouter(api.HealthDeps{Models: &mocks.MockGenerator{Err: errors.New("connection refused")}})

	w := doJSON(t, h, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[map[string]interface{}](t, w)
	assert.Equal(t, false, body["generator_enabled"])
	assert.Equal(t, []interface{}{}, body["available_models"])
	assert.Equal(t, false, body["translator_enabled"])
	assert.Equal(t, false, body["validator_enabled"])
}

func TestTestConnection(t *testing.T) {
	t.Parallel()

	h := healthRouter(api.HealthDeps{Models: &mocks.MockGenerator{Models: []string{"gemini-2.0-flash"}}})
	w := doJSON(t, h, http.MethodGet, "/test-connection", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","connection":true,"models":["gemini-2.0-flash"]}`, w.Body.String())

	h = healthRouter(api.HealthDeps{Models: &mocks.MockGenerator{Err: errors.New("dial tcp 10.0.0.5:1234: refused")}})
	w = doJSON(t, h, http.MethodGet, "/test-connection", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"error","connection":false,"message":"Failed to connect to generator"}`, w.Body.String())

	h = healthRouter(api.HealthDeps{})
	w = doJSON(t, h, http.MethodGet, "/test-connection", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"error","connection":false,"message":"No generator configured"}`, w.Body.String())
}
