package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/hanzi-cloze/internal/api/shared"
	"github.com/phrazzld/hanzi-cloze/internal/generation"
	"github.com/phrazzld/hanzi-cloze/internal/platform/logger"
	"github.com/phrazzld/hanzi-cloze/internal/redact"
)

// APIVersion is reported by the health endpoint.
const APIVersion = "1.0.0"

// modelListTimeout bounds the generator round trip of health checks.
const modelListTimeout = 3 * time.Second

// HealthDeps describes what the health endpoints report on. Nil fields are
// reported as disabled.
type HealthDeps struct {
	Models            generation.ModelLister
	TranslatorEnabled func() bool
	ValidatorEnabled  func() bool
	Info              ServerInfo
}

// HealthHandler serves /health and /test-connection.
type HealthHandler struct {
	deps   HealthDeps
	now    func() time.Time
	logger *slog.Logger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(deps HealthDeps, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for HealthHandler")
	}
	if deps.Info.APIVersion == "" {
		deps.Info.APIVersion = APIVersion
	}
	return &HealthHandler{
		deps:   deps,
		now:    time.Now,
		logger: logger.With(slog.String("component", "health_handler")),
	}
}

// Health handles GET /health requests. It always answers 200; a generator
// that cannot list its models is reported as disabled.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	models, err := h.listModels(r.Context())
	if err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).
			Warn("generator model listing failed", slog.String("error", redact.Error(err)))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:            "ok",
		ServerTime:        h.now().UTC(),
		TranslatorEnabled: enabled(h.deps.TranslatorEnabled),
		ValidatorEnabled:  enabled(h.deps.ValidatorEnabled),
		GeneratorEnabled:  err == nil && h.deps.Models != nil,
		AvailableModels:   models,
		ServerInfo:        h.deps.Info,
	})
}

// TestConnection handles GET /test-connection requests.
func (h *HealthHandler) TestConnection(w http.ResponseWriter, r *http.Request) {
	models, err := h.listModels(r.Context())
	if err != nil || h.deps.Models == nil {
		message := "No generator configured"
		if err != nil {
			message = "Failed to connect to generator"
		}
		log := logger.FromContextOrDefault(r.Context(), h.logger)
		if err != nil {
			log.Error("generator connection test failed", slog.String("error", redact.Error(err)))
		}
		shared.RespondWithJSON(w, r, http.StatusInternalServerError, ConnectionResponse{
			Status:     "error",
			Connection: false,
			Message:    message,
		})
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ConnectionResponse{
		Status:     "ok",
		Connection: true,
		Models:     models,
	})
}

// listModels never returns a nil slice so that the JSON is always an array.
func (h *HealthHandler) listModels(ctx context.Context) ([]string, error) {
	if h.deps.Models == nil {
		return []string{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, modelListTimeout)
	defer cancel()

	models, err := h.deps.Models.ListModels(ctx)
	if err != nil {
		return []string{}, err
	}
	if models == nil {
		models = []string{}
	}
	return models, nil
}

func enabled(fn func() bool) bool {
	return fn != nil && fn()
}
