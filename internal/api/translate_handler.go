package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/hanzi-cloze/internal/api/shared"
	"github.com/phrazzld/hanzi-cloze/internal/platform/logger"
	"github.com/phrazzld/hanzi-cloze/internal/translation"
)

// TextProcessor is the translation boundary used by the handler.
// *translation.Service implements it.
type TextProcessor interface {
	Enabled() bool
	Process(ctx context.Context, req translation.Request) (translation.Result, error)
}

// TranslateHandler handles translation requests.
type TranslateHandler struct {
	processor TextProcessor
	logger    *slog.Logger
}

// NewTranslateHandler creates a new TranslateHandler. processor may be nil,
// in which case every request is answered with 503.
func NewTranslateHandler(processor TextProcessor, logger *slog.Logger) *TranslateHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TranslateHandler")
	}
	return &TranslateHandler{
		processor: processor,
		logger:    logger.With(slog.String("component", "translate_handler")),
	}
}

// Translate handles POST /translate requests.
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req TranslateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	if h.processor == nil || !h.processor.Enabled() {
		HandleAPIError(w, r, translation.ErrUnavailable, "")
		return
	}

	res, err := h.processor.Process(r.Context(), translation.Request{
		Text:       req.Text,
		Source:     req.SourceLang,
		Target:     req.TargetLang,
		NeedPinyin: req.NeedPinyin,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	log.Debug("text translated",
		slog.String("source", req.SourceLang),
		slog.String("target", req.TargetLang),
		slog.String("detected", string(res.DetectedLanguage)))

	shared.RespondWithJSON(w, r, http.StatusOK, TranslateResponse{
		Original:         res.Original,
		DetectedLanguage: string(res.DetectedLanguage),
		Chinese:          res.Chinese,
		English:          res.English,
		Russian:          res.Russian,
		Pinyin:           res.Pinyin,
	})
}
