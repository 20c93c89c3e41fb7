package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/hanzi-cloze/internal/api/shared"
	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/platform/logger"
	"github.com/phrazzld/hanzi-cloze/internal/service"
	"github.com/phrazzld/hanzi-cloze/internal/task"
)

// ExerciseHandler handles exercise generation, task polling and archive
// requests.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
	logger          *slog.Logger
}

// NewExerciseHandler creates a new ExerciseHandler
func NewExerciseHandler(exerciseService service.ExerciseService, logger *slog.Logger) *ExerciseHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ExerciseHandler")
	}
	if exerciseService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("exercise service cannot be nil for ExerciseHandler")
	}

	return &ExerciseHandler{
		exerciseService: exerciseService,
		logger:          logger.With(slog.String("component", "exercise_handler")),
	}
}

// Generate handles POST /generate requests.
// With fast_response (the default) the exercise is queued and a task id is
// returned with 202; otherwise the exercise is generated inline.
func (h *ExerciseHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req GenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			HandleAPIError(w, r, err, "Word is required")
			return
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	params := service.GenerateParams{
		Word:           req.Word,
		HSKLevel:       req.HSKLevel,
		SystemLanguage: domain.Language(req.SystemLanguage),
		Validate:       boolOrDefault(req.Validate, true),
		RetryOnInvalid: boolOrDefault(req.RetryOnInvalid, true),
	}
	if req.Temperature != nil {
		params.Temperature = *req.Temperature
	}

	if boolOrDefault(req.FastResponse, true) {
		id, err := h.exerciseService.Submit(r.Context(), params)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
		log.Debug("generation task queued", slog.String("task_id", id.String()), slog.String("word", req.Word))
		shared.RespondWithJSON(w, r, http.StatusAccepted, TaskAcceptedResponse{
			TaskID: id,
			Status: string(task.TaskStatusPending),
		})
		return
	}

	ex, err := h.exerciseService.Generate(r.Context(), params)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ex)
}

// GetTask handles GET /task/{id} requests.
// Unknown, expired and malformed ids all report pending.
func (h *ExerciseHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := getPathUUID(r, "id")
	if !ok {
		logger.FromContextOrDefault(r.Context(), h.logger).
			Debug("malformed task id", slog.String("task_id", getPathString(r, "id")))
		shared.RespondWithJSON(w, r, http.StatusOK, TaskStatusResponse{Status: string(task.TaskStatusPending)})
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, snapshotToResponse(h.exerciseService.Poll(id)))
}

// ListArchived handles GET /api/exercises/{word} requests.
func (h *ExerciseHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	word := getPathString(r, "word")

	limit, err := getQueryInt(r, "limit", service.DefaultArchiveLimit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid limit", err)
		return
	}

	list, err := h.exerciseService.Archive(r.Context(), word, limit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := ArchiveResponse{Word: word, Exercises: make([]ArchivedExerciseResponse, 0, len(list))}
	for _, a := range list {
		resp.Exercises = append(resp.Exercises, archivedToResponse(a))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

func snapshotToResponse(snap task.Snapshot) TaskStatusResponse {
	resp := TaskStatusResponse{Status: string(snap.Status)}
	switch snap.Status {
	case task.TaskStatusCompleted:
		resp.Result = snap.Result
	case task.TaskStatusError:
		resp.Error = snap.Error
		created := snap.CreatedAt
		resp.CreatedAt = &created
	default:
		resp.Status = string(task.TaskStatusPending)
	}
	return resp
}

func archivedToResponse(a *domain.ArchivedExercise) ArchivedExerciseResponse {
	return ArchivedExerciseResponse{
		ID:             a.ID,
		Word:           a.Word,
		HSKLevel:       a.HSKLevel,
		SystemLanguage: string(a.SystemLanguage),
		Exercise:       a.Exercise,
		CreatedAt:      a.CreatedAt,
	}
}
