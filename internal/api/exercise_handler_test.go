package api_test

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/hanzi-cloze/internal/api"
	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/generation"
	"github.com/phrazzld/hanzi-cloze/internal/mocks"
	"github.com/phrazzld/hanzi-cloze/internal/service"
	"github.com/phrazzld/hanzi-cloze/internal/task"
)

func sampleExercise() domain.GeneratedExercise {
	return domain.GeneratedExercise{
		ExerciseCandidate: domain.ExerciseCandidate{
			SentenceWithGap: "我去____取钱。",
			Pinyin:          "wǒ qù yínháng qǔ qián",
			Translation:     "Я иду в банк снять деньги.",
			Options:         []string{"银行", "学校", "医院", "公园"},
			Answer:          "银行",
		},
		GeneratedWith: "qwen2.5-7b-instruct",
		Validation:    &domain.ValidationResult{IsValid: true, Confidence: 0.82},
	}
}

func TestNewExerciseHandler_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { api.NewExerciseHandler(mocks.NewMockExerciseService(), nil) })
	assert.Panics(t, func() { api.NewExerciseHandler(nil, testLogger()) })
}

func TestGenerate_FastResponseQueuesTask(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	svc := mocks.NewMockExerciseService(mocks.WithTaskID(id))
	h := exerciseRouter(api.NewExerciseHandler(svc, testLogger()))

	w := doJSON(t, h, http.MethodPost, "/generate", map[string]interface{}{"word": "银行"})

	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	resp := decodeBody[api.TaskAcceptedResponse](t, w)
	assert.Equal(t, id, resp.TaskID)
	assert.Equal(t, "pending", resp.Status)

	require.Len(t, svc.SubmitParams(), 1)
	assert.Equal(t, service.GenerateParams{
		Word:           "银行",
		Validate:       true,
		RetryOnInvalid: true,
	}, svc.SubmitParams()[0])
	assert.Empty(t, svc.GenerateParams())
}

func TestGenerate_Synchronous(t *testing.T) {
	t.Parallel()

	svc := mocks.NewMockExerciseService(mocks.WithExercise(sampleExercise()))
	h := exerciseRouter(api.NewExerciseHandler(svc, testLogger()))

	w := doJSON(t, h, http.MethodPost, "/generate", map[string]interface{}{
		"word":             "银行",
		"hsk_level":        3,
		"system_language":  "en",
		"validate":         false,
		"retry_on_invalid": false,
		"fast_response":    false,
		"temperature":      0.5,
	})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decodeBody[domain.GeneratedExercise](t, w)
	assert.Equal(t, sampleExercise(), got)

	require.Len(t, svc.GenerateParams(), 1)
	assert.Equal(t, service.GenerateParams{
		Word:           "银行",
		HSKLevel:       3,
		SystemLanguage: domain.LanguageEnglish,
		Temperature:    0.5,
	}, svc.GenerateParams()[0])
}

func TestGenerate_FallbackCarriesNote(t *testing.T) {
	t.Parallel()

	fallback := sampleExercise()
	fallback.GeneratedWith = domain.GeneratedWithFallback
	fallback.Note = generation.FallbackNote
	fallback.Validation = nil
	svc := mocks.NewMockExerciseService(mocks.WithExercise(fallback))
	h := exerciseRouter(api.NewExerciseHandler(svc, testLogger()))

	w := doJSON(t, h, http.MethodPost, "/generate", map[string]interface{}{"word": "银行", "fast_response": false})

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[map[string]interface{}](t, w)
	assert.Equal(t, generation.FallbackNote, body["note"])
	assert.NotContains(t, body, "validation")
}

func TestGenerate_BadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    interface{}
		message string
	}{
		{"empty body", nil, "Word is required"},
		{"malformed JSON", `{"word":`, "Invalid request format"},
		{"missing word", map[string]interface{}{"hsk_level": 2}, "Invalid word: required field"},
		{"level too high", map[string]interface{}{"word": "银行", "hsk_level": 10}, "Invalid hsk_level: too large"},
		{"unknown language", map[string]interface{}{"word": "银行", "system_language": "de"}, "Invalid system_language: must be one of zh, en, ru"},
		{"negative temperature", map[string]interface{}{"word": "银行", "temperature": -1}, "Invalid temperature: too small"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := mocks.NewMockExerciseService()
			h := exerciseRouter(api.NewExerciseHandler(svc, testLogger()))

			w := doJSON(t, h, http.MethodPost, "/generate", tc.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.message, decodeError(t, w).Error)
			assert.Empty(t, svc.SubmitParams())
			assert.Empty(t, svc.GenerateParams())
		})
	}
}

func TestGenerate_ServiceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"blank word", generation.ErrEmptyWord, http.StatusBadRequest},
		{"queue full", task.ErrQueueFull, http.StatusServiceUnavailable},
		{"stopped", task.ErrManagerStopped, http.StatusServiceUnavailable},
		{"unexpected", fmt.Errorf("boom at /srv/app/main.go"), http.StatusInternalServerError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := mocks.NewMockExerciseService(mocks.WithError(tc.err))
			h := exerciseRouter(api.NewExerciseHandler(svc, testLogger()))

			w := doJSON(t, h, http.MethodPost, "/generate", map[string]interface{}{"word": "  "})

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, api.GetSafeErrorMessage(tc.err), decodeError(t, w).Error)
			assert.NotContains(t, w.Body.String(), "/srv/app")
		})
	}
}

func TestGetTask(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ex := sampleExercise()

	tests := []struct {
		name   string
		snap   task.Snapshot
		assert func(t *testing.T, body map[string]interface{})
	}{
		{
			name: "pending",
			snap: task.Snapshot{Status: task.TaskStatusPending},
			assert: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, map[string]interface{}{"status": "pending"}, body)
			},
		},
		{
			name: "completed",
			snap: task.Snapshot{Status: task.TaskStatusCompleted, Result: &ex, CreatedAt: created},
			assert: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "completed", body["status"])
				result, ok := body["result"].(map[string]interface{})
				require.True(t, ok)
				assert.Equal(t, "银行", result["answer"])
				assert.NotContains(t, body, "created_at")
			},
		},
		{
			name: "error",
			snap: task.Snapshot{Status: task.TaskStatusError, Error: "task worker fault", CreatedAt: created},
			assert: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "error", body["status"])
				assert.Equal(t, "task worker fault", body["error"])
				assert.Equal(t, "2026-03-01T12:00:00Z", body["created_at"])
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			id := uuid.New()
			svc := mocks.NewMockExerciseService()
			svc.PollFn = func(got uuid.UUID) task.Snapshot {
				if got != id {
					return task.Snapshot{Status: task.TaskStatusPending}
				}
				return tc.snap
			}
			h := exerciseRouter(api.NewExerciseHandler(svc, testLogger()))

			w := doJSON(t, h, http.MethodGet, "/task/"+id.String(), nil)

			require.Equal(t, http.StatusOK, w.Code)
			tc.assert(t, decodeBody[map[string]interface{}](t, w))
		})
	}
}

func TestGetTask_MalformedIDIsPending(t *testing.T) {
	t.Parallel()

	svc := mocks.NewMockExerciseService()
	svc.PollFn = func(uuid.UUID) task.Snapshot {
		t.Fatal("Poll must not be called for malformed ids")
		return task.Snapshot{}
	}
	h := exerciseRouter(api.NewExerciseHandler(svc, testLogger()))

	w := doJSON(t, h, http.MethodGet, "/task/not-a-uuid", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"pending"}`, w.Body.String())
}

func TestListArchived(t *testing.T) {
	t.Parallel()

	archived := &domain.ArchivedExercise{
		ID:             uuid.New(),
		Word:           "银行",
		HSKLevel:       2,
		SystemLanguage: domain.LanguageRussian,
		Exercise:       sampleExercise(),
		CreatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	var gotWord string
	svc := mocks.NewMockExerciseService()
	svc.ArchiveFn = func(_ context.Context, word string, _ int) ([]*domain.ArchivedExercise, error) {
		gotWord = word
		return []*domain.ArchivedExercise{archived}, nil
	}
	h := exerciseRouter(api.NewExerciseHandler(svc, testLogger()))

	w := doJSON(t, h, http.MethodGet, "/api/exercises/"+url.PathEscape("银行")+"?limit=5", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decodeBody[api.ArchiveResponse](t, w)
	assert.Equal(t, "银行", gotWord)
	assert.Equal(t, "银行", resp.Word)
	require.Len(t, resp.Exercises, 1)
	assert.Equal(t, archived.ID, resp.Exercises[0].ID)
	assert.Equal(t, "ru", resp.Exercises[0].SystemLanguage)
	assert.Equal(t, []int{5}, svc.ArchiveLimits())
}

func TestListArchived_DefaultsAndErrors(t *testing.T) {
	t.Parallel()

	svc := mocks.NewMockExerciseService()
	h := exerciseRouter(api.NewExerciseHandler(svc, testLogger()))

	w := doJSON(t, h, http.MethodGet, "/api/exercises/"+url.PathEscape("银行"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"word":"银行","exercises":[]}`, w.Body.String())
	assert.Equal(t, []int{service.DefaultArchiveLimit}, svc.ArchiveLimits())

	w = doJSON(t, h, http.MethodGet, "/api/exercises/"+url.PathEscape("银行")+"?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid limit", decodeError(t, w).Error)
}
