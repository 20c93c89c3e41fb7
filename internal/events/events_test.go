package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

func sampleExercise() domain.GeneratedExercise {
	return domain.GeneratedExercise{
		ExerciseCandidate: domain.ExerciseCandidate{
			SentenceWithGap: "他在____工作。",
			Pinyin:          "tā zài yínháng gōngzuò",
			Translation:     "He works at a bank.",
			Options:         []string{"银行", "公司", "商店", "学校"},
			Answer:          "银行",
		},
		GeneratedWith: "gemma-3-4b-it-qat",
	}
}

func TestNewExerciseGeneratedEvent(t *testing.T) {
	taskID := uuid.New()
	event := NewExerciseGeneratedEvent(SourceTask, taskID, 3, domain.LanguageRussian, sampleExercise())

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, TypeExerciseGenerated, event.Type)
	assert.Equal(t, SourceTask, event.Source)
	assert.Equal(t, taskID, event.TaskID)
	assert.Equal(t, "银行", event.Word)
	assert.Equal(t, 3, event.HSKLevel)
	assert.Equal(t, domain.LanguageRussian, event.SystemLanguage)
	assert.WithinDuration(t, time.Now(), event.CreatedAt, 2*time.Second)

	raw, err := json.Marshal(event)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "exercise.generated", decoded["type"])
	assert.Equal(t, taskID.String(), decoded["task_id"])
}

// MockEventHandler implements the EventHandler interface for testing
type MockEventHandler struct {
	// The last event received by this handler
	LastEvent *ExerciseEvent
	// Error to return from HandleEvent
	HandlerError error
	// Count of events handled
	HandledCount int
}

// HandleEvent implements the EventHandler interface
func (h *MockEventHandler) HandleEvent(ctx context.Context, event *ExerciseEvent) error {
	h.LastEvent = event
	h.HandledCount++
	return h.HandlerError
}

func TestEventHandlerFunc(t *testing.T) {
	var got *ExerciseEvent
	h := EventHandlerFunc(func(_ context.Context, e *ExerciseEvent) error {
		got = e
		return errors.New("handled")
	})

	event := NewExerciseGeneratedEvent(SourceSync, uuid.Nil, 1, domain.LanguageEnglish, sampleExercise())
	err := h.HandleEvent(context.Background(), event)

	assert.EqualError(t, err, "handled")
	assert.Same(t, event, got)
}
