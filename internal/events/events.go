package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

// Event types.
const (
	// TypeExerciseGenerated is emitted whenever the pipeline returns an exercise.
	TypeExerciseGenerated = "exercise.generated"
)

// Event sources.
const (
	SourceTask = "task"
	SourceSync = "sync"
)

// ExerciseEvent reports a finished exercise to interested components without
// coupling them to the task manager or the HTTP handlers.
type ExerciseEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates what happened
	Type string `json:"type"`

	// Source is SourceTask for queued requests and SourceSync otherwise
	Source string `json:"source"`

	// TaskID is set for queued requests
	TaskID uuid.UUID `json:"task_id,omitempty"`

	Word           string                   `json:"word"`
	HSKLevel       int                      `json:"hsk_level"`
	SystemLanguage domain.Language          `json:"system_language"`
	Exercise       domain.GeneratedExercise `json:"exercise"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewExerciseGeneratedEvent creates an event for a finished exercise.
func NewExerciseGeneratedEvent(
	source string,
	taskID uuid.UUID,
	hskLevel int,
	lang domain.Language,
	exercise domain.GeneratedExercise,
) *ExerciseEvent {
	return &ExerciseEvent{
		ID:             uuid.New(),
		Type:           TypeExerciseGenerated,
		Source:         source,
		TaskID:         taskID,
		Word:           exercise.Answer,
		HSKLevel:       hskLevel,
		SystemLanguage: lang,
		Exercise:       exercise,
		CreatedAt:      time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ExerciseEvent) error
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ctx context.Context, event *ExerciseEvent) error

// HandleEvent calls f.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, event *ExerciseEvent) error {
	return f(ctx, event)
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *ExerciseEvent) error
}
