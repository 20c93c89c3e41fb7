package task

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/generation"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusError     TaskStatus = "error"
)

// Params are the caller-supplied inputs of a generation task.
type Params struct {
	Word           string
	HSKLevel       int
	SystemLanguage domain.Language
	Temperature    float64
	Validate       bool
	RetryOnInvalid bool
}

// Task is one queued generation request and, once finished, its outcome.
type Task struct {
	ID        uuid.UUID
	Params    Params
	Status    TaskStatus
	Result    *domain.GeneratedExercise
	Error     string
	CreatedAt time.Time
}

// Snapshot is what a poller sees of a task.
type Snapshot struct {
	Status    TaskStatus
	Result    *domain.GeneratedExercise
	Error     string
	CreatedAt time.Time
}

// Pipeline produces one exercise. *generation.Controller implements it.
type Pipeline interface {
	GenerateAndValidate(ctx context.Context, req generation.Request) (domain.GeneratedExercise, error)
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan *Task
}

// TaskQueueWriter is the producer side of the queue held by the Manager.
type TaskQueueWriter interface {
	// Enqueue adds a task without blocking. It fails with ErrQueueFull or
	// ErrQueueClosed.
	Enqueue(task *Task) error

	// Len reports how many tasks are waiting for a worker.
	Len() int

	// Close rejects further submissions. Queued tasks are left unread.
	Close()
}
