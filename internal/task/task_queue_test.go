package task

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func newTestTask(word string) *Task {
	return &Task{
		ID:     uuid.New(),
		Params: Params{Word: word},
		Status: TaskStatusPending,
	}
}

func TestNewTaskQueue(t *testing.T) {
	queue := NewTaskQueue(10, setupTestLogger())

	assert.NotNil(t, queue)
	assert.Equal(t, 10, cap(queue.tasks))
	assert.False(t, queue.closed)

	queue = NewTaskQueue(0, setupTestLogger())
	assert.Equal(t, 1, cap(queue.tasks), "non-positive sizes fall back to 1")
}

func TestEnqueue(t *testing.T) {
	queue := NewTaskQueue(2, setupTestLogger())

	task1 := newTestTask("银行")
	task2 := newTestTask("学校")
	require.NoError(t, queue.Enqueue(task1))
	require.NoError(t, queue.Enqueue(task2))
	assert.Equal(t, 2, queue.Len())

	err := queue.Enqueue(newTestTask("医院"))
	assert.ErrorIs(t, err, ErrQueueFull)

	assert.Same(t, task1, <-queue.GetChannel(), "tasks come out in FIFO order")
	assert.Same(t, task2, <-queue.GetChannel())
}

func TestClose(t *testing.T) {
	queue := NewTaskQueue(2, setupTestLogger())
	require.NoError(t, queue.Enqueue(newTestTask("银行")))

	queue.Close()
	queue.Close()

	assert.ErrorIs(t, queue.Enqueue(newTestTask("学校")), ErrQueueClosed)

	_, ok := <-queue.GetChannel()
	assert.True(t, ok, "buffered tasks are still readable after close")
	_, ok = <-queue.GetChannel()
	assert.False(t, ok)
}
