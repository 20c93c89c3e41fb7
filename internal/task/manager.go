package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/events"
	"github.com/phrazzld/hanzi-cloze/internal/generation"
)

// Config holds the task manager settings.
type Config struct {
	WorkerCount int
	QueueSize   int
	// TTL is how long finished records are kept after creation.
	TTL time.Duration
	// MaxRetries is passed to the pipeline for every task.
	MaxRetries int
}

// DefaultConfig returns the defaults used when a field is zero.
func DefaultConfig() Config {
	return Config{
		WorkerCount: 1,
		QueueSize:   100,
		TTL:         300 * time.Second,
		MaxRetries:  3,
	}
}

// Manager owns the queue, the worker pool and the result store.
type Manager struct {
	pipeline Pipeline
	emitter  events.EventEmitter
	queue    TaskQueueWriter
	pool     *WorkerPool
	store    *ResultStore
	cfg      Config
	logger   *slog.Logger
	now      func() time.Time
	stopped  atomic.Bool
}

// NewManager creates a manager. emitter may be nil.
func NewManager(pipeline Pipeline, emitter events.EventEmitter, cfg Config, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if pipeline == nil {
		return nil, errors.New("pipeline cannot be nil")
	}

	def := DefaultConfig()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = def.WorkerCount
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	log := logger.With("component", "task_manager")
	queue := NewTaskQueue(cfg.QueueSize, log)
	m := &Manager{
		pipeline: pipeline,
		emitter:  emitter,
		queue:    queue,
		store:    NewResultStore(),
		cfg:      cfg,
		logger:   log,
		now:      time.Now,
	}
	m.pool = NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: cfg.WorkerCount}, m.handle, log)
	m.pool.SetErrorHandler(func(t *Task, err error) {
		m.store.Fail(t.ID, err.Error())
	})
	return m, nil
}

// Start launches the workers.
func (m *Manager) Start() {
	m.pool.Start()
}

// Stop cancels in-flight work, waits for the workers and closes the queue.
// Tasks still queued are never run and keep polling as pending.
func (m *Manager) Stop() {
	if m.stopped.Swap(true) {
		return
	}
	m.pool.Stop()
	m.queue.Close()
}

// Submit records a pending task and queues it. The returned id can be polled
// immediately.
func (m *Manager) Submit(ctx context.Context, p Params) (uuid.UUID, error) {
	p.Word = strings.TrimSpace(p.Word)
	if p.Word == "" {
		return uuid.Nil, generation.ErrEmptyWord
	}
	if m.stopped.Load() {
		return uuid.Nil, ErrManagerStopped
	}

	t := &Task{
		ID:        uuid.New(),
		Params:    p,
		Status:    TaskStatusPending,
		CreatedAt: m.now(),
	}
	m.store.Put(t)

	if err := m.queue.Enqueue(t); err != nil {
		m.store.Delete(t.ID)
		m.logger.WarnContext(ctx, "failed to enqueue task", "word", p.Word, "error", err)
		return uuid.Nil, err
	}

	m.logger.InfoContext(ctx, "task submitted", "task_id", t.ID, "word", p.Word, "hsk_level", p.HSKLevel)
	return t.ID, nil
}

// Poll returns the task's current state. Unknown ids report pending.
func (m *Manager) Poll(id uuid.UUID) Snapshot {
	snap, ok := m.store.Get(id)
	if !ok {
		return Snapshot{Status: TaskStatusPending}
	}
	return snap
}

// QueueLen returns the number of tasks waiting for a worker.
func (m *Manager) QueueLen() int {
	return m.queue.Len()
}

// handle runs one task inside its own error boundary, writes the terminal
// record and sweeps expired records.
func (m *Manager) handle(ctx context.Context, workerID int, t *Task) {
	log := m.logger.With("task_id", t.ID, "worker_id", workerID, "word", t.Params.Word)
	start := m.now()

	result, err := m.execute(ctx, t)
	if err != nil {
		log.ErrorContext(ctx, "task failed", "error", err)
		m.store.Fail(t.ID, err.Error())
	} else {
		m.store.Complete(t.ID, result)
		log.InfoContext(ctx, "task completed",
			"generated_with", result.GeneratedWith,
			"confidence", result.Confidence(),
			"duration", m.now().Sub(start))
		m.emit(ctx, t, result)
	}

	if n := m.store.Sweep(m.now().Add(-m.cfg.TTL)); n > 0 {
		log.DebugContext(ctx, "swept expired task records", "removed", n, "remaining", m.store.Len())
	}
}

func (m *Manager) execute(ctx context.Context, t *Task) (result domain.GeneratedExercise, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrWorkerFault, r)
		}
	}()

	return m.pipeline.GenerateAndValidate(ctx, generation.Request{
		Word:           t.Params.Word,
		HSKLevel:       t.Params.HSKLevel,
		SystemLanguage: t.Params.SystemLanguage,
		Temperature:    t.Params.Temperature,
		Validate:       t.Params.Validate,
		RetryOnInvalid: t.Params.RetryOnInvalid,
		MaxRetries:     m.cfg.MaxRetries,
	})
}

func (m *Manager) emit(ctx context.Context, t *Task, result domain.GeneratedExercise) {
	if m.emitter == nil {
		return
	}
	event := events.NewExerciseGeneratedEvent(events.SourceTask, t.ID, t.Params.HSKLevel, t.Params.SystemLanguage, result)
	if err := m.emitter.EmitEvent(ctx, event); err != nil {
		m.logger.WarnContext(ctx, "exercise event handler failed", "task_id", t.ID, "error", err)
	}
}
