package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Handler processes one task. It is called from a worker goroutine with the
// pool's context, which is cancelled by Stop.
type Handler func(ctx context.Context, workerID int, task *Task)

// WorkerPool manages a pool of worker goroutines that process tasks
// from a task queue. It handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	// taskQueue provides read access to the tasks to be processed
	taskQueue TaskQueueReader

	// workerCount is the number of concurrent workers to start
	workerCount int

	// handler runs each task
	handler Handler

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is used for cancellation and shutdown signaling
	ctx context.Context

	// cancel is the function to call to cancel the context
	cancel context.CancelFunc

	// logger for structured logging
	logger *slog.Logger

	// errorHandler is called when a handler panics
	// If nil, panics are only logged
	errorHandler func(task *Task, err error)

	startOnce sync.Once
	stopOnce  sync.Once
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(taskQueue TaskQueueReader, config WorkerPoolConfig, handler Handler, logger *slog.Logger) *WorkerPool {
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		taskQueue:   taskQueue,
		workerCount: workerCount,
		handler:     handler,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetErrorHandler allows setting a custom error handler for handler panics
func (p *WorkerPool) SetErrorHandler(handler func(task *Task, err error)) {
	p.errorHandler = handler
}

// Start launches the worker goroutines. Calling it more than once has no effect.
func (p *WorkerPool) Start() {
	p.startOnce.Do(func() {
		p.logger.Info("starting worker pool", "worker_count", p.workerCount)
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

// Stop cancels the pool's context and waits for every worker to return.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() {
		p.logger.Info("stopping worker pool")
		p.cancel()
		p.wg.Wait()
		p.logger.Info("worker pool stopped")
	})
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	log := p.logger.With("worker_id", id)
	log.Debug("worker started")

	for {
		select {
		case <-p.ctx.Done():
			log.Debug("worker stopping")
			return
		case task, ok := <-p.taskQueue.GetChannel():
			if !ok {
				log.Debug("task queue closed, worker stopping")
				return
			}
			p.run(id, task)
		}
	}
}

// run is the last-resort error boundary that keeps a worker alive when a
// handler panics.
func (p *WorkerPool) run(id int, task *Task) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrWorkerFault, r)
			p.logger.Error("task handler panicked",
				"worker_id", id,
				"task_id", task.ID,
				"error", err)
			if p.errorHandler != nil {
				p.errorHandler(task, err)
			}
		}
	}()
	p.handler(p.ctx, id, task)
}
