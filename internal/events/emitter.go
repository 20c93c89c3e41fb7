package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrHandlerPanic wraps a panic recovered from an event handler.
var ErrHandlerPanic = errors.New("event handler panicked")

// Filter reports whether a handler wants to see an event.
type Filter func(event *ExerciseEvent) bool

// Archivable matches generated exercises that came from a model and passed
// validation or skipped it.
func Archivable(event *ExerciseEvent) bool {
	return event.Type == TypeExerciseGenerated && event.Exercise.Archivable()
}

// FromSource matches events published by one of the given sources.
func FromSource(sources ...string) Filter {
	return func(event *ExerciseEvent) bool {
		for _, s := range sources {
			if event.Source == s {
				return true
			}
		}
		return false
	}
}

type subscription struct {
	handler EventHandler
	filters []Filter
}

func (s subscription) matches(event *ExerciseEvent) bool {
	for _, f := range s.filters {
		if !f(event) {
			return false
		}
	}
	return true
}

// InMemoryEventEmitter fans exercise events out to registered handlers
// synchronously, in registration order.
type InMemoryEventEmitter struct {
	subs   []subscription
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewInMemoryEventEmitter creates an emitter with no handlers.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: logger.With("component", "event_emitter"),
	}
}

// RegisterHandler subscribes handler to events accepted by every filter.
// With no filters the handler sees all events.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler, filters ...Filter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, subscription{handler: handler, filters: filters})
	e.logger.Debug("registered event handler",
		"handler", fmt.Sprintf("%T", handler),
		"filters", len(filters),
		"handler_count", len(e.subs))
}

// EmitEvent delivers event to each matching handler. A failing or panicking
// handler does not stop delivery to the others; all failures are joined into
// the returned error.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *ExerciseEvent) error {
	if event == nil {
		return nil
	}

	e.mu.RLock()
	subs := make([]subscription, len(e.subs))
	copy(subs, e.subs)
	e.mu.RUnlock()

	log := e.logger.With("event_id", event.ID, "event_type", event.Type, "source", event.Source)

	var errs []error
	delivered := 0
	for i, sub := range subs {
		if !sub.matches(event) {
			continue
		}
		delivered++
		if err := deliver(ctx, sub.handler, event); err != nil {
			log.ErrorContext(ctx, "event handler failed",
				"error", err,
				"handler_index", i,
				"handler", fmt.Sprintf("%T", sub.handler))
			errs = append(errs, err)
		}
	}

	log.DebugContext(ctx, "event dispatched", "delivered", delivered, "handler_count", len(subs))
	return errors.Join(errs...)
}

func deliver(ctx context.Context, h EventHandler, event *ExerciseEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return h.HandleEvent(ctx, event)
}
