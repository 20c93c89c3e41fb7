package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/events"
	"github.com/phrazzld/hanzi-cloze/internal/generation"
	"github.com/phrazzld/hanzi-cloze/internal/store"
	"github.com/phrazzld/hanzi-cloze/internal/task"
)

// Archive list bounds.
const (
	DefaultArchiveLimit = 20
	MaxArchiveLimit     = 100
)

// GenerateParams are the caller-supplied inputs of one exercise request.
type GenerateParams struct {
	Word           string
	HSKLevel       int
	SystemLanguage domain.Language
	Temperature    float64
	Validate       bool
	RetryOnInvalid bool
}

// TaskManager is the asynchronous side of the service. *task.Manager
// implements it.
type TaskManager interface {
	Submit(ctx context.Context, p task.Params) (uuid.UUID, error)
	Poll(id uuid.UUID) task.Snapshot
}

// ExerciseService provides exercise generation and archive operations.
type ExerciseService interface {
	// Generate runs the pipeline synchronously. Identical concurrent requests
	// share one run.
	Generate(ctx context.Context, p GenerateParams) (domain.GeneratedExercise, error)

	// Submit queues a generation task and returns its id.
	Submit(ctx context.Context, p GenerateParams) (uuid.UUID, error)

	// Poll returns the state of a submitted task.
	Poll(id uuid.UUID) task.Snapshot

	// Archive lists archived exercises for word, newest first. It returns an
	// empty list when no archive is configured.
	Archive(ctx context.Context, word string, limit int) ([]*domain.ArchivedExercise, error)
}

// ExerciseServiceConfig holds the service settings.
type ExerciseServiceConfig struct {
	// SyncMaxRetries is the retry budget of the synchronous path.
	SyncMaxRetries int
}

// exerciseServiceImpl implements the ExerciseService interface
type exerciseServiceImpl struct {
	pipeline     task.Pipeline
	tasks        TaskManager
	archive      store.ExerciseStore
	eventEmitter events.EventEmitter
	cfg          ExerciseServiceConfig
	group        singleflight.Group
	logger       *slog.Logger
}

// NewExerciseService creates a new ExerciseService.
// pipeline and tasks are required; archive and eventEmitter may be nil.
func NewExerciseService(
	pipeline task.Pipeline,
	tasks TaskManager,
	archive store.ExerciseStore,
	eventEmitter events.EventEmitter,
	cfg ExerciseServiceConfig,
	logger *slog.Logger,
) (ExerciseService, error) {
	if pipeline == nil {
		return nil, &ExerciseServiceError{
			Operation: "create_service",
			Message:   "pipeline cannot be nil",
		}
	}
	if tasks == nil {
		return nil, &ExerciseServiceError{
			Operation: "create_service",
			Message:   "task manager cannot be nil",
		}
	}
	if cfg.SyncMaxRetries < 0 {
		cfg.SyncMaxRetries = 0
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &exerciseServiceImpl{
		pipeline:     pipeline,
		tasks:        tasks,
		archive:      archive,
		eventEmitter: eventEmitter,
		cfg:          cfg,
		logger:       logger.With("component", "exercise_service"),
	}, nil
}

// normalize trims the word and fills defaults, rejecting out-of-range input.
func normalize(p GenerateParams) (GenerateParams, error) {
	p.Word = strings.TrimSpace(p.Word)
	if p.Word == "" {
		return p, generation.ErrEmptyWord
	}
	if p.HSKLevel == 0 {
		p.HSKLevel = domain.MinHSKLevel
	}
	if p.HSKLevel < domain.MinHSKLevel || p.HSKLevel > domain.MaxHSKLevel {
		return p, fmt.Errorf("%w: %d", domain.ErrInvalidHSKLevel, p.HSKLevel)
	}
	if p.SystemLanguage == "" {
		p.SystemLanguage = domain.DefaultSystemLanguage
	}
	if _, ok := domain.ParseLanguage(string(p.SystemLanguage)); !ok {
		return p, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, p.SystemLanguage)
	}
	return p, nil
}

func (p GenerateParams) key() string {
	return fmt.Sprintf("%s|%d|%s|%g|%t|%t",
		p.Word, p.HSKLevel, p.SystemLanguage, p.Temperature, p.Validate, p.RetryOnInvalid)
}

func (p GenerateParams) taskParams() task.Params {
	return task.Params{
		Word:           p.Word,
		HSKLevel:       p.HSKLevel,
		SystemLanguage: p.SystemLanguage,
		Temperature:    p.Temperature,
		Validate:       p.Validate,
		RetryOnInvalid: p.RetryOnInvalid,
	}
}

// Generate implements ExerciseService.Generate.
func (s *exerciseServiceImpl) Generate(ctx context.Context, p GenerateParams) (domain.GeneratedExercise, error) {
	p, err := normalize(p)
	if err != nil {
		return domain.GeneratedExercise{}, NewExerciseServiceError("generate", "invalid request", err)
	}

	// The shared run must not die with whichever caller arrived first.
	runCtx := context.WithoutCancel(ctx)

	v, err, shared := s.group.Do(p.key(), func() (interface{}, error) {
		ex, err := s.pipeline.GenerateAndValidate(runCtx, generation.Request{
			Word:           p.Word,
			HSKLevel:       p.HSKLevel,
			SystemLanguage: p.SystemLanguage,
			Temperature:    p.Temperature,
			Validate:       p.Validate,
			RetryOnInvalid: p.RetryOnInvalid,
			MaxRetries:     s.cfg.SyncMaxRetries,
		})
		if err != nil {
			return domain.GeneratedExercise{}, err
		}
		s.emit(runCtx, p, ex)
		return ex, nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "synchronous generation failed", "word", p.Word, "error", err)
		return domain.GeneratedExercise{}, NewExerciseServiceError("generate", "pipeline failed", err)
	}

	ex := v.(domain.GeneratedExercise)
	if shared {
		s.logger.DebugContext(ctx, "shared in-flight generation", "word", p.Word)
		ex = ex.Clone()
	}
	return ex, nil
}

// Submit implements ExerciseService.Submit.
func (s *exerciseServiceImpl) Submit(ctx context.Context, p GenerateParams) (uuid.UUID, error) {
	p, err := normalize(p)
	if err != nil {
		return uuid.Nil, NewExerciseServiceError("submit", "invalid request", err)
	}

	id, err := s.tasks.Submit(ctx, p.taskParams())
	if err != nil {
		return uuid.Nil, NewExerciseServiceError("submit", "failed to queue task", err)
	}
	return id, nil
}

// Poll implements ExerciseService.Poll.
func (s *exerciseServiceImpl) Poll(id uuid.UUID) task.Snapshot {
	return s.tasks.Poll(id)
}

// Archive implements ExerciseService.Archive.
func (s *exerciseServiceImpl) Archive(ctx context.Context, word string, limit int) ([]*domain.ArchivedExercise, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, generation.ErrEmptyWord
	}
	if s.archive == nil {
		return []*domain.ArchivedExercise{}, nil
	}
	if limit <= 0 {
		limit = DefaultArchiveLimit
	}
	if limit > MaxArchiveLimit {
		limit = MaxArchiveLimit
	}

	list, err := s.archive.ListByWord(ctx, word, limit)
	if err != nil {
		return nil, NewExerciseServiceError("archive", "failed to list archived exercises", err)
	}
	return list, nil
}

func (s *exerciseServiceImpl) emit(ctx context.Context, p GenerateParams, ex domain.GeneratedExercise) {
	if s.eventEmitter == nil {
		return
	}
	event := events.NewExerciseGeneratedEvent(events.SourceSync, uuid.Nil, p.HSKLevel, p.SystemLanguage, ex.Clone())
	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "exercise event handler failed", "word", p.Word, "error", err)
	}
}
