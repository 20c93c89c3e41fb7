package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/service"
	"github.com/phrazzld/hanzi-cloze/internal/task"
)

// MockExerciseService implements service.ExerciseService for testing
type MockExerciseService struct {
	// Custom behavior functions
	GenerateFn func(ctx context.Context, p service.GenerateParams) (domain.GeneratedExercise, error)
	SubmitFn   func(ctx context.Context, p service.GenerateParams) (uuid.UUID, error)
	PollFn     func(id uuid.UUID) task.Snapshot
	ArchiveFn  func(ctx context.Context, word string, limit int) ([]*domain.ArchivedExercise, error)

	// Default response values
	Exercise domain.GeneratedExercise
	TaskID   uuid.UUID
	Snapshot task.Snapshot
	Archived []*domain.ArchivedExercise
	Err      error

	// Call tracking for verification
	mu             sync.Mutex
	generateParams []service.GenerateParams
	submitParams   []service.GenerateParams
	archiveLimits  []int
}

var _ service.ExerciseService = (*MockExerciseService)(nil)

// Generate implements the service.ExerciseService interface
func (m *MockExerciseService) Generate(ctx context.Context, p service.GenerateParams) (domain.GeneratedExercise, error) {
	m.mu.Lock()
	m.generateParams = append(m.generateParams, p)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, p)
	}
	return m.Exercise, m.Err
}

// Submit implements the service.ExerciseService interface
func (m *MockExerciseService) Submit(ctx context.Context, p service.GenerateParams) (uuid.UUID, error) {
	m.mu.Lock()
	m.submitParams = append(m.submitParams, p)
	m.mu.Unlock()

	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, p)
	}
	return m.TaskID, m.Err
}

// Poll implements the service.ExerciseService interface
func (m *MockExerciseService) Poll(id uuid.UUID) task.Snapshot {
	if m.PollFn != nil {
		return m.PollFn(id)
	}
	return m.Snapshot
}

// Archive implements the service.ExerciseService interface
func (m *MockExerciseService) Archive(ctx context.Context, word string, limit int) ([]*domain.ArchivedExercise, error) {
	m.mu.Lock()
	m.archiveLimits = append(m.archiveLimits, limit)
	m.mu.Unlock()

	if m.ArchiveFn != nil {
		return m.ArchiveFn(ctx, word, limit)
	}
	return m.Archived, m.Err
}

// GenerateParams returns the params of every Generate call.
func (m *MockExerciseService) GenerateParams() []service.GenerateParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.GenerateParams(nil), m.generateParams...)
}

// SubmitParams returns the params of every Submit call.
func (m *MockExerciseService) SubmitParams() []service.GenerateParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]service.GenerateParams(nil), m.submitParams...)
}

// ArchiveLimits returns the limit of every Archive call.
func (m *MockExerciseService) ArchiveLimits() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.archiveLimits...)
}

// Functional option pattern for configuring mock

// MockOption is a function type that configures a MockExerciseService
type MockOption func(*MockExerciseService)

// WithExercise sets the default exercise to return from Generate
func WithExercise(ex domain.GeneratedExercise) MockOption {
	return func(m *MockExerciseService) {
		m.Exercise = ex
	}
}

// WithTaskID sets the default id to return from Submit
func WithTaskID(id uuid.UUID) MockOption {
	return func(m *MockExerciseService) {
		m.TaskID = id
	}
}

// WithSnapshot sets the default snapshot to return from Poll
func WithSnapshot(s task.Snapshot) MockOption {
	return func(m *MockExerciseService) {
		m.Snapshot = s
	}
}

// WithArchived sets the default list to return from Archive
func WithArchived(list []*domain.ArchivedExercise) MockOption {
	return func(m *MockExerciseService) {
		m.Archived = list
	}
}

// WithError sets the default error to return from every method
func WithError(err error) MockOption {
	return func(m *MockExerciseService) {
		m.Err = err
	}
}

// NewMockExerciseService creates a new MockExerciseService with the given options
func NewMockExerciseService(opts ...MockOption) *MockExerciseService {
	mock := &MockExerciseService{}

	// Apply all options
	for _, opt := range opts {
		opt(mock)
	}

	return mock
}
