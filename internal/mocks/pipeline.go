package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/generation"
)

// MockPipeline implements task.Pipeline for testing
type MockPipeline struct {
	// GenerateAndValidateFn allows test cases to mock the pipeline
	GenerateAndValidateFn func(ctx context.Context, req generation.Request) (domain.GeneratedExercise, error)

	// Default response values
	Exercise domain.GeneratedExercise
	Err      error

	mu       sync.Mutex
	requests []generation.Request
}

// GenerateAndValidate implements the task.Pipeline interface
func (m *MockPipeline) GenerateAndValidate(ctx context.Context, req generation.Request) (domain.GeneratedExercise, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateAndValidateFn != nil {
		return m.GenerateAndValidateFn(ctx, req)
	}
	return m.Exercise, m.Err
}

// Requests returns every request passed to GenerateAndValidate.
func (m *MockPipeline) Requests() []generation.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.Request(nil), m.requests...)
}

// Calls returns how many times the pipeline ran.
func (m *MockPipeline) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}
