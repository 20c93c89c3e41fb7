package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/hanzi-cloze/internal/generation"
)

// MockGenerator implements generation.Generator and generation.ModelLister for testing
type MockGenerator struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, prompt generation.Prompt) (generation.Output, error)

	// ListModelsFn allows test cases to mock the ListModels behavior
	ListModelsFn func(ctx context.Context) ([]string, error)

	// Default response values
	Output generation.Output
	Err    error
	Models []string

	// Call tracking for verification
	GenerateCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times Generate was called
		Count int

		// Prompts contains all prompts passed to Generate calls
		Prompts []generation.Prompt
	}
}

// Generate implements the generation.Generator interface
func (m *MockGenerator) Generate(ctx context.Context, prompt generation.Prompt) (generation.Output, error) {
	m.GenerateCalls.mu.Lock()
	m.GenerateCalls.Count++
	m.GenerateCalls.Prompts = append(m.GenerateCalls.Prompts, prompt)
	m.GenerateCalls.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, prompt)
	}
	return m.Output, m.Err
}

// ListModels implements the generation.ModelLister interface
func (m *MockGenerator) ListModels(ctx context.Context) ([]string, error) {
	if m.ListModelsFn != nil {
		return m.ListModelsFn(ctx)
	}
	return m.Models, m.Err
}

// CallCount returns the number of Generate calls
func (m *MockGenerator) CallCount() int {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()
	return m.GenerateCalls.Count
}

// Temperatures returns the temperature of every Generate call, in order
func (m *MockGenerator) Temperatures() []float64 {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()
	out := make([]float64, 0, len(m.GenerateCalls.Prompts))
	for _, p := range m.GenerateCalls.Prompts {
		out = append(out, p.Temperature)
	}
	return out
}

// NewMockGeneratorWithText creates a MockGenerator that always replies with text
func NewMockGeneratorWithText(text, model string) *MockGenerator {
	return &MockGenerator{
		Output: generation.Output{Text: text, Model: model},
	}
}

// NewMockGeneratorWithError creates a MockGenerator that returns the specified error
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{
		Err: err,
	}
}

// MockGeneratorWithTransientFailure creates a MockGenerator that simulates a transient failure
func MockGeneratorWithTransientFailure() *MockGenerator {
	return &MockGenerator{
		Err: generation.ErrTransientFailure,
	}
}

// Reset resets the call tracking state
func (m *MockGenerator) Reset() {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()

	m.GenerateCalls.Count = 0
	m.GenerateCalls.Prompts = nil
}
