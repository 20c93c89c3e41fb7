package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/hanzi-cloze/internal/scoring"
)

// MockPredictor implements scoring.MaskedPredictor for testing
type MockPredictor struct {
	// PredictMaskedFn allows test cases to mock the PredictMasked behavior
	PredictMaskedFn func(ctx context.Context, masked string) ([]scoring.Prediction, error)

	// Default response values
	Predictions []scoring.Prediction
	Err         error

	mu     sync.Mutex
	calls  int
	masked []string
}

// PredictMasked implements the scoring.MaskedPredictor interface
func (m *MockPredictor) PredictMasked(ctx context.Context, masked string) ([]scoring.Prediction, error) {
	m.mu.Lock()
	m.calls++
	m.masked = append(m.masked, masked)
	m.mu.Unlock()

	if m.PredictMaskedFn != nil {
		return m.PredictMaskedFn(ctx, masked)
	}
	return m.Predictions, m.Err
}

// Calls returns how many times PredictMasked was called
func (m *MockPredictor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MaskedInputs returns the sentences passed to PredictMasked, in call order
func (m *MockPredictor) MaskedInputs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.masked...)
}

// MockEmbedder implements scoring.Embedder for testing
type MockEmbedder struct {
	// EmbedFn allows test cases to mock the Embed behavior
	EmbedFn func(ctx context.Context, texts []string) ([][]float32, error)

	// Vectors maps a text to its embedding when EmbedFn is nil
	Vectors map[string][]float32
	Err     error

	mu    sync.Mutex
	calls int
	texts [][]string
}

// Embed implements the scoring.Embedder interface
func (m *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.calls++
	m.texts = append(m.texts, append([]string(nil), texts...))
	m.mu.Unlock()

	if m.EmbedFn != nil {
		return m.EmbedFn(ctx, texts)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, m.Vectors[t])
	}
	return out, nil
}

// Calls returns how many times Embed was called
func (m *MockEmbedder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Batches returns the text batches passed to Embed, in call order
func (m *MockEmbedder) Batches() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.texts...)
}
