package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

// MockValidator implements generation.Validator for testing
type MockValidator struct {
	// ScoreFn allows test cases to mock the Score behavior
	ScoreFn func(ctx context.Context, c domain.ExerciseCandidate) domain.ValidationResult

	// Results are returned in order, the last one repeating, when ScoreFn is nil
	Results []domain.ValidationResult

	mu         sync.Mutex
	candidates []domain.ExerciseCandidate
}

// Score implements the generation.Validator interface
func (m *MockValidator) Score(ctx context.Context, c domain.ExerciseCandidate) domain.ValidationResult {
	m.mu.Lock()
	n := len(m.candidates)
	m.candidates = append(m.candidates, c.Clone())
	m.mu.Unlock()

	if m.ScoreFn != nil {
		return m.ScoreFn(ctx, c)
	}
	if len(m.Results) == 0 {
		return domain.ValidationResult{IsValid: true, Confidence: 1}
	}
	if n >= len(m.Results) {
		n = len(m.Results) - 1
	}
	return m.Results[n]
}

// Candidates returns every candidate passed to Score, in call order
func (m *MockValidator) Candidates() []domain.ExerciseCandidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.ExerciseCandidate(nil), m.candidates...)
}

// MockEnricher implements generation.Enricher for testing
type MockEnricher struct {
	// EnrichFn allows test cases to mock the Enrich behavior
	EnrichFn func(ctx context.Context, sentence string, lang domain.Language) (string, string, error)

	Pinyin      string
	Translation string
	Err         error

	mu        sync.Mutex
	sentences []string
}

// Enrich implements the generation.Enricher interface
func (m *MockEnricher) Enrich(ctx context.Context, sentence string, lang domain.Language) (string, string, error) {
	m.mu.Lock()
	m.sentences = append(m.sentences, sentence)
	m.mu.Unlock()

	if m.EnrichFn != nil {
		return m.EnrichFn(ctx, sentence, lang)
	}
	return m.Pinyin, m.Translation, m.Err
}

// Sentences returns the sentences passed to Enrich, in call order
func (m *MockEnricher) Sentences() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sentences...)
}
