package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
	"github.com/phrazzld/hanzi-cloze/internal/store"
)

// MockExerciseStore is an in-memory store.ExerciseStore
type MockExerciseStore struct {
	// SaveErr and ListErr, when set, are returned instead of touching the data
	SaveErr error
	ListErr error

	mu    sync.Mutex
	saved []*domain.ArchivedExercise
}

var _ store.ExerciseStore = (*MockExerciseStore)(nil)

// Save implements the store.ExerciseStore interface
func (m *MockExerciseStore) Save(_ context.Context, ex *domain.ArchivedExercise) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.saved {
		if s.ID == ex.ID {
			return store.ErrExerciseExists
		}
	}
	cp := *ex
	m.saved = append(m.saved, &cp)
	return nil
}

// ListByWord implements the store.ExerciseStore interface
func (m *MockExerciseStore) ListByWord(_ context.Context, word string, limit int) ([]*domain.ArchivedExercise, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*domain.ArchivedExercise, 0)
	for _, s := range m.saved {
		if s.Word == word {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Saved returns every archived exercise in insertion order.
func (m *MockExerciseStore) Saved() []*domain.ArchivedExercise {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.ArchivedExercise(nil), m.saved...)
}
