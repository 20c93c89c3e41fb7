package task

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/hanzi-cloze/internal/domain"
)

// ResultStore is the id to record map shared by submitters, workers and
// pollers. Each record leaves the pending state at most once.
type ResultStore struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*Task
}

// NewResultStore returns an empty store.
func NewResultStore() *ResultStore {
	return &ResultStore{tasks: make(map[uuid.UUID]*Task)}
}

// Put records a pending task.
func (s *ResultStore) Put(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
}

// Delete removes a record.
func (s *ResultStore) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
}

// Complete stores the result of a pending task. It reports false when the
// task is unknown or already terminal.
func (s *ResultStore) Complete(id uuid.UUID, result domain.GeneratedExercise) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.Status != TaskStatusPending {
		return false
	}
	t.Status = TaskStatusCompleted
	t.Result = &result
	return true
}

// Fail marks a pending task as failed. It reports false when the task is
// unknown or already terminal.
func (s *ResultStore) Fail(id uuid.UUID, msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.Status != TaskStatusPending {
		return false
	}
	t.Status = TaskStatusError
	t.Error = msg
	return true
}

// Get returns a copy of the record and whether it exists.
func (s *ResultStore) Get(id uuid.UUID) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return Snapshot{}, false
	}
	snap := Snapshot{Status: t.Status, Error: t.Error, CreatedAt: t.CreatedAt}
	if t.Result != nil {
		r := t.Result.Clone()
		snap.Result = &r
	}
	return snap, true
}

// Sweep deletes finished records created before cutoff and returns how many
// were removed. Pending records are kept so a queued task never loses its
// result.
func (s *ResultStore) Sweep(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, t := range s.tasks {
		if t.Status != TaskStatusPending && t.CreatedAt.Before(cutoff) {
			delete(s.tasks, id)
			n++
		}
	}
	return n
}

// Len returns the number of records.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}
