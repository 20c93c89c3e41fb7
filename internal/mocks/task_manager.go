package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/hanzi-cloze/internal/task"
)

// MockTaskManager implements service.TaskManager for testing
type MockTaskManager struct {
	SubmitFn func(ctx context.Context, p task.Params) (uuid.UUID, error)

	// Err is returned by Submit when SubmitFn is nil
	Err error

	mu        sync.Mutex
	submitted []task.Params
	snapshots map[uuid.UUID]task.Snapshot
}

// Submit implements the service.TaskManager interface
func (m *MockTaskManager) Submit(ctx context.Context, p task.Params) (uuid.UUID, error) {
	m.mu.Lock()
	m.submitted = append(m.submitted, p)
	m.mu.Unlock()

	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, p)
	}
	if m.Err != nil {
		return uuid.Nil, m.Err
	}
	return uuid.New(), nil
}

// Poll implements the service.TaskManager interface. Ids without a
// configured snapshot report pending.
func (m *MockTaskManager) Poll(id uuid.UUID) task.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.snapshots[id]; ok {
		return s
	}
	return task.Snapshot{Status: task.TaskStatusPending}
}

// SetSnapshot configures what Poll returns for id.
func (m *MockTaskManager) SetSnapshot(id uuid.UUID, s task.Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshots == nil {
		m.snapshots = make(map[uuid.UUID]task.Snapshot)
	}
	m.snapshots[id] = s
}

// Submitted returns the params of every Submit call.
func (m *MockTaskManager) Submitted() []task.Params {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]task.Params(nil), m.submitted...)
}
