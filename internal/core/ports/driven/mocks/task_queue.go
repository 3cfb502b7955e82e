package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
)

// MockTaskQueue is a channel-backed TaskQueue for testing
type MockTaskQueue struct {
	mu      sync.Mutex
	tasks   chan *domain.Task
	byID    map[string]*domain.Task
	acked   []string
	nacked  []string
	closed  bool
}

// NewMockTaskQueue creates a new MockTaskQueue
func NewMockTaskQueue() *MockTaskQueue {
	return &MockTaskQueue{
		tasks: make(chan *domain.Task, 128),
		byID:  make(map[string]*domain.Task),
	}
}

func (m *MockTaskQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	m.byID[task.ID] = task
	m.mu.Unlock()
	m.tasks <- task
	return nil
}

func (m *MockTaskQueue) DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error) {
	select {
	case task := <-m.tasks:
		return task, nil
	case <-time.After(time.Duration(timeout) * time.Second):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *MockTaskQueue) Ack(ctx context.Context, taskID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, taskID)
	if task, ok := m.byID[taskID]; ok {
		task.Status = domain.TaskStatusCompleted
	}
	return nil
}

func (m *MockTaskQueue) Nack(ctx context.Context, taskID string, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nacked = append(m.nacked, taskID)
	if task, ok := m.byID[taskID]; ok {
		task.Attempts++
		task.Error = reason
		if task.Attempts >= task.MaxAttempts {
			task.Status = domain.TaskStatusFailed
		} else {
			task.Status = domain.TaskStatusPending
			m.tasks <- task
		}
	}
	return nil
}

func (m *MockTaskQueue) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.byID[taskID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return task, nil
}

func (m *MockTaskQueue) Stats(ctx context.Context) (*driven.QueueStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var failed int64
	for _, task := range m.byID {
		if task.Status == domain.TaskStatusFailed {
			failed++
		}
	}
	return &driven.QueueStats{
		PendingCount: int64(len(m.tasks)),
		FailedCount:  failed,
	}, nil
}

func (m *MockTaskQueue) Ping(ctx context.Context) error {
	return nil
}

func (m *MockTaskQueue) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.tasks)
	}
	return nil
}

// Acked returns the IDs of acknowledged tasks
func (m *MockTaskQueue) Acked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acked...)
}

// Nacked returns the IDs of rejected tasks
func (m *MockTaskQueue) Nacked() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.nacked...)
}
