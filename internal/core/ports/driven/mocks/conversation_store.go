package mocks

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// MockConversationStore is a mock implementation of ConversationStore for
// testing. States are stored as JSON copies so callers never share pointers
// with the store, matching the behaviour of the Redis adapter.
type MockConversationStore struct {
	mu     sync.RWMutex
	states map[string][]byte
	saves  int
}

// NewMockConversationStore creates a new MockConversationStore
func NewMockConversationStore() *MockConversationStore {
	return &MockConversationStore{states: make(map[string][]byte)}
}

func (m *MockConversationStore) Get(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.states[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	var state domain.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (m *MockConversationStore) Save(ctx context.Context, state *domain.ConversationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	m.states[state.SessionID] = data
	m.saves++
	return nil
}

func (m *MockConversationStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, sessionID)
	return nil
}

// Saves returns how many times Save was called
func (m *MockConversationStore) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
