package memory

import (
	"context"
	"sync"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ConversationStore = (*ConversationStore)(nil)

// ConversationStore keeps session state in process memory.
// Meant for single-instance development setups; state does not survive
// a restart and never expires.
type ConversationStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.ConversationState
}

// NewConversationStore creates an empty in-memory conversation store
func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		sessions: make(map[string]*domain.ConversationState),
	}
}

func (s *ConversationStore) Get(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return state, nil
}

func (s *ConversationStore) Save(ctx context.Context, state *domain.ConversationState) error {
	if state == nil || state.SessionID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[state.SessionID] = state
	return nil
}

func (s *ConversationStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
