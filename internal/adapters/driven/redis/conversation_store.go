package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ConversationStore = (*ConversationStore)(nil)

const (
	// conversationPrefix namespaces session state keys
	conversationPrefix = "parley:conversation:"

	// DefaultConversationTTL is how long an idle session survives
	DefaultConversationTTL = 24 * time.Hour
)

// ConversationStore implements driven.ConversationStore using Redis.
// State expires with the session TTL; every Save refreshes it.
type ConversationStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewConversationStore creates a new Redis-backed ConversationStore.
// ttl <= 0 falls back to DefaultConversationTTL.
func NewConversationStore(client *redis.Client, ttl time.Duration) *ConversationStore {
	if ttl <= 0 {
		ttl = DefaultConversationTTL
	}
	return &ConversationStore{client: client, ttl: ttl}
}

// Get retrieves the state for a session
func (s *ConversationStore) Get(ctx context.Context, sessionID string) (*domain.ConversationState, error) {
	data, err := s.client.Get(ctx, conversationPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation state: %w", err)
	}

	var state domain.ConversationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation state: %w", err)
	}

	return &state, nil
}

// Save stores the state, refreshing the session TTL
func (s *ConversationStore) Save(ctx context.Context, state *domain.ConversationState) error {
	if state == nil || state.SessionID == "" {
		return fmt.Errorf("%w: missing session id", domain.ErrInvalidInput)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation state: %w", err)
	}

	if err := s.client.Set(ctx, conversationPrefix+state.SessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save conversation state: %w", err)
	}

	return nil
}

// Delete discards the state for a session
func (s *ConversationStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, conversationPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("failed to delete conversation state: %w", err)
	}
	return nil
}

// Ping checks if Redis is reachable
func (s *ConversationStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
