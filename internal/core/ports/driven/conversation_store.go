package driven

import (
	"context"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// ConversationStore persists per-session conversation state (Redis).
// One state per session; state expires with the session TTL.
type ConversationStore interface {
	// Get retrieves the state for a session.
	// Returns domain.ErrNotFound when the session has no state yet.
	Get(ctx context.Context, sessionID string) (*domain.ConversationState, error)

	// Save stores the state, refreshing the session TTL
	Save(ctx context.Context, state *domain.ConversationState) error

	// Delete discards the state for a session
	Delete(ctx context.Context, sessionID string) error
}
