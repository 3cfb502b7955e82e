package driving

import (
	"context"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// ConversationService drives the multi-turn dialogue for one session.
// Turns within a session are strictly sequential: a new message is not
// processed while a previous turn is still in flight.
type ConversationService interface {
	// HandleUserMessage runs one turn: classify, answer or slot-fill,
	// update history. CompletedBooking in the result is non-nil exactly
	// once per completed booking flow.
	HandleUserMessage(ctx context.Context, sessionID, text string) (*domain.TurnResult, error)

	// History returns the session's message history in chronological order.
	// A session with no state yet yields an empty history.
	History(ctx context.Context, sessionID string) ([]domain.Message, error)

	// Reset discards all state for a session
	Reset(ctx context.Context, sessionID string) error
}

// BookingService exposes emitted bookings and the collaborator hand-off
type BookingService interface {
	// Emit hands a completed booking to the persistence collaborator and,
	// on success, the notification collaborator. Safe to call twice with
	// the same record: the second call is a no-op returning the first result.
	Emit(ctx context.Context, rec *domain.BookingRecord) (*domain.EmitResult, error)

	// List retrieves persisted bookings, newest first
	List(ctx context.Context, limit, offset int) ([]*domain.BookingRecord, error)
}
