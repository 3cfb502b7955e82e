package driven

import (
	"context"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// BookingStore is the persistence collaborator for completed bookings.
// Save is called at most once per completed booking.
type BookingStore interface {
	// Save persists a finalized booking record and returns its booking ID
	Save(ctx context.Context, rec *domain.BookingRecord) (string, error)

	// Get retrieves a booking by ID
	Get(ctx context.Context, id string) (*domain.BookingRecord, error)

	// List retrieves bookings, newest first
	List(ctx context.Context, limit, offset int) ([]*domain.BookingRecord, error)

	// Count returns total booking count
	Count(ctx context.Context) (int, error)
}

// Notifier is the notification collaborator. Called only after persistence
// reports success; its failure does not undo persistence.
type Notifier interface {
	Notify(ctx context.Context, recipientEmail, subject, body string) error
}
