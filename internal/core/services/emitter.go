package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
	"github.com/parley-labs/parley-core/internal/core/ports/driving"
)

// Ensure emitterService implements BookingService
var _ driving.BookingService = (*emitterService)(nil)

// emitterService implements the BookingService interface.
// It is the single hand-off point to the persistence and notification
// collaborators: each completed booking is persisted at most once, and
// notified only after persistence succeeds.
type emitterService struct {
	bookings driven.BookingStore
	notifier driven.Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	emitted map[string]*emission // keyed by record ID
}

// emission is the once-guard for a single record ID. Collaborator calls
// run under the record's own latch, so bookings for different records
// never serialize behind each other.
type emission struct {
	once   sync.Once
	result *domain.EmitResult
	err    error
}

// NewBookingService creates a new BookingService
func NewBookingService(bookings driven.BookingStore, notifier driven.Notifier, logger *slog.Logger) driving.BookingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &emitterService{
		bookings: bookings,
		notifier: notifier,
		logger:   logger,
		emitted:  make(map[string]*emission),
	}
}

// Emit hands a completed booking to the collaborators.
// Replaying the same record returns the first result without side effects.
func (s *emitterService) Emit(ctx context.Context, rec *domain.BookingRecord) (*domain.EmitResult, error) {
	if rec == nil || rec.ID == "" {
		return nil, fmt.Errorf("%w: missing booking record", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	e, ok := s.emitted[rec.ID]
	if !ok {
		e = &emission{}
		s.emitted[rec.ID] = e
	}
	s.mu.Unlock()

	e.once.Do(func() {
		e.result, e.err = s.deliver(ctx, rec)
		if e.err != nil {
			// A failed delivery is not an emission; let a retry attempt it
			s.mu.Lock()
			delete(s.emitted, rec.ID)
			s.mu.Unlock()
		}
	})
	return e.result, e.err
}

// deliver persists the record and sends the confirmation.
// Runs at most once per record ID.
func (s *emitterService) deliver(ctx context.Context, rec *domain.BookingRecord) (*domain.EmitResult, error) {
	id, err := s.bookings.Save(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	result := &domain.EmitResult{BookingID: id, Persisted: true}

	subject, body := confirmationMessage(rec)
	if s.notifier == nil {
		result.Warning = "notifications not configured"
	} else if err := s.notifier.Notify(ctx, rec.Email, subject, body); err != nil {
		// Persistence stands; the failed notification is only a warning
		s.logger.Warn("booking notification failed", "booking_id", id, "error", err)
		result.Warning = domain.ErrNotificationFailed.Error()
	} else {
		result.Notified = true
	}

	s.logger.Info("booking emitted", "booking_id", id, "notified", result.Notified)
	return result, nil
}

// confirmationMessage builds the confirmation email for a booking
func confirmationMessage(rec *domain.BookingRecord) (subject, body string) {
	subject = fmt.Sprintf("Booking Confirmation (ID: %s)", rec.ID)
	body = fmt.Sprintf(
		"Hi %s,\n\nYour %s booking is confirmed.\n\nDate: %s\nTime: %s\nBooking reference: %s\n\nWe'll contact you on %s if anything changes.\n",
		rec.Name, rec.BookingType, rec.Date, rec.Time, rec.ID, rec.Phone)
	return subject, body
}

// List retrieves persisted bookings, newest first
func (s *emitterService) List(ctx context.Context, limit, offset int) ([]*domain.BookingRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return s.bookings.List(ctx, limit, offset)
}
