package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// MockBookingStore is a mock implementation of BookingStore for testing
type MockBookingStore struct {
	mu       sync.RWMutex
	bookings []*domain.BookingRecord
	byID     map[string]*domain.BookingRecord
	failNext bool
}

// NewMockBookingStore creates a new MockBookingStore
func NewMockBookingStore() *MockBookingStore {
	return &MockBookingStore{byID: make(map[string]*domain.BookingRecord)}
}

func (m *MockBookingStore) Save(ctx context.Context, rec *domain.BookingRecord) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return "", domain.ErrPersistenceFailed
	}
	m.bookings = append(m.bookings, rec)
	m.byID[rec.ID] = rec
	return rec.ID, nil
}

func (m *MockBookingStore) Get(ctx context.Context, id string) (*domain.BookingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}

func (m *MockBookingStore) List(ctx context.Context, limit, offset int) ([]*domain.BookingRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	// Newest first
	out := make([]*domain.BookingRecord, 0, len(m.bookings))
	for i := len(m.bookings) - 1; i >= 0; i-- {
		out = append(out, m.bookings[i])
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockBookingStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings), nil
}

// SetFailNext makes the next Save call fail
func (m *MockBookingStore) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

// SaveCount returns how many bookings were persisted
func (m *MockBookingStore) SaveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bookings)
}

// SentNotification captures one Notify call
type SentNotification struct {
	Recipient string
	Subject   string
	Body      string
}

// MockNotifier is a mock implementation of Notifier for testing
type MockNotifier struct {
	mu       sync.Mutex
	sent     []SentNotification
	failNext bool
}

// NewMockNotifier creates a new MockNotifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, recipientEmail, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return fmt.Errorf("%w: smtp relay down", domain.ErrNotificationFailed)
	}
	m.sent = append(m.sent, SentNotification{Recipient: recipientEmail, Subject: subject, Body: body})
	return nil
}

// SetFailNext makes the next Notify call fail
func (m *MockNotifier) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

// Sent returns the captured notifications
func (m *MockNotifier) Sent() []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentNotification(nil), m.sent...)
}
