package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven/mocks"
)

func testRecord(id string) *domain.BookingRecord {
	return &domain.BookingRecord{
		ID:          id,
		Name:        "Alice Smith",
		Email:       "alice@example.com",
		Phone:       "07700 900123",
		BookingType: "haircut",
		Date:        "2026-09-12",
		Time:        "15:00",
	}
}

func TestBookingService_Emit(t *testing.T) {
	store := mocks.NewMockBookingStore()
	notifier := mocks.NewMockNotifier()
	svc := NewBookingService(store, notifier, nil)

	result, err := svc.Emit(context.Background(), testRecord("bk-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.BookingID != "bk-1" {
		t.Errorf("expected booking id bk-1, got %s", result.BookingID)
	}
	if !result.Persisted || !result.Notified {
		t.Errorf("expected persisted and notified, got %+v", result)
	}
	if result.Warning != "" {
		t.Errorf("unexpected warning: %s", result.Warning)
	}

	if store.SaveCount() != 1 {
		t.Errorf("expected 1 save, got %d", store.SaveCount())
	}

	sent := notifier.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(sent))
	}
	if sent[0].Recipient != "alice@example.com" {
		t.Errorf("expected notification to the customer email, got %s", sent[0].Recipient)
	}
	if sent[0].Subject != "Booking Confirmation (ID: bk-1)" {
		t.Errorf("unexpected subject: %s", sent[0].Subject)
	}
	for _, want := range []string{"Alice Smith", "haircut", "2026-09-12", "15:00", "bk-1"} {
		if !strings.Contains(sent[0].Body, want) {
			t.Errorf("confirmation body missing %q", want)
		}
	}
}

func TestBookingService_Emit_Idempotent(t *testing.T) {
	store := mocks.NewMockBookingStore()
	notifier := mocks.NewMockNotifier()
	svc := NewBookingService(store, notifier, nil)

	rec := testRecord("bk-1")
	first, err := svc.Emit(context.Background(), rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := svc.Emit(context.Background(), rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.SaveCount() != 1 {
		t.Errorf("replay must not persist again, got %d saves", store.SaveCount())
	}
	if len(notifier.Sent()) != 1 {
		t.Errorf("replay must not notify again, got %d", len(notifier.Sent()))
	}
	if second != first {
		t.Error("replay should return the original result")
	}
}

func TestBookingService_Emit_ConcurrentSameRecordPersistsOnce(t *testing.T) {
	store := mocks.NewMockBookingStore()
	notifier := mocks.NewMockNotifier()
	svc := NewBookingService(store, notifier, nil)

	rec := testRecord("bk-1")
	var wg sync.WaitGroup
	results := make([]*domain.EmitResult, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := svc.Emit(context.Background(), rec)
			if err != nil {
				t.Errorf("emit %d: %v", i, err)
				return
			}
			results[i] = result
		}(i)
	}
	wg.Wait()

	if store.SaveCount() != 1 {
		t.Errorf("expected exactly 1 save, got %d", store.SaveCount())
	}
	if len(notifier.Sent()) != 1 {
		t.Errorf("expected exactly 1 notification, got %d", len(notifier.Sent()))
	}
	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Error("all callers should observe the same emission result")
		}
	}

	// An unrelated record is unaffected by the guard
	other, err := svc.Emit(context.Background(), testRecord("bk-2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !other.Persisted {
		t.Error("expected the second record to persist")
	}
}

func TestBookingService_Emit_PersistenceFailure(t *testing.T) {
	store := mocks.NewMockBookingStore()
	notifier := mocks.NewMockNotifier()
	svc := NewBookingService(store, notifier, nil)

	store.SetFailNext(true)
	_, err := svc.Emit(context.Background(), testRecord("bk-1"))
	if !errors.Is(err, domain.ErrPersistenceFailed) {
		t.Fatalf("expected ErrPersistenceFailed, got %v", err)
	}
	if len(notifier.Sent()) != 0 {
		t.Error("notification must not fire when persistence fails")
	}

	// A retry after the failure persists normally
	result, err := svc.Emit(context.Background(), testRecord("bk-1"))
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if !result.Persisted {
		t.Error("expected retry to persist")
	}
}

func TestBookingService_Emit_NotificationFailure(t *testing.T) {
	store := mocks.NewMockBookingStore()
	notifier := mocks.NewMockNotifier()
	svc := NewBookingService(store, notifier, nil)

	notifier.SetFailNext(true)
	result, err := svc.Emit(context.Background(), testRecord("bk-1"))
	if err != nil {
		t.Fatalf("notification failure must not be fatal: %v", err)
	}

	if !result.Persisted {
		t.Error("expected persistence to stand")
	}
	if result.Notified {
		t.Error("expected notified=false")
	}
	if result.Warning == "" {
		t.Error("expected a warning")
	}
	if store.SaveCount() != 1 {
		t.Errorf("expected 1 save, got %d", store.SaveCount())
	}
}

func TestBookingService_Emit_InvalidRecord(t *testing.T) {
	svc := NewBookingService(mocks.NewMockBookingStore(), mocks.NewMockNotifier(), nil)

	if _, err := svc.Emit(context.Background(), nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil record, got %v", err)
	}
	if _, err := svc.Emit(context.Background(), &domain.BookingRecord{}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for missing id, got %v", err)
	}
}

func TestBookingService_List(t *testing.T) {
	store := mocks.NewMockBookingStore()
	svc := NewBookingService(store, mocks.NewMockNotifier(), nil)

	for _, id := range []string{"bk-1", "bk-2", "bk-3"} {
		if _, err := svc.Emit(context.Background(), testRecord(id)); err != nil {
			t.Fatalf("emit %s: %v", id, err)
		}
	}

	records, err := svc.List(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}

	// Newest first
	if records[0].ID != "bk-3" {
		t.Errorf("expected bk-3 first, got %s", records[0].ID)
	}
}
