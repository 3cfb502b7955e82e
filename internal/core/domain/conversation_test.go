package domain

import (
	"errors"
	"testing"
)

func TestConversationState_Append(t *testing.T) {
	state := NewConversationState("session-123")

	state.Append(RoleUser, "hello")
	state.Append(RoleAssistant, "hi there")
	state.Append(RoleUser, "what are your hours?")
	state.Append(RoleAssistant, "9 to 5")

	if len(state.History) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(state.History))
	}
	for i, msg := range state.History {
		want := RoleUser
		if i%2 == 1 {
			want = RoleAssistant
		}
		if msg.Role != want {
			t.Errorf("message %d: expected role %s, got %s", i, want, msg.Role)
		}
		if msg.CreatedAt.IsZero() {
			t.Errorf("message %d: expected CreatedAt to be set", i)
		}
	}
}

func TestConversationState_Collecting(t *testing.T) {
	state := NewConversationState("session-123")
	if state.Collecting() {
		t.Error("fresh state should not be collecting")
	}
	state.PendingBooking = &BookingSlots{}
	if !state.Collecting() {
		t.Error("state with pending booking should be collecting")
	}
}

func TestIngestionError(t *testing.T) {
	inner := errors.New("no text extracted")
	err := &IngestionError{Document: "menu.pdf", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("expected IngestionError to unwrap to the inner error")
	}
	var ierr *IngestionError
	if !errors.As(error(err), &ierr) {
		t.Error("expected errors.As to match *IngestionError")
	}
	if ierr.Document != "menu.pdf" {
		t.Errorf("expected document menu.pdf, got %s", ierr.Document)
	}
}

func TestIngestReport_Failed(t *testing.T) {
	report := &IngestReport{
		ChunksAdded: 7,
		Documents: []DocumentResult{
			{Name: "a.txt", ChunksAdded: 7},
			{Name: "b.pdf", Error: "no text extracted"},
		},
	}
	failed := report.Failed()
	if len(failed) != 1 {
		t.Fatalf("expected 1 failed document, got %d", len(failed))
	}
	if failed[0].Name != "b.pdf" {
		t.Errorf("expected failed document b.pdf, got %s", failed[0].Name)
	}
}
