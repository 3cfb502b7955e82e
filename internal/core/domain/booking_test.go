package domain

import (
	"errors"
	"testing"
)

func TestBookingSlots_Missing(t *testing.T) {
	slots := &BookingSlots{}
	missing := slots.Missing()
	if len(missing) != 6 {
		t.Fatalf("expected 6 missing fields, got %d", len(missing))
	}
	if missing[0] != FieldName {
		t.Errorf("expected first missing field %s, got %s", FieldName, missing[0])
	}

	slots.Name = "John Doe"
	slots.Email = "john@example.com"
	missing = slots.Missing()
	if len(missing) != 4 {
		t.Errorf("expected 4 missing fields, got %d", len(missing))
	}
	if missing[0] != FieldPhone {
		t.Errorf("expected next missing field %s, got %s", FieldPhone, missing[0])
	}
}

func TestBookingSlots_Complete(t *testing.T) {
	slots := &BookingSlots{
		Name:        "John Doe",
		Email:       "john@example.com",
		Phone:       "555-1234",
		BookingType: "haircut",
		Date:        "2026-09-02",
		Time:        "15:00",
	}
	if !slots.Complete() {
		t.Error("expected slots to be complete")
	}
	if err := slots.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}

	slots.Email = ""
	if slots.Complete() {
		t.Error("expected slots with empty email to be incomplete")
	}
}

func TestBookingSlots_Validate(t *testing.T) {
	tests := []struct {
		name      string
		slots     BookingSlots
		wantField string
	}{
		{
			name:      "bad email",
			slots:     BookingSlots{Email: "not-an-email"},
			wantField: FieldEmail,
		},
		{
			name:      "bad date",
			slots:     BookingSlots{Date: "next tuesday-ish"},
			wantField: FieldDate,
		},
		{
			name:      "bad time",
			slots:     BookingSlots{Time: "whenever"},
			wantField: FieldTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.slots.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, verr.Field)
			}
		})
	}
}

func TestBookingSlots_ValidateTimeFormats(t *testing.T) {
	for _, v := range []string{"15:00", "3pm", "3:30pm", "3:30 PM", "09:15"} {
		if err := ValidateField(FieldTime, v); err != nil {
			t.Errorf("expected %q to be a valid time: %v", v, err)
		}
	}
}

func TestBookingSlots_Merge(t *testing.T) {
	slots := &BookingSlots{Email: "john@example.com"}

	// Invalid new data must not overwrite an already-valid field.
	slots.Merge(BookingSlots{Email: "not-an-email", Name: "John Doe"})
	if slots.Email != "john@example.com" {
		t.Errorf("valid email was overwritten with %q", slots.Email)
	}
	if slots.Name != "John Doe" {
		t.Errorf("expected name to be merged, got %q", slots.Name)
	}

	// A valid replacement is accepted.
	slots.Merge(BookingSlots{Email: "jane@example.com"})
	if slots.Email != "jane@example.com" {
		t.Errorf("expected replacement email, got %q", slots.Email)
	}

	// Empty incoming values never clear a field.
	slots.Merge(BookingSlots{})
	if slots.Name != "John Doe" || slots.Email != "jane@example.com" {
		t.Error("merge with empty update cleared fields")
	}
}

func TestBookingSlots_Freeze(t *testing.T) {
	slots := &BookingSlots{
		Name:        "John Doe",
		Email:       "john@example.com",
		Phone:       "555-1234",
		BookingType: "haircut",
		Date:        "2026-09-02",
		Time:        "15:00",
	}
	rec := slots.Freeze("booking-123")
	if rec.ID != "booking-123" {
		t.Errorf("expected ID booking-123, got %s", rec.ID)
	}
	if rec.Email != "john@example.com" {
		t.Errorf("expected email john@example.com, got %s", rec.Email)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
}
