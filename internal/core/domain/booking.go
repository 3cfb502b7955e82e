package domain

import (
	"regexp"
	"strings"
	"time"
)

// Slot field names, in the order the assistant asks for them
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldBookingType = "booking_type"
	FieldDate        = "date"
	FieldTime        = "time"
)

// SlotOrder is the canonical prompting order for missing fields
var SlotOrder = []string{FieldName, FieldEmail, FieldPhone, FieldBookingType, FieldDate, FieldTime}

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Accepted time layouts for the time slot
var timeLayouts = []string{"15:04", "15:04:05", "3:04pm", "3:04 pm", "3pm"}

// BookingSlots is a partially filled booking. Each field is optional until
// filled; the record is complete iff all six fields are non-empty and pass
// field-level validation.
type BookingSlots struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	BookingType string `json:"booking_type,omitempty"`
	Date        string `json:"date,omitempty"`
	Time        string `json:"time,omitempty"`
}

// Get returns the value of a named slot field
func (b *BookingSlots) Get(field string) string {
	switch field {
	case FieldName:
		return b.Name
	case FieldEmail:
		return b.Email
	case FieldPhone:
		return b.Phone
	case FieldBookingType:
		return b.BookingType
	case FieldDate:
		return b.Date
	case FieldTime:
		return b.Time
	}
	return ""
}

// Set assigns a named slot field
func (b *BookingSlots) Set(field, value string) {
	switch field {
	case FieldName:
		b.Name = value
	case FieldEmail:
		b.Email = value
	case FieldPhone:
		b.Phone = value
	case FieldBookingType:
		b.BookingType = value
	case FieldDate:
		b.Date = value
	case FieldTime:
		b.Time = value
	}
}

// ValidateField checks a single field value. Empty values are not an error
// here - completeness is checked separately by Missing.
func ValidateField(field, value string) error {
	if value == "" {
		return nil
	}
	switch field {
	case FieldEmail:
		if !emailRe.MatchString(value) {
			return &ValidationError{Field: FieldEmail, Reason: "not a valid email address"}
		}
	case FieldDate:
		if _, err := time.Parse("2006-01-02", value); err != nil {
			return &ValidationError{Field: FieldDate, Reason: "expected a date like 2026-09-01"}
		}
	case FieldTime:
		v := strings.ToLower(strings.TrimSpace(value))
		ok := false
		for _, layout := range timeLayouts {
			if _, err := time.Parse(layout, v); err == nil {
				ok = true
				break
			}
		}
		if !ok {
			return &ValidationError{Field: FieldTime, Reason: "expected a time like 15:00 or 3pm"}
		}
	}
	return nil
}

// Merge folds extracted values into the live slots. A non-empty incoming
// value replaces the current one unless the current value is valid and the
// incoming value is not - an already-valid field is never clobbered by bad
// new data.
func (b *BookingSlots) Merge(update BookingSlots) {
	for _, field := range SlotOrder {
		incoming := strings.TrimSpace(update.Get(field))
		if incoming == "" {
			continue
		}
		current := b.Get(field)
		if current != "" && ValidateField(field, current) == nil && ValidateField(field, incoming) != nil {
			continue
		}
		b.Set(field, incoming)
	}
}

// Missing returns the unfilled fields in prompting order
func (b *BookingSlots) Missing() []string {
	var missing []string
	for _, field := range SlotOrder {
		if strings.TrimSpace(b.Get(field)) == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

// Complete reports whether every slot is filled
func (b *BookingSlots) Complete() bool {
	return len(b.Missing()) == 0
}

// Validate checks all filled fields and returns the first failure
func (b *BookingSlots) Validate() error {
	for _, field := range SlotOrder {
		if err := ValidateField(field, b.Get(field)); err != nil {
			return err
		}
	}
	return nil
}

// BookingRecord is the finalized output of a completed slot-filling flow.
// Immutable once emitted.
type BookingRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	BookingType string    `json:"booking_type"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	CreatedAt   time.Time `json:"created_at"`
}

// Freeze turns completed, valid slots into an immutable record
func (b *BookingSlots) Freeze(id string) *BookingRecord {
	return &BookingRecord{
		ID:          id,
		Name:        b.Name,
		Email:       b.Email,
		Phone:       b.Phone,
		BookingType: b.BookingType,
		Date:        b.Date,
		Time:        b.Time,
		CreatedAt:   time.Now().UTC(),
	}
}

// EmitResult reports what happened when a completed booking was handed to
// the persistence and notification collaborators.
type EmitResult struct {
	BookingID string `json:"booking_id"`
	Persisted bool   `json:"persisted"`
	Notified  bool   `json:"notified"`
	Warning   string `json:"warning,omitempty"` // set when notification failed after persistence
}
