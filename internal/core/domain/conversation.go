package domain

import "time"

// Role identifies the author of a conversation message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Greeting is the opening line clients show before the first turn of a session.
// It is display copy only and is never written into conversation history.
const Greeting = "Hi! I can answer questions about our services or help you place a booking. How can I help today?"

// Message is a single conversation turn entry.
// History is append-only; ordering is chronological and significant,
// since it is replayed verbatim as dialogue context.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Intent is the classification of an incoming user message
type Intent string

const (
	IntentStartBooking    Intent = "start_booking"
	IntentContinueBooking Intent = "continue_booking"
	IntentCancelBooking   Intent = "cancel_booking"
	IntentAskQuestion     Intent = "ask_question"
)

// ConversationState holds everything the orchestrator knows about one session.
// Lifecycle: created on first turn, mutated on every turn, expired with the session.
type ConversationState struct {
	SessionID string    `json:"session_id"`
	History   []Message `json:"history"`

	// PendingBooking is the slot-filling record in progress, nil when idle.
	// Exactly one instance is live per session at a time.
	PendingBooking *BookingSlots `json:"pending_booking,omitempty"`

	// LastEmittedBookingID guards against re-emitting a completed booking
	// when the hosting UI replays a turn.
	LastEmittedBookingID string `json:"last_emitted_booking_id,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversationState creates an empty state for a session
func NewConversationState(sessionID string) *ConversationState {
	return &ConversationState{SessionID: sessionID}
}

// Collecting reports whether a booking flow is in progress
func (s *ConversationState) Collecting() bool {
	return s.PendingBooking != nil
}

// Append adds a message to the history
func (s *ConversationState) Append(role Role, content string) {
	s.History = append(s.History, Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	})
}

// TurnResult is what one call to the orchestrator produces.
// CompletedBooking is non-nil exactly once per completed booking flow.
type TurnResult struct {
	Reply            string         `json:"reply"`
	CompletedBooking *BookingRecord `json:"completed_booking,omitempty"`
}
