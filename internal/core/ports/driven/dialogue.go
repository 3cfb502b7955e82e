package driven

import (
	"context"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// IntentClassifier maps one user message, given the current flow state, to a
// fixed set of tagged outcomes. Implementations may delegate to a language
// model, but the mapping is total: ambiguity resolves to ask_question, the
// non-committal path.
type IntentClassifier interface {
	// Classify returns the intent for a message. collecting reports whether
	// a booking flow is currently in progress for the session.
	Classify(ctx context.Context, collecting bool, text string) (domain.Intent, error)
}

// SlotExtractor pulls booking field values out of free text, so "my email
// is a@b.com" lands in the email slot. Returned slots hold only the values
// found in the message; merging is the caller's concern.
type SlotExtractor interface {
	Extract(ctx context.Context, text string, current domain.BookingSlots) (domain.BookingSlots, error)
}
