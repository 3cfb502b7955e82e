package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
)

// Ensure PromptedExtractor implements SlotExtractor
var _ driven.SlotExtractor = (*PromptedExtractor)(nil)

// PromptedExtractor pulls booking field values out of free text by asking
// the LLM for a JSON object. Only fields actually present in the message
// are returned; merging is the caller's concern.
type PromptedExtractor struct {
	provider LLMProvider
}

// NewPromptedExtractor creates an extractor that resolves its LLM
// through the provider on every call
func NewPromptedExtractor(provider LLMProvider) *PromptedExtractor {
	return &PromptedExtractor{provider: provider}
}

const extractorPrompt = `Extract booking details from the user's message.

Return a JSON object with any of these keys that the message provides:
"name", "email", "phone", "booking_type", "date", "time".
Omit keys the message says nothing about. Normalise dates to YYYY-MM-DD
(today is %s) and keep times as written. Return only the JSON object.

Already collected (do not repeat unless the message changes them): %s

Message: %s`

// Extract returns the slot values found in the message
func (e *PromptedExtractor) Extract(ctx context.Context, text string, current domain.BookingSlots) (domain.BookingSlots, error) {
	llm := e.provider.LLMService()
	if llm == nil {
		return domain.BookingSlots{}, fmt.Errorf("extract slots: %w", domain.ErrModelUnavailable)
	}

	collected, _ := json.Marshal(current)

	prompt := fmt.Sprintf(extractorPrompt, todayISO(), string(collected), text)
	reply, err := llm.Complete(ctx, prompt, nil)
	if err != nil {
		return domain.BookingSlots{}, fmt.Errorf("extract slots: %w", err)
	}

	return parseSlots(reply), nil
}

// todayISO is the reference date handed to the model for normalisation
func todayISO() string {
	return time.Now().UTC().Format("2006-01-02")
}

// parseSlots finds the first JSON object in the reply and unmarshals it.
// A reply without usable JSON yields empty slots, not an error - the
// caller simply asks again.
func parseSlots(reply string) domain.BookingSlots {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return domain.BookingSlots{}
	}

	var slots domain.BookingSlots
	if err := json.Unmarshal([]byte(reply[start:end+1]), &slots); err != nil {
		return domain.BookingSlots{}
	}
	return slots
}
