package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
)

// Ensure PromptedClassifier implements IntentClassifier
var _ driven.IntentClassifier = (*PromptedClassifier)(nil)

// LLMProvider resolves the currently configured language model, which
// can be swapped or validated after startup. A nil result means no
// model is available right now.
type LLMProvider interface {
	LLMService() driven.LLMService
}

// PromptedClassifier maps a user message to an intent tag by asking the
// LLM to pick one. The mapping is total: anything the model returns that
// is not a known tag resolves to ask_question.
type PromptedClassifier struct {
	provider LLMProvider
}

// NewPromptedClassifier creates a classifier that resolves its LLM
// through the provider on every call
func NewPromptedClassifier(provider LLMProvider) *PromptedClassifier {
	return &PromptedClassifier{provider: provider}
}

const classifierPromptIdle = `Classify the user's message into exactly one of these intents:
- start_booking: the user wants to make a booking or appointment
- ask_question: anything else, including unclear messages

Reply with only the intent tag, nothing else.

Message: %s`

const classifierPromptCollecting = `A booking is currently being filled in. Classify the user's message into exactly one of these intents:
- continue_booking: the message provides booking details (name, email, phone, type, date or time)
- cancel_booking: the user wants to abandon the booking
- ask_question: the user is asking something unrelated to filling in details

Reply with only the intent tag, nothing else.

Message: %s`

// Classify returns the intent for a message
func (c *PromptedClassifier) Classify(ctx context.Context, collecting bool, text string) (domain.Intent, error) {
	llm := c.provider.LLMService()
	if llm == nil {
		return "", fmt.Errorf("classify intent: %w", domain.ErrModelUnavailable)
	}

	prompt := classifierPromptIdle
	if collecting {
		prompt = classifierPromptCollecting
	}

	reply, err := llm.Complete(ctx, fmt.Sprintf(prompt, text), nil)
	if err != nil {
		return "", fmt.Errorf("classify intent: %w", err)
	}

	return parseIntent(reply, collecting), nil
}

// parseIntent maps the model's reply to a known tag, defaulting to
// ask_question for anything unrecognised
func parseIntent(reply string, collecting bool) domain.Intent {
	tag := strings.ToLower(strings.TrimSpace(reply))

	switch {
	case strings.Contains(tag, string(domain.IntentCancelBooking)):
		if collecting {
			return domain.IntentCancelBooking
		}
	case strings.Contains(tag, string(domain.IntentContinueBooking)):
		if collecting {
			return domain.IntentContinueBooking
		}
	case strings.Contains(tag, string(domain.IntentStartBooking)):
		return domain.IntentStartBooking
	}
	return domain.IntentAskQuestion
}
