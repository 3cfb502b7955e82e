package mocks

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// MockIntentClassifier is a deterministic classifier stand-in. Scripted
// intents take precedence; otherwise simple keyword rules apply, with
// ambiguity defaulting to ask_question.
type MockIntentClassifier struct {
	mu       sync.Mutex
	scripted []domain.Intent
	failNext bool
}

// NewMockIntentClassifier creates a new MockIntentClassifier
func NewMockIntentClassifier() *MockIntentClassifier {
	return &MockIntentClassifier{}
}

func (m *MockIntentClassifier) Classify(ctx context.Context, collecting bool, text string) (domain.Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNext {
		m.failNext = false
		return "", domain.ErrModelUnavailable
	}

	if len(m.scripted) > 0 {
		intent := m.scripted[0]
		m.scripted = m.scripted[1:]
		return intent, nil
	}

	lower := strings.ToLower(text)
	switch {
	case collecting && (strings.Contains(lower, "cancel") || strings.Contains(lower, "never mind")):
		return domain.IntentCancelBooking, nil
	case collecting && strings.HasSuffix(strings.TrimSpace(lower), "?"):
		return domain.IntentAskQuestion, nil
	case collecting:
		return domain.IntentContinueBooking, nil
	case strings.Contains(lower, "book") || strings.Contains(lower, "appointment"):
		return domain.IntentStartBooking, nil
	default:
		return domain.IntentAskQuestion, nil
	}
}

// QueueIntent appends a scripted classification
func (m *MockIntentClassifier) QueueIntent(intent domain.Intent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted = append(m.scripted, intent)
}

// SetFailNext makes the next Classify call fail
func (m *MockIntentClassifier) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

var (
	mockEmailRe = regexp.MustCompile(`[^\s,]+@[^\s,]+\.[^\s,]+`)
	mockPhoneRe = regexp.MustCompile(`\+?[\d][\d\s().-]{4,}\d`)
	mockDateRe  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	mockTimeRe  = regexp.MustCompile(`(\d{1,2}:\d{2}\s?(?:[ap]m)?|\d{1,2}\s?[ap]m)`)
)

// MockSlotExtractor is a scripted extractor stand-in with a regex fallback
// for the common field shapes (email, phone, ISO date, clock time).
type MockSlotExtractor struct {
	mu       sync.Mutex
	scripted []domain.BookingSlots
	failNext bool
}

// NewMockSlotExtractor creates a new MockSlotExtractor
func NewMockSlotExtractor() *MockSlotExtractor {
	return &MockSlotExtractor{}
}

func (m *MockSlotExtractor) Extract(ctx context.Context, text string, current domain.BookingSlots) (domain.BookingSlots, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNext {
		m.failNext = false
		return domain.BookingSlots{}, domain.ErrModelUnavailable
	}

	if len(m.scripted) > 0 {
		slots := m.scripted[0]
		m.scripted = m.scripted[1:]
		return slots, nil
	}

	var found domain.BookingSlots
	if v := mockEmailRe.FindString(text); v != "" {
		found.Email = v
	}
	if v := mockDateRe.FindString(text); v != "" {
		found.Date = v
	}
	lower := strings.ToLower(text)
	if v := mockTimeRe.FindString(lower); v != "" {
		found.Time = strings.ReplaceAll(v, " ", "")
	}
	// Phone after stripping matched date/time digits is too fiddly for a
	// mock; only match when the text has an obvious separator-digit run.
	stripped := mockDateRe.ReplaceAllString(lower, "")
	stripped = mockTimeRe.ReplaceAllString(stripped, "")
	if v := mockPhoneRe.FindString(stripped); v != "" {
		found.Phone = strings.TrimSpace(v)
	}
	return found, nil
}

// QueueSlots appends a scripted extraction result
func (m *MockSlotExtractor) QueueSlots(slots domain.BookingSlots) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scripted = append(m.scripted, slots)
}

// SetFailNext makes the next Extract call fail
func (m *MockSlotExtractor) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}
