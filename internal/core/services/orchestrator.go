package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
	"github.com/parley-labs/parley-core/internal/core/ports/driving"
	"github.com/parley-labs/parley-core/internal/runtime"
)

// Ensure orchestratorService implements ConversationService
var _ driving.ConversationService = (*orchestratorService)(nil)

// degradedReply is returned when the language model cannot be reached.
// The user's message stays in history so the turn can be retried.
const degradedReply = "I'm having trouble reaching the language model right now. Please try again in a moment."

// fieldPrompts maps each booking slot to the question that fills it
var fieldPrompts = map[string]string{
	domain.FieldName:        "What name should I put the booking under?",
	domain.FieldEmail:       "What's the best email address for your confirmation?",
	domain.FieldPhone:       "What phone number can we reach you on?",
	domain.FieldBookingType: "What type of booking would you like?",
	domain.FieldDate:        "What date works for you? (for example 2026-09-12)",
	domain.FieldTime:        "What time works for you? (for example 15:00 or 3pm)",
}

// orchestratorService implements the ConversationService interface.
// It is the per-session state machine: idle sessions answer questions from
// the knowledge base, collecting sessions fill booking slots, and the two
// modes interleave without losing booking progress.
type orchestratorService struct {
	store      driven.ConversationStore
	classifier driven.IntentClassifier
	extractor  driven.SlotExtractor
	retriever  driving.RetrieverService
	services   *runtime.Services // Dynamic AI services
	logger     *slog.Logger
	topK       int

	// One in-flight turn per session; sessions are independent
	mu       sync.Mutex
	sessions map[string]*sync.Mutex
}

// NewOrchestratorService creates a new ConversationService
func NewOrchestratorService(
	store driven.ConversationStore,
	classifier driven.IntentClassifier,
	extractor driven.SlotExtractor,
	retriever driving.RetrieverService,
	services *runtime.Services,
	logger *slog.Logger,
	topK int,
) driving.ConversationService {
	if logger == nil {
		logger = slog.Default()
	}
	if topK <= 0 {
		topK = domain.DefaultRetrievalSettings().TopK
	}
	return &orchestratorService{
		store:      store,
		classifier: classifier,
		extractor:  extractor,
		retriever:  retriever,
		services:   services,
		logger:     logger,
		topK:       topK,
		sessions:   make(map[string]*sync.Mutex),
	}
}

// HandleUserMessage runs one conversational turn for a session
func (s *orchestratorService) HandleUserMessage(ctx context.Context, sessionID, text string) (*domain.TurnResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	text = strings.TrimSpace(text)
	if sessionID == "" || text == "" {
		return nil, fmt.Errorf("%w: session id and message are required", domain.ErrInvalidInput)
	}

	lock := s.sessionLock(sessionID)
	if !lock.TryLock() {
		return nil, domain.ErrSessionBusy
	}
	defer lock.Unlock()

	state, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		state = domain.NewConversationState(sessionID)
	} else if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	state.Append(domain.RoleUser, text)

	intent, err := s.classifier.Classify(ctx, state.Collecting(), text)
	if err != nil {
		// Ambiguity and classifier failure both take the non-committal path
		s.logger.Warn("intent classification failed", "session", sessionID, "error", err)
		intent = domain.IntentAskQuestion
	}

	result := &domain.TurnResult{}
	switch intent {
	case domain.IntentStartBooking:
		result = s.startBooking(ctx, state, text)
	case domain.IntentContinueBooking:
		result = s.continueBooking(ctx, state, text)
	case domain.IntentCancelBooking:
		result.Reply = s.cancelBooking(state)
	default:
		result.Reply = s.answerQuestion(ctx, state, text)
	}

	state.Append(domain.RoleAssistant, result.Reply)
	state.UpdatedAt = time.Now().UTC()

	if err := s.store.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("save session %s: %w", sessionID, err)
	}

	return result, nil
}

// startBooking opens a slot-filling flow, or resumes the one in progress.
// The opening message often carries details already ("book a haircut for
// tomorrow at 3pm"), so it goes through the extractor before prompting.
func (s *orchestratorService) startBooking(ctx context.Context, state *domain.ConversationState, text string) *domain.TurnResult {
	if state.Collecting() {
		return &domain.TurnResult{Reply: "We're already working on a booking. " + s.nextPrompt(state.PendingBooking)}
	}

	slots := &domain.BookingSlots{}
	state.PendingBooking = slots

	extracted, err := s.extractor.Extract(ctx, text, *slots)
	if err != nil {
		s.logger.Warn("slot extraction failed", "session", state.SessionID, "error", err)
	} else {
		slots.Merge(extracted)
	}

	if slots.Complete() {
		return s.settleBooking(state, slots)
	}
	return &domain.TurnResult{Reply: "Happy to help you book! " + s.nextPrompt(slots)}
}

// cancelBooking discards any pending slots on an explicit cancel
func (s *orchestratorService) cancelBooking(state *domain.ConversationState) string {
	if !state.Collecting() {
		return "There's no booking in progress. Ask me anything, or say you'd like to make a booking."
	}
	state.PendingBooking = nil
	return "No problem, I've cancelled that booking. Let me know if you'd like to start again."
}

// continueBooking extracts slot values from the message and advances the flow.
// Returns a completed record exactly once, on the turn the last slot is filled.
func (s *orchestratorService) continueBooking(ctx context.Context, state *domain.ConversationState, text string) *domain.TurnResult {
	if !state.Collecting() {
		// Classifier said continue but nothing is pending; open a flow
		return s.startBooking(ctx, state, text)
	}

	slots := state.PendingBooking

	extracted, err := s.extractor.Extract(ctx, text, *slots)
	if err != nil {
		s.logger.Warn("slot extraction failed", "session", state.SessionID, "error", err)
		return &domain.TurnResult{Reply: "Sorry, I didn't catch that. " + s.nextPrompt(slots)}
	}

	slots.Merge(extracted)

	if !slots.Complete() {
		return &domain.TurnResult{Reply: s.nextPrompt(slots)}
	}
	return s.settleBooking(state, slots)
}

// settleBooking validates a full slot set and freezes the record.
// A validation failure clears the bad field and keeps collecting.
func (s *orchestratorService) settleBooking(state *domain.ConversationState, slots *domain.BookingSlots) *domain.TurnResult {
	if err := slots.Validate(); err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			// Clear the bad field so it is asked for again
			slots.Set(vErr.Field, "")
			return &domain.TurnResult{Reply: fmt.Sprintf("That %s doesn't look right (%s). %s",
				vErr.Field, vErr.Reason, fieldPrompts[vErr.Field])}
		}
		return &domain.TurnResult{Reply: "Something doesn't look right with those details. " + s.nextPrompt(slots)}
	}

	record := slots.Freeze(uuid.NewString())
	state.PendingBooking = nil
	state.LastEmittedBookingID = record.ID

	s.logger.Info("booking completed", "session", state.SessionID, "booking_id", record.ID)

	reply := fmt.Sprintf("You're all set, %s! I've got your %s booking for %s at %s. A confirmation is on its way to %s.",
		record.Name, record.BookingType, record.Date, record.Time, record.Email)

	return &domain.TurnResult{Reply: reply, CompletedBooking: record}
}

// answerQuestion builds a retrieval-augmented prompt and asks the LLM.
// A pending booking flow is untouched: mid-booking questions never lose slots.
func (s *orchestratorService) answerQuestion(ctx context.Context, state *domain.ConversationState, text string) string {
	llm := s.services.LLMService()
	if llm == nil {
		return degradedReply
	}

	// A failed retrieval degrades to an uncontexted answer, not an error
	chunks, err := s.retriever.Retrieve(ctx, text, s.topK)
	if err != nil {
		s.logger.Warn("retrieval failed", "session", state.SessionID, "error", err)
		chunks = nil
	}

	reply, err := llm.Complete(ctx, buildPrompt(chunks, text), state.History)
	if err != nil {
		s.logger.Warn("llm completion failed", "session", state.SessionID, "error", err)
		return degradedReply
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return degradedReply
	}
	return reply
}

// nextPrompt asks for the first missing slot in canonical order
func (s *orchestratorService) nextPrompt(slots *domain.BookingSlots) string {
	missing := slots.Missing()
	if len(missing) == 0 {
		return "I think I have everything I need."
	}
	return fieldPrompts[missing[0]]
}

// buildPrompt assembles the retrieval-augmented instruction for the LLM
func buildPrompt(chunks []domain.RetrievedChunk, question string) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant for a booking service. ")
	b.WriteString("Answer the user's question using the context below when it is relevant. ")
	b.WriteString("If the context does not contain the answer, say so honestly.\n")

	if len(chunks) > 0 {
		b.WriteString("\nContext:\n")
		for _, rc := range chunks {
			b.WriteString(rc.Chunk.Content)
			b.WriteString("\n---\n")
		}
	}

	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

// History returns the session's messages in chronological order
func (s *orchestratorService) History(ctx context.Context, sessionID string) ([]domain.Message, error) {
	state, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return state.History, nil
}

// Reset discards all state for a session
func (s *orchestratorService) Reset(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

// sessionLock returns the per-session turn lock, creating it on first use
func (s *orchestratorService) sessionLock(sessionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.sessions[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.sessions[sessionID] = lock
	}
	return lock
}
