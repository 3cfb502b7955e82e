package mocks

import (
	"context"
	"strings"
	"sync"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// MockLLMService is a scripted LLM stand-in. Replies are served from a
// queue; when the queue is empty a canned reply echoing the prompt tail is
// returned, so tests stay deterministic without scripting every turn.
type MockLLMService struct {
	mu       sync.Mutex
	replies  []string
	prompts  []string
	failNext bool
}

// NewMockLLMService creates a new MockLLMService
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{}
}

func (m *MockLLMService) Complete(ctx context.Context, prompt string, history []domain.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failNext {
		m.failNext = false
		return "", domain.ErrModelUnavailable
	}

	m.prompts = append(m.prompts, prompt)

	if len(m.replies) > 0 {
		reply := m.replies[0]
		m.replies = m.replies[1:]
		return reply, nil
	}

	// Canned fallback keyed off the prompt so assertions stay possible
	if i := strings.Index(prompt, "\n"); i > 0 {
		return "mock reply: " + prompt[:i], nil
	}
	return "mock reply: " + prompt, nil
}

func (m *MockLLMService) Model() string {
	return "mock-llm-model"
}

func (m *MockLLMService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockLLMService) Close() error {
	return nil
}

// Helper methods for testing

// QueueReply appends a scripted reply
func (m *MockLLMService) QueueReply(reply string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, reply)
}

// SetFailNext makes the next Complete call fail with ErrModelUnavailable
func (m *MockLLMService) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

// Prompts returns the instruction prompts seen so far
func (m *MockLLMService) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}
