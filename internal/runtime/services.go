// Package runtime holds the assistant's swappable model backends.
// Embedding and chat models are configured over the admin API after
// boot, so everything that talks to a model resolves it through this
// registry on every call instead of capturing an instance at startup.
package runtime

import (
	"context"
	"sync"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
)

// Services is the single swap point for model backends. Readers get
// whatever backend is current at call time; a nil return means the
// capability is not configured yet. Safe for concurrent use.
type Services struct {
	mu        sync.RWMutex
	config    *domain.RuntimeConfig
	embedding driven.EmbeddingService
	llm       driven.LLMService
}

func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{config: config}
}

// Config returns the capability flags mirrored by the setters below.
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// EmbeddingService returns the current embedding backend, or nil.
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embedding
}

// LLMService returns the current chat backend, or nil.
func (s *Services) LLMService() driven.LLMService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.llm
}

// SetEmbeddingService swaps the embedding backend, closing the one it
// replaces. Passing nil disables retrieval until a new backend is set.
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.embedding != nil {
		_ = s.embedding.Close()
	}
	s.embedding = svc
	s.config.SetEmbeddingAvailable(svc != nil)
}

// SetLLMService swaps the chat backend, closing the one it replaces.
// Passing nil drops the assistant back to keyword-only behaviour.
func (s *Services) SetLLMService(svc driven.LLMService) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.llm != nil {
		_ = s.llm.Close()
	}
	s.llm = svc
	s.config.SetLLMAvailable(svc != nil)
}

// ValidateAndSetEmbedding health-checks the backend before installing it, so
// a typo'd endpoint never replaces a working one. The rejected backend
// is closed.
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc != nil {
		if err := svc.HealthCheck(ctx); err != nil {
			_ = svc.Close()
			return err
		}
	}
	s.SetEmbeddingService(svc)
	return nil
}

// ValidateAndSetLLM pings the backend before installing it.
func (s *Services) ValidateAndSetLLM(ctx context.Context, svc driven.LLMService) error {
	if svc != nil {
		if err := svc.Ping(ctx); err != nil {
			_ = svc.Close()
			return err
		}
	}
	s.SetLLMService(svc)
	return nil
}

// Close shuts both backends down and clears the capability flags.
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.embedding != nil {
		_ = s.embedding.Close()
		s.embedding = nil
	}
	if s.llm != nil {
		_ = s.llm.Close()
		s.llm = nil
	}
	s.config.SetEmbeddingAvailable(false)
	s.config.SetLLMAvailable(false)
	return nil
}
