package domain

import "sync"

// RuntimeConfig tracks which external capabilities are available.
// Determined at startup and updated dynamically when AI services change.
// Thread-safe for concurrent access.
type RuntimeConfig struct {
	mu sync.RWMutex

	// Static (set at startup, read-only)
	ConversationBackend string // "redis" or "memory"

	// Dynamic capability flags (updated when AI services change)
	embeddingAvailable bool
	llmAvailable       bool
}

// NewRuntimeConfig creates a new RuntimeConfig with initial values
func NewRuntimeConfig(conversationBackend string) *RuntimeConfig {
	return &RuntimeConfig{
		ConversationBackend: conversationBackend,
	}
}

// EmbeddingAvailable returns whether the embedding service is available
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// LLMAvailable returns whether the LLM service is available
func (c *RuntimeConfig) LLMAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.llmAvailable
}

// SetEmbeddingAvailable updates the embedding availability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}

// SetLLMAvailable updates the LLM availability flag
func (c *RuntimeConfig) SetLLMAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.llmAvailable = available
}

// CanIngest returns true if document ingestion is possible.
// Ingestion needs the embedding service for chunk vectors.
func (c *RuntimeConfig) CanIngest() bool {
	return c.EmbeddingAvailable()
}

// CanConverse returns true if the dialogue loop can run
func (c *RuntimeConfig) CanConverse() bool {
	return c.LLMAvailable()
}
