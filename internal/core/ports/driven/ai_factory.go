package driven

import (
	"github.com/parley-labs/parley-core/internal/core/domain"
)

// AIServiceFactory creates AI services from settings.
// Returns nil (no error) when settings are absent or incomplete, so the
// caller can degrade instead of failing startup.
type AIServiceFactory interface {
	// CreateEmbeddingService creates an embedding service from settings
	CreateEmbeddingService(settings *domain.EmbeddingSettings) (EmbeddingService, error)

	// CreateLLMService creates an LLM service from settings
	CreateLLMService(settings *domain.LLMSettings) (LLMService, error)
}
