package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
	"github.com/parley-labs/parley-core/internal/core/ports/driving"
	"github.com/parley-labs/parley-core/internal/runtime"
)

// Ensure retrieverService implements RetrieverService
var _ driving.RetrieverService = (*retrieverService)(nil)

// retrieverService implements the RetrieverService interface
type retrieverService struct {
	index    driven.VectorIndex
	services *runtime.Services // Dynamic AI services
	defaultK int
}

// NewRetrieverService creates a new RetrieverService.
// defaultK is used when callers pass k <= 0.
func NewRetrieverService(index driven.VectorIndex, services *runtime.Services, defaultK int) driving.RetrieverService {
	if defaultK <= 0 {
		defaultK = domain.DefaultRetrievalSettings().TopK
	}
	return &retrieverService{
		index:    index,
		services: services,
		defaultK: defaultK,
	}
}

// Retrieve returns the top-k chunks most similar to the query.
// An empty knowledge base yields an empty slice, not an error.
func (s *retrieverService) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	if k <= 0 {
		k = s.defaultK
	}
	if k > 100 {
		k = 100
	}

	if s.index.Len() == 0 {
		return []domain.RetrievedChunk{}, nil
	}

	embeddingService := s.services.EmbeddingService()
	if embeddingService == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	vector, err := embeddingService.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	return s.index.Search(ctx, vector, k)
}
