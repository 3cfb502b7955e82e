package driving

import (
	"context"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// RetrieverService answers nearest-neighbour queries over the knowledge base
type RetrieverService interface {
	// Retrieve returns the top-k most relevant chunks for a query, most
	// relevant first. An empty knowledge base yields an empty slice.
	Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error)
}
