package driven

import (
	"context"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// VectorIndex answers nearest-neighbour queries over chunk embeddings.
// Appends must be atomic per chunk: concurrent readers never observe a
// torn entry. Searching an empty index returns an empty result, not an
// error - "no knowledge base yet" is a normal state.
type VectorIndex interface {
	// Add appends chunks (with embeddings) to the index
	Add(ctx context.Context, chunks []*domain.Chunk) error

	// Search returns the top-k chunks by similarity, most relevant first.
	// Ties are broken by ingestion order, stable and deterministic.
	Search(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error)

	// Len returns the number of indexed chunks
	Len() int
}
