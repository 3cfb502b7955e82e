package driven

import (
	"context"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// ChunkStore handles chunk persistence. Append-only: ingestion grows the
// store monotonically and never deletes. (SourceDocument, Position) is
// unique; saving an existing pair overwrites instead of duplicating.
type ChunkStore interface {
	// SaveBatch saves multiple chunks in a transaction
	SaveBatch(ctx context.Context, chunks []*domain.Chunk) error

	// ExistingPositions returns the window positions already stored for a
	// source document, used to make re-ingestion idempotent
	ExistingPositions(ctx context.Context, sourceDocument string) (map[int]bool, error)

	// All retrieves every chunk in ingestion order (for index rebuilds)
	All(ctx context.Context) ([]*domain.Chunk, error)

	// Count returns total chunk count
	Count(ctx context.Context) (int, error)

	// CountBySource returns the chunk count for a source document
	CountBySource(ctx context.Context, sourceDocument string) (int, error)
}

// DocumentStore tracks registered uploads
type DocumentStore interface {
	// Save creates or updates a document registration
	Save(ctx context.Context, doc *domain.Document) error

	// GetByName retrieves a document registration by upload name
	GetByName(ctx context.Context, name string) (*domain.Document, error)

	// Count returns total registered document count
	Count(ctx context.Context) (int, error)
}
