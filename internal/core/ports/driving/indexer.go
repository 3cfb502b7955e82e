package driving

import (
	"context"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// IndexerService ingests uploaded documents into the knowledge base
type IndexerService interface {
	// Ingest chunks, embeds and stores a batch of uploads.
	// Partial success is normal: failures are reported per document in the
	// returned report, never as a single all-or-nothing error.
	Ingest(ctx context.Context, docs []domain.RawDocument) (*domain.IngestReport, error)

	// Stats returns knowledge base counters (documents, chunks)
	Stats(ctx context.Context) (*domain.KnowledgeBaseStats, error)
}
