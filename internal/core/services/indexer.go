package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
	"github.com/parley-labs/parley-core/internal/core/ports/driving"
	"github.com/parley-labs/parley-core/internal/runtime"
)

// Ensure indexerService implements IndexerService
var _ driving.IndexerService = (*indexerService)(nil)

// indexerService implements the IndexerService interface
type indexerService struct {
	normalisers   driven.NormaliserRegistry
	pipeline      driven.PostProcessorPipeline
	chunkStore    driven.ChunkStore
	documentStore driven.DocumentStore
	bookingStore  driven.BookingStore
	index         driven.VectorIndex
	services      *runtime.Services // Dynamic AI services
	logger        *slog.Logger
}

// NewIndexerService creates a new IndexerService.
// The embedding service is accessed dynamically via runtime.Services.
func NewIndexerService(
	normalisers driven.NormaliserRegistry,
	pipeline driven.PostProcessorPipeline,
	chunkStore driven.ChunkStore,
	documentStore driven.DocumentStore,
	bookingStore driven.BookingStore,
	index driven.VectorIndex,
	services *runtime.Services,
	logger *slog.Logger,
) driving.IndexerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &indexerService{
		normalisers:   normalisers,
		pipeline:      pipeline,
		chunkStore:    chunkStore,
		documentStore: documentStore,
		bookingStore:  bookingStore,
		index:         index,
		services:      services,
		logger:        logger,
	}
}

// Ingest chunks, embeds and stores a batch of uploaded documents.
// Failures are recorded per document; one bad upload never aborts the batch.
func (s *indexerService) Ingest(ctx context.Context, docs []domain.RawDocument) (*domain.IngestReport, error) {
	report := &domain.IngestReport{}

	for _, doc := range docs {
		result := s.ingestOne(ctx, doc)
		report.ChunksAdded += result.ChunksAdded
		report.Documents = append(report.Documents, result)

		if result.Error != "" {
			s.logger.Warn("document ingestion failed",
				"document", doc.Name,
				"error", result.Error)
		} else {
			s.logger.Info("document ingested",
				"document", doc.Name,
				"chunks_added", result.ChunksAdded,
				"skipped", result.Skipped)
		}
	}

	return report, nil
}

// ingestOne runs the full pipeline for a single document:
// normalise, chunk, skip known windows, embed, store, index.
func (s *indexerService) ingestOne(ctx context.Context, doc domain.RawDocument) domain.DocumentResult {
	result := domain.DocumentResult{Name: doc.Name}

	fail := func(err error) domain.DocumentResult {
		ierr := &domain.IngestionError{Document: doc.Name, Err: err}
		result.Error = ierr.Error()
		return result
	}

	if doc.Name == "" || len(doc.Data) == 0 {
		return fail(domain.ErrInvalidInput)
	}

	normaliser := s.normalisers.Get(doc.MimeType)
	if normaliser == nil {
		return fail(fmt.Errorf("no normaliser for %q", doc.MimeType))
	}

	text, err := normaliser.Normalise(doc.Data, doc.MimeType)
	if err != nil {
		return fail(fmt.Errorf("normalise: %w", err))
	}

	pieces := s.pipeline.Process(text)

	existing, err := s.chunkStore.ExistingPositions(ctx, doc.Name)
	if err != nil {
		return fail(fmt.Errorf("existing positions: %w", err))
	}

	var newPieces []driven.Chunk
	for _, piece := range pieces {
		if existing[piece.Position] {
			result.Skipped++
			continue
		}
		newPieces = append(newPieces, piece)
	}

	if len(newPieces) == 0 {
		// Everything was already ingested; re-uploads are a no-op
		return result
	}

	embeddingService := s.services.EmbeddingService()
	if embeddingService == nil {
		return fail(domain.ErrEmbeddingUnavailable)
	}

	texts := make([]string, len(newPieces))
	for i, piece := range newPieces {
		texts[i] = piece.Content
	}

	embeddings, err := embeddingService.Embed(ctx, texts)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err))
	}
	if len(embeddings) != len(newPieces) {
		return fail(fmt.Errorf("embedding count mismatch: got %d for %d chunks", len(embeddings), len(newPieces)))
	}

	now := time.Now().UTC()
	chunks := make([]*domain.Chunk, len(newPieces))
	for i, piece := range newPieces {
		chunks[i] = &domain.Chunk{
			ID:             uuid.NewString(),
			SourceDocument: doc.Name,
			Position:       piece.Position,
			Content:        piece.Content,
			Embedding:      embeddings[i],
			CreatedAt:      now,
		}
	}

	if err := s.chunkStore.SaveBatch(ctx, chunks); err != nil {
		return fail(fmt.Errorf("save chunks: %w", err))
	}
	if err := s.index.Add(ctx, chunks); err != nil {
		return fail(fmt.Errorf("index chunks: %w", err))
	}

	if err := s.registerDocument(ctx, doc, now); err != nil {
		// Chunks are already searchable; a failed registration only skews counters
		s.logger.Warn("document registration failed", "document", doc.Name, "error", err)
	}

	result.ChunksAdded = len(chunks)
	return result
}

// registerDocument records the upload, keeping the original ID on re-upload
func (s *indexerService) registerDocument(ctx context.Context, doc domain.RawDocument, now time.Time) error {
	sum := sha256.Sum256(doc.Data)

	registration := &domain.Document{
		ID:         uuid.NewString(),
		Name:       doc.Name,
		MimeType:   doc.MimeType,
		SHA:        hex.EncodeToString(sum[:]),
		IngestedAt: now,
	}

	if prev, err := s.documentStore.GetByName(ctx, doc.Name); err == nil && prev != nil {
		registration.ID = prev.ID
	}

	return s.documentStore.Save(ctx, registration)
}

// Stats returns knowledge base counters
func (s *indexerService) Stats(ctx context.Context) (*domain.KnowledgeBaseStats, error) {
	documents, err := s.documentStore.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}
	chunks, err := s.chunkStore.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count chunks: %w", err)
	}
	bookings, err := s.bookingStore.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	return &domain.KnowledgeBaseStats{
		Documents: documents,
		Chunks:    chunks,
		Bookings:  bookings,
	}, nil
}
