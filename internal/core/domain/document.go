package domain

import (
	"fmt"
	"time"
)

// RawDocument is an uploaded document before ingestion.
// Bytes are interpreted according to MimeType by the normaliser registry.
type RawDocument struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// Document represents a registered upload in the knowledge base
type Document struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	MimeType   string    `json:"mime_type"`
	SHA        string    `json:"sha"` // content hash, stable across re-uploads
	IngestedAt time.Time `json:"ingested_at"`
}

// Chunk represents a retrievable fragment of an ingested document.
// Chunks are immutable once created. ID is unique, and so is
// (SourceDocument, Position) - re-ingesting the same document never
// duplicates retrievable content.
type Chunk struct {
	ID             string    `json:"id"`
	SourceDocument string    `json:"source_document"`
	Position       int       `json:"position"` // window index within the document
	Content        string    `json:"content"`
	Embedding      []float32 `json:"embedding,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// RetrievedChunk is a chunk scored against a query
type RetrievedChunk struct {
	Chunk *Chunk  `json:"chunk"`
	Score float64 `json:"score"`
}

// DocumentResult is the per-document outcome of an ingestion batch
type DocumentResult struct {
	Name        string `json:"name"`
	ChunksAdded int    `json:"chunks_added"`
	Skipped     int    `json:"skipped"` // windows already present from an earlier upload
	Error       string `json:"error,omitempty"`
}

// IngestReport summarises an ingestion batch.
// Failures are reported per document; a failed document never aborts the batch.
type IngestReport struct {
	ChunksAdded int              `json:"chunks_added"`
	Documents   []DocumentResult `json:"documents"`
}

// KnowledgeBaseStats holds knowledge base counters for the admin surface
type KnowledgeBaseStats struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Bookings  int `json:"bookings"`
}

// Summary returns a short human-readable outcome line for the batch
func (r *IngestReport) Summary() string {
	failed := len(r.Failed())
	if failed == 0 {
		return fmt.Sprintf("Ingested %d chunks from %d document(s)", r.ChunksAdded, len(r.Documents))
	}
	return fmt.Sprintf("Ingested %d chunks from %d document(s), %d failed", r.ChunksAdded, len(r.Documents)-failed, failed)
}

// Failed returns the results of documents that could not be ingested
func (r *IngestReport) Failed() []DocumentResult {
	var failed []DocumentResult
	for _, d := range r.Documents {
		if d.Error != "" {
			failed = append(failed, d)
		}
	}
	return failed
}
