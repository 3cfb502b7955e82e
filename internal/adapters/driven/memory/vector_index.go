package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
)

// Ensure VectorIndex implements the port
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-process brute-force cosine similarity index.
// Writes take a single writer lock; readers run concurrently and never
// observe a torn entry. Suited to knowledge bases small enough to scan
// per query; the ChunkStore remains the durable copy, and Refresh
// rebuilds from it when another process has been writing.
type VectorIndex struct {
	mu     sync.RWMutex
	chunks []*domain.Chunk
}

// NewVectorIndex creates an empty index
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// Load populates the index from a chunk store, for startup rebuilds
func (v *VectorIndex) Load(ctx context.Context, store driven.ChunkStore) error {
	chunks, err := store.All(ctx)
	if err != nil {
		return err
	}
	return v.Add(ctx, chunks)
}

// Refresh reconciles the index against the chunk store. A matching
// count is a no-op; otherwise the index is rebuilt from the store,
// picking up chunks written by a separate worker process.
func (v *VectorIndex) Refresh(ctx context.Context, store driven.ChunkStore) error {
	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if count == v.Len() {
		return nil
	}

	chunks, err := store.All(ctx)
	if err != nil {
		return err
	}
	indexed := make([]*domain.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk == nil || len(chunk.Embedding) == 0 {
			continue
		}
		indexed = append(indexed, chunk)
	}

	v.mu.Lock()
	v.chunks = indexed
	v.mu.Unlock()
	return nil
}

// Add appends chunks to the index
func (v *VectorIndex) Add(ctx context.Context, chunks []*domain.Chunk) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, chunk := range chunks {
		if chunk == nil || len(chunk.Embedding) == 0 {
			continue
		}
		v.chunks = append(v.chunks, chunk)
	}
	return nil
}

// Search returns the top-k chunks by cosine similarity, most relevant
// first. Ties keep ingestion order. An empty index yields an empty slice.
func (v *VectorIndex) Search(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if len(v.chunks) == 0 || k <= 0 {
		return []domain.RetrievedChunk{}, nil
	}

	scored := make([]domain.RetrievedChunk, 0, len(v.chunks))
	for _, chunk := range v.chunks {
		scored = append(scored, domain.RetrievedChunk{
			Chunk: chunk,
			Score: cosineSimilarity(vector, chunk.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Len returns the number of indexed chunks
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.chunks)
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths and zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
