package mocks

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// MockVectorIndex is a brute-force in-memory VectorIndex for testing.
// Cosine over stored embeddings, ties broken by ingestion order.
type MockVectorIndex struct {
	mu     sync.RWMutex
	chunks []*domain.Chunk
}

// NewMockVectorIndex creates a new MockVectorIndex
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{}
}

func (m *MockVectorIndex) Add(ctx context.Context, chunks []*domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *MockVectorIndex) Search(ctx context.Context, vector []float32, k int) ([]domain.RetrievedChunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(m.chunks))
	for i, chunk := range m.chunks {
		scores[i] = scored{idx: i, score: cosine(vector, chunk.Embedding)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if k > len(scores) {
		k = len(scores)
	}
	results := make([]domain.RetrievedChunk, 0, k)
	for i := 0; i < k; i++ {
		results = append(results, domain.RetrievedChunk{
			Chunk: m.chunks[scores[i].idx],
			Score: scores[i].score,
		})
	}
	return results, nil
}

func (m *MockVectorIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
