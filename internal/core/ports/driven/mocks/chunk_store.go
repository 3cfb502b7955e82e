package mocks

import (
	"context"
	"sync"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// MockChunkStore is a mock implementation of ChunkStore for testing.
// Chunks are kept in ingestion order, keyed by (source, position).
type MockChunkStore struct {
	mu     sync.RWMutex
	order  []*domain.Chunk
	byKey  map[string]map[int]*domain.Chunk
	failNext bool
}

// NewMockChunkStore creates a new MockChunkStore
func NewMockChunkStore() *MockChunkStore {
	return &MockChunkStore{
		byKey: make(map[string]map[int]*domain.Chunk),
	}
}

func (m *MockChunkStore) SaveBatch(ctx context.Context, chunks []*domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return context.DeadlineExceeded
	}
	for _, chunk := range chunks {
		positions, ok := m.byKey[chunk.SourceDocument]
		if !ok {
			positions = make(map[int]*domain.Chunk)
			m.byKey[chunk.SourceDocument] = positions
		}
		if existing, ok := positions[chunk.Position]; ok {
			// Overwrite in place, never duplicate
			*existing = *chunk
			continue
		}
		positions[chunk.Position] = chunk
		m.order = append(m.order, chunk)
	}
	return nil
}

func (m *MockChunkStore) ExistingPositions(ctx context.Context, sourceDocument string) (map[int]bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	existing := make(map[int]bool)
	for pos := range m.byKey[sourceDocument] {
		existing[pos] = true
	}
	return existing, nil
}

func (m *MockChunkStore) All(ctx context.Context) ([]*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*domain.Chunk(nil), m.order...), nil
}

func (m *MockChunkStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order), nil
}

func (m *MockChunkStore) CountBySource(ctx context.Context, sourceDocument string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byKey[sourceDocument]), nil
}

// SetFailNext makes the next SaveBatch call fail
func (m *MockChunkStore) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}

// MockDocumentStore is a mock implementation of DocumentStore for testing
type MockDocumentStore struct {
	mu     sync.RWMutex
	byName map[string]*domain.Document
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{byName: make(map[string]*domain.Document)}
}

func (m *MockDocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byName[doc.Name] = doc
	return nil
}

func (m *MockDocumentStore) GetByName(ctx context.Context, name string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.byName[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return doc, nil
}

func (m *MockDocumentStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byName), nil
}
