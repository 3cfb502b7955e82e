package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore implements driven.ChunkStore using PostgreSQL.
// Embeddings are stored inline as real[] so the vector index can be
// rebuilt from this table on startup.
type ChunkStore struct {
	db *DB
}

// NewChunkStore creates a new ChunkStore
func NewChunkStore(db *DB) *ChunkStore {
	return &ChunkStore{db: db}
}

// SaveBatch saves multiple chunks in a transaction.
// An existing (source_document, position) pair is overwritten, never duplicated.
func (s *ChunkStore) SaveBatch(ctx context.Context, chunks []*domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO chunks (id, source_document, position, content, embedding, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (source_document, position) DO UPDATE SET
				content = EXCLUDED.content,
				embedding = EXCLUDED.embedding
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, chunk := range chunks {
			_, err = stmt.ExecContext(ctx,
				chunk.ID,
				chunk.SourceDocument,
				chunk.Position,
				chunk.Content,
				pq.Float32Array(chunk.Embedding),
				chunk.CreatedAt,
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// ExistingPositions returns the window positions already stored for a source document
func (s *ChunkStore) ExistingPositions(ctx context.Context, sourceDocument string) (map[int]bool, error) {
	query := `SELECT position FROM chunks WHERE source_document = $1`

	rows, err := s.db.QueryContext(ctx, query, sourceDocument)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	positions := make(map[int]bool)
	for rows.Next() {
		var position int
		if err := rows.Scan(&position); err != nil {
			return nil, err
		}
		positions[position] = true
	}

	return positions, rows.Err()
}

// All retrieves every chunk in ingestion order, for index rebuilds
func (s *ChunkStore) All(ctx context.Context) ([]*domain.Chunk, error) {
	query := `
		SELECT id, source_document, position, content, embedding, created_at
		FROM chunks
		ORDER BY created_at ASC, source_document ASC, position ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chunks []*domain.Chunk
	for rows.Next() {
		var chunk domain.Chunk
		var embedding pq.Float32Array
		err := rows.Scan(
			&chunk.ID,
			&chunk.SourceDocument,
			&chunk.Position,
			&chunk.Content,
			&embedding,
			&chunk.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		chunk.Embedding = []float32(embedding)
		chunks = append(chunks, &chunk)
	}

	return chunks, rows.Err()
}

// Count returns total chunk count
func (s *ChunkStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// CountBySource returns the chunk count for a source document
func (s *ChunkStore) CountBySource(ctx context.Context, sourceDocument string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE source_document = $1`, sourceDocument).Scan(&count)
	return count, err
}
