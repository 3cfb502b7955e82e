package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements driven.DocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Save creates or updates a document registration, keyed by upload name
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, name, mime_type, sha, ingested_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET
			mime_type = EXCLUDED.mime_type,
			sha = EXCLUDED.sha,
			ingested_at = EXCLUDED.ingested_at
	`

	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.Name,
		doc.MimeType,
		doc.SHA,
		doc.IngestedAt,
	)
	return err
}

// GetByName retrieves a document registration by upload name
func (s *DocumentStore) GetByName(ctx context.Context, name string) (*domain.Document, error) {
	query := `
		SELECT id, name, mime_type, sha, ingested_at
		FROM documents
		WHERE name = $1
	`

	var doc domain.Document
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&doc.ID,
		&doc.Name,
		&doc.MimeType,
		&doc.SHA,
		&doc.IngestedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// Count returns total registered document count
func (s *DocumentStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}
