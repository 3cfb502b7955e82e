package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.BookingStore = (*BookingStore)(nil)

// BookingStore implements driven.BookingStore using PostgreSQL.
// When an encryptor is configured, the contact fields (email, phone) are
// stored as AES-256-GCM blobs and the plaintext columns stay empty.
type BookingStore struct {
	db        *DB
	encryptor *ContactEncryptor // nil disables PII encryption
}

// NewBookingStore creates a new BookingStore. encryptor may be nil.
func NewBookingStore(db *DB, encryptor *ContactEncryptor) *BookingStore {
	return &BookingStore{db: db, encryptor: encryptor}
}

// Save persists a finalized booking record and returns its booking ID
func (s *BookingStore) Save(ctx context.Context, rec *domain.BookingRecord) (string, error) {
	email, phone := rec.Email, rec.Phone
	var emailEnc, phoneEnc []byte

	if s.encryptor != nil {
		var err error
		if emailEnc, err = s.encryptor.Seal(rec.Email); err != nil {
			return "", err
		}
		if phoneEnc, err = s.encryptor.Seal(rec.Phone); err != nil {
			return "", err
		}
		email, phone = "", ""
	}

	query := `
		INSERT INTO bookings (id, name, email, phone, email_enc, phone_enc, booking_type, date, time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.Name,
		email,
		phone,
		emailEnc,
		phoneEnc,
		rec.BookingType,
		rec.Date,
		rec.Time,
		rec.CreatedAt,
	)
	if err != nil {
		return "", err
	}

	return rec.ID, nil
}

// Get retrieves a booking by ID
func (s *BookingStore) Get(ctx context.Context, id string) (*domain.BookingRecord, error) {
	query := `
		SELECT id, name, email, phone, email_enc, phone_enc, booking_type, date, time, created_at
		FROM bookings
		WHERE id = $1
	`

	rec, err := s.scanBooking(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return rec, err
}

// List retrieves bookings, newest first
func (s *BookingStore) List(ctx context.Context, limit, offset int) ([]*domain.BookingRecord, error) {
	query := `
		SELECT id, name, email, phone, email_enc, phone_enc, booking_type, date, time, created_at
		FROM bookings
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.BookingRecord
	for rows.Next() {
		rec, err := s.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Count returns total booking count
func (s *BookingStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`).Scan(&count)
	return count, err
}

// scanner covers both sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

// scanBooking reads one booking row, decrypting contact blobs when present
func (s *BookingStore) scanBooking(row scanner) (*domain.BookingRecord, error) {
	var rec domain.BookingRecord
	var emailEnc, phoneEnc []byte

	err := row.Scan(
		&rec.ID,
		&rec.Name,
		&rec.Email,
		&rec.Phone,
		&emailEnc,
		&phoneEnc,
		&rec.BookingType,
		&rec.Date,
		&rec.Time,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if s.encryptor != nil {
		if len(emailEnc) > 0 {
			if rec.Email, err = s.encryptor.Open(emailEnc); err != nil {
				return nil, err
			}
		}
		if len(phoneEnc) > 0 {
			if rec.Phone, err = s.encryptor.Open(phoneEnc); err != nil {
				return nil, err
			}
		}
	}

	return &rec, nil
}
