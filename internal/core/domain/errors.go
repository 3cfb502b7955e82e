package domain

import (
	"errors"
	"fmt"
)

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionBusy indicates a turn is already in flight for the session
	ErrSessionBusy = errors.New("session turn in progress")

	// ErrModelUnavailable indicates the language model call failed
	ErrModelUnavailable = errors.New("language model unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service call failed
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrPersistenceFailed indicates the booking persistence collaborator failed
	ErrPersistenceFailed = errors.New("booking persistence failed")

	// ErrNotificationFailed indicates the notification collaborator failed.
	// Never fatal: a failed notification after successful persistence is a
	// warning, not a rollback trigger.
	ErrNotificationFailed = errors.New("notification failed")

	// ErrInvalidProvider indicates an unknown AI provider was specified
	ErrInvalidProvider = errors.New("invalid provider")
)

// IngestionError reports a single document that could not be ingested.
// Scoped to one document of a batch; it never aborts the batch.
type IngestionError struct {
	Document string
	Err      error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingest %s: %v", e.Document, e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// ValidationError reports a booking field that failed validation.
// Recoverable: the flow stays in collection and the user is told which
// field to fix.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
