package driven

import "context"

// EmbeddingService vectorises document chunks at ingest time and user
// questions at query time. Both sides must run the same model; vectors
// from different models are not comparable.
type EmbeddingService interface {
	// Embed vectorises a batch of chunk texts, one vector per input
	// in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery vectorises a single question for similarity search.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Dimensions returns the vector width of the configured model.
	Dimensions() int

	// Model returns the configured model name.
	Model() string

	// HealthCheck verifies the backend answers embedding requests.
	HealthCheck(ctx context.Context) error

	// Close releases any held connections.
	Close() error
}
