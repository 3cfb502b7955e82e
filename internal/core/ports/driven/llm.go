package driven

import (
	"context"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// LLMService provides language model completions for the dialogue loop.
// Treated as a black box with unbounded latency; failures surface as
// domain.ErrModelUnavailable.
type LLMService interface {
	// Complete generates a reply for the given instruction prompt and
	// conversation history. History is replayed verbatim, in order.
	Complete(ctx context.Context, prompt string, history []domain.Message) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the LLM service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service
	Close() error
}
