package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
)

// Ensure OpenAIEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*OpenAIEmbedding)(nil)

const (
	defaultEmbeddingModel = "text-embedding-3-small"
	defaultOpenAIBaseURL  = "https://api.openai.com/v1"
)

// OpenAIEmbedding turns document chunks and user questions into vectors
// via OpenAI's embeddings endpoint. Retrieval failures surface as
// domain.ErrEmbeddingUnavailable so the dialogue loop can degrade to
// its no-context reply instead of erroring the whole turn.
type OpenAIEmbedding struct {
	apiKey     string
	model      string
	baseURL    string
	dimensions int
	client     *http.Client
}

// NewOpenAIEmbedding constructs the adapter. Model and base URL fall
// back to text-embedding-3-small against the public API.
func NewOpenAIEmbedding(apiKey, model, baseURL string) (driven.EmbeddingService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = defaultEmbeddingModel
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIEmbedding{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		dimensions: embeddingDimensions(model),
		client:     &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// embeddingDimensions maps known OpenAI models to their vector width.
// Unknown models get the small-model width; the in-memory index only
// uses this for capacity hints, the API decides the real width.
func embeddingDimensions(model string) int {
	switch model {
	case "text-embedding-3-large":
		return 3072
	default:
		return 1536
	}
}

type embeddingRequest struct {
	Input          []string `json:"input"`
	Model          string   `json:"model"`
	EncodingFormat string   `json:"encoding_format,omitempty"`
}

type embeddingVector struct {
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embeddingAPIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code"`
}

type embeddingResponse struct {
	Data  []embeddingVector  `json:"data"`
	Model string             `json:"model"`
	Error *embeddingAPIError `json:"error,omitempty"`
}

// Embed vectorises a batch of chunk texts. The result is positional:
// embeddings[i] belongs to texts[i] regardless of API response order.
func (e *OpenAIEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.doRequest(ctx, embeddingRequest{
		Input:          texts,
		Model:          e.model,
		EncodingFormat: "float",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
			domain.ErrEmbeddingUnavailable, len(resp.Data), len(texts))
	}

	embeddings := make([][]float32, len(texts))
	for _, v := range resp.Data {
		if v.Index < 0 || v.Index >= len(embeddings) {
			return nil, fmt.Errorf("%w: embedding index %d out of range",
				domain.ErrEmbeddingUnavailable, v.Index)
		}
		embeddings[v.Index] = v.Embedding
	}
	return embeddings, nil
}

// EmbedQuery vectorises a single user question for similarity search.
func (e *OpenAIEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	embeddings, err := e.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

func (e *OpenAIEmbedding) Dimensions() int {
	return e.dimensions
}

func (e *OpenAIEmbedding) Model() string {
	return e.model
}

// HealthCheck embeds a single word, exercising auth and the model
// name in one round trip.
func (e *OpenAIEmbedding) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedQuery(ctx, "ping")
	return err
}

func (e *OpenAIEmbedding) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

func (e *OpenAIEmbedding) doRequest(ctx context.Context, reqBody embeddingRequest) (*embeddingResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	// The API sends a structured error body on failures; prefer it over
	// the bare status code.
	if embResp.Error != nil {
		return nil, fmt.Errorf("OpenAI API error: %s (type: %s, code: %s)",
			embResp.Error.Message, embResp.Error.Type, embResp.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI API returned status %d", resp.StatusCode)
	}
	return &embResp, nil
}
