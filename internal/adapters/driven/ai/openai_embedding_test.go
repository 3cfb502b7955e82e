package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/parley-labs/parley-core/internal/core/domain"
)

// embeddingServer fakes the OpenAI embeddings endpoint, capturing the
// last request and answering each input with a fixed 3-wide vector.
func embeddingServer(t *testing.T, lastReq *embeddingRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/embeddings" {
			t.Errorf("expected /embeddings, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(lastReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}

		resp := embeddingResponse{Model: lastReq.Model}
		for i := range lastReq.Input {
			resp.Data = append(resp.Data, embeddingVector{
				Index:     i,
				Embedding: []float32{float32(i), 0.5, 0.25},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestNewOpenAIEmbedding_RequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIEmbedding("", "text-embedding-3-small", ""); err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestNewOpenAIEmbedding_Defaults(t *testing.T) {
	svc, err := NewOpenAIEmbedding("sk-test", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	adapter := svc.(*OpenAIEmbedding)
	if adapter.model != "text-embedding-3-small" {
		t.Errorf("expected the small embedding model by default, got %s", adapter.model)
	}
	if adapter.baseURL != "https://api.openai.com/v1" {
		t.Errorf("expected the public API base URL, got %s", adapter.baseURL)
	}
}

func TestOpenAIEmbedding_Dimensions(t *testing.T) {
	cases := []struct {
		model string
		want  int
	}{
		{"text-embedding-3-small", 1536},
		{"text-embedding-3-large", 3072},
		{"text-embedding-ada-002", 1536},
		{"some-future-model", 1536},
	}
	for _, tc := range cases {
		t.Run(tc.model, func(t *testing.T) {
			svc, err := NewOpenAIEmbedding("sk-test", tc.model, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if svc.Dimensions() != tc.want {
				t.Errorf("expected %d dimensions, got %d", tc.want, svc.Dimensions())
			}
		})
	}
}

func TestOpenAIEmbedding_Embed_ChunkBatch(t *testing.T) {
	var captured embeddingRequest
	server := embeddingServer(t, &captured)
	defer server.Close()

	svc, err := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chunks := []string{
		"Bookings can be cancelled free of charge up to 24 hours in advance.",
		"We are open Tuesday through Sunday from 9am to 6pm.",
		"A deposit is required for group bookings of six or more.",
	}
	vectors, err := svc.Embed(context.Background(), chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(vectors) != len(chunks) {
		t.Fatalf("expected one vector per chunk, got %d for %d", len(vectors), len(chunks))
	}
	// Positional mapping: vector i carries index i from the fake server.
	for i, v := range vectors {
		if len(v) != 3 || v[0] != float32(i) {
			t.Errorf("vector %d does not match its input position: %v", i, v)
		}
	}
	if len(captured.Input) != 3 || captured.Input[2] != chunks[2] {
		t.Errorf("expected all chunk texts in the request, got %v", captured.Input)
	}
	if captured.Model != "text-embedding-3-small" {
		t.Errorf("expected model in request, got %q", captured.Model)
	}
}

func TestOpenAIEmbedding_Embed_EmptyBatchSkipsAPI(t *testing.T) {
	svc, err := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", "http://unreachable.invalid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vectors, err := svc.Embed(context.Background(), nil)
	if err != nil {
		t.Errorf("unexpected error for empty batch: %v", err)
	}
	if vectors != nil {
		t.Error("expected no vectors for an empty batch")
	}
}

func TestOpenAIEmbedding_EmbedQuery(t *testing.T) {
	var captured embeddingRequest
	server := embeddingServer(t, &captured)
	defer server.Close()

	svc, err := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vector, err := svc.EmbedQuery(context.Background(), "what is your cancellation policy?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vector) != 3 {
		t.Errorf("expected a single query vector, got %v", vector)
	}
	if len(captured.Input) != 1 || captured.Input[0] != "what is your cancellation policy?" {
		t.Errorf("expected the question as the sole input, got %v", captured.Input)
	}
}

func TestOpenAIEmbedding_Embed_APIErrorIsEmbeddingUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(embeddingResponse{
			Error: &embeddingAPIError{
				Message: "Invalid API key",
				Type:    "invalid_request_error",
				Code:    "invalid_api_key",
			},
		})
	}))
	defer server.Close()

	svc, err := NewOpenAIEmbedding("sk-invalid", "text-embedding-3-small", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Embed(context.Background(), []string{"our opening hours"})
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Errorf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestOpenAIEmbedding_Embed_ShortResponseRejected(t *testing.T) {
	// Two chunks in, one vector out: the adapter must refuse rather
	// than hand the indexer a nil embedding.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(embeddingResponse{
			Data: []embeddingVector{{Index: 0, Embedding: []float32{0.1}}},
		})
	}))
	defer server.Close()

	svc, err := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Embed(context.Background(), []string{"deposit policy", "opening hours"})
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Errorf("expected ErrEmbeddingUnavailable for short response, got %v", err)
	}
}

func TestOpenAIEmbedding_EmbedQuery_EmptyResponseRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(embeddingResponse{Model: "text-embedding-3-small"})
	}))
	defer server.Close()

	svc, err := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.EmbedQuery(context.Background(), "do you take walk-ins?")
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Errorf("expected ErrEmbeddingUnavailable for empty response, got %v", err)
	}
}

func TestOpenAIEmbedding_Embed_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	svc, err := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Embed(context.Background(), []string{"refund policy"})
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Errorf("expected ErrEmbeddingUnavailable for malformed body, got %v", err)
	}
}

func TestOpenAIEmbedding_Embed_NetworkErrorIsEmbeddingUnavailable(t *testing.T) {
	svc, err := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", "http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.Embed(context.Background(), []string{"refund policy"})
	if !errors.Is(err, domain.ErrEmbeddingUnavailable) {
		t.Errorf("expected ErrEmbeddingUnavailable for network failure, got %v", err)
	}
}

func TestOpenAIEmbedding_HealthCheck(t *testing.T) {
	var captured embeddingRequest
	server := embeddingServer(t, &captured)
	defer server.Close()

	svc, err := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.HealthCheck(context.Background()); err != nil {
		t.Errorf("unexpected health check error: %v", err)
	}
}

func TestOpenAIEmbedding_Close(t *testing.T) {
	svc, err := NewOpenAIEmbedding("sk-test", "text-embedding-3-small", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Errorf("unexpected error from Close: %v", err)
	}
}
