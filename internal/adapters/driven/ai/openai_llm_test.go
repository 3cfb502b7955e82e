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

func TestNewOpenAILLM_RequiresAPIKey(t *testing.T) {
	_, err := NewOpenAILLM("", "gpt-4o-mini", "")
	if err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestNewOpenAILLM_Defaults(t *testing.T) {
	svc, err := NewOpenAILLM("sk-test", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	llm := svc.(*OpenAILLM)
	if llm.model != "gpt-4o-mini" {
		t.Errorf("expected default model gpt-4o-mini, got %s", llm.model)
	}
	if llm.baseURL != "https://api.openai.com/v1" {
		t.Errorf("expected default base URL, got %s", llm.baseURL)
	}
}

func TestOpenAILLM_Complete_Success(t *testing.T) {
	var captured chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected auth header: %s", auth)
		}
		_ = json.NewDecoder(r.Body).Decode(&captured)

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "We open at 9am."}},
			},
		})
	}))
	defer server.Close()

	svc, err := NewOpenAILLM("sk-test", "gpt-4o-mini", server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	history := []domain.Message{
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello!"},
	}
	reply, err := svc.Complete(context.Background(), "What time do you open?", history)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "We open at 9am." {
		t.Errorf("unexpected reply: %q", reply)
	}

	// History is replayed in order, prompt last
	if len(captured.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Content != "hi" || captured.Messages[1].Content != "hello!" {
		t.Error("history not replayed in order")
	}
	if captured.Messages[2].Role != "user" || captured.Messages[2].Content != "What time do you open?" {
		t.Errorf("prompt not last: %+v", captured.Messages[2])
	}
}

func TestOpenAILLM_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "rate limited", "type": "rate_limit", "code": "429"},
		})
	}))
	defer server.Close()

	svc, _ := NewOpenAILLM("sk-test", "gpt-4o-mini", server.URL)

	_, err := svc.Complete(context.Background(), "hello", nil)
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestOpenAILLM_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	}))
	defer server.Close()

	svc, _ := NewOpenAILLM("sk-test", "gpt-4o-mini", server.URL)

	_, err := svc.Complete(context.Background(), "hello", nil)
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestOpenAILLM_Complete_NetworkError(t *testing.T) {
	svc, _ := NewOpenAILLM("sk-test", "gpt-4o-mini", "http://127.0.0.1:1")

	_, err := svc.Complete(context.Background(), "hello", nil)
	if !errors.Is(err, domain.ErrModelUnavailable) {
		t.Errorf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestOpenAILLM_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc, _ := NewOpenAILLM("sk-test", "gpt-4o-mini", server.URL)
	if err := svc.Ping(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestOpenAILLM_Model(t *testing.T) {
	svc, _ := NewOpenAILLM("sk-test", "gpt-4o", "")
	if svc.Model() != "gpt-4o" {
		t.Errorf("expected gpt-4o, got %s", svc.Model())
	}
}
