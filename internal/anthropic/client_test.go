package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MikeSquared-Agency/cadence/internal/llm"
)

var _ llm.Provider = (*Client)(nil)

func TestComplete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("expected x-api-key test-key, got %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") != "2023-06-01" {
			t.Errorf("expected anthropic-version 2023-06-01, got %q", r.Header.Get("anthropic-version"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type application/json, got %q", r.Header.Get("Content-Type"))
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("expected model test-model, got %q", req.Model)
		}
		if req.System != "you are a scriptwriter" {
			t.Errorf("expected system prompt, got %q", req.System)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.MaxTokens != 100 {
			t.Errorf("expected max_tokens 100, got %d", req.MaxTokens)
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response{
			Content:    []contentBlock{{Type: "text", Text: "world"}},
			StopReason: "end_turn",
		})
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model")
	c.SetBaseURL(server.URL)

	result, err := c.Complete(context.Background(), "you are a scriptwriter", llm.UserPrompt("hello"), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "world" {
		t.Errorf("expected 'world', got %q", result)
	}
}

func TestComplete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"type":    "invalid_request_error",
				"message": "max_tokens is too large",
			},
		})
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model")
	c.SetBaseURL(server.URL)

	_, err := c.Complete(context.Background(), "", llm.UserPrompt("hi"), 100)
	if err == nil {
		t.Fatal("expected error for API error response")
	}
}

func TestComplete_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(response{StopReason: "end_turn"})
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model")
	c.SetBaseURL(server.URL)

	_, err := c.Complete(context.Background(), "", llm.UserPrompt("hi"), 100)
	if err == nil {
		t.Fatal("expected error for empty content response")
	}
}

func TestComplete_DefaultMaxTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req request
		json.NewDecoder(r.Body).Decode(&req)
		if req.MaxTokens != defaultMaxTokens {
			t.Errorf("expected max_tokens %d, got %d", defaultMaxTokens, req.MaxTokens)
		}
		json.NewEncoder(w).Encode(response{Content: []contentBlock{{Type: "text", Text: "ok"}}})
	}))
	defer server.Close()

	c := NewClient("test-key", "test-model")
	c.SetBaseURL(server.URL)

	if _, err := c.Complete(context.Background(), "system", llm.UserPrompt("hi"), 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetBaseURL(t *testing.T) {
	c := NewClient("test-key", "test-model")
	if c.url != apiURL {
		t.Fatalf("expected default url %s, got %s", apiURL, c.url)
	}

	c.SetBaseURL("")
	if c.url != apiURL {
		t.Errorf("empty url should keep %s, got %s", apiURL, c.url)
	}

	c.SetBaseURL("http://proxy.internal/v1/messages")
	if c.url != "http://proxy.internal/v1/messages" {
		t.Errorf("expected custom url, got %s", c.url)
	}
}
