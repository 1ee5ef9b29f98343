package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"StoryForge/internal/config"
)

func newTestClient(serverURL string) *GroqClient {
	return NewGroqClient(config.GroqConfig{
		BaseURL: serverURL,
		Model:   "llama3-70b-8192",
		APIKey:  "test-key",
	})
}

func TestCompleteReturnsTrimmedContent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", got)
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if payload["temperature"] != 0.9 {
			t.Errorf("expected temperature 0.9, got %v", payload["temperature"])
		}

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  A hook. Here's the full story.  "}}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	got, err := c.Complete(context.Background(), "write a hook")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != "A hook. Here's the full story." {
		t.Fatalf("unexpected content: %q", got)
	}
}

func TestCompleteEmptyContent(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	if _, err := c.Complete(context.Background(), "p"); !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	if _, err := c.Complete(context.Background(), "p"); !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("expected ErrEmptyCompletion, got %v", err)
	}
}

func TestCompleteErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	if _, err := c.Complete(context.Background(), "p"); err == nil {
		t.Fatal("expected error for 429 status")
	}
}

func TestCompleteMisconfigured(t *testing.T) {
	t.Parallel()

	c := NewGroqClient(config.GroqConfig{})
	if _, err := c.Complete(context.Background(), "p"); err == nil {
		t.Fatal("expected misconfiguration error")
	}
}
