package gemini

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestGenerateWithoutKey(t *testing.T) {
	client := &Client{httpClient: http.DefaultClient}
	_, err := client.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable without API key, got %v", err)
	}
	if client.Available() {
		t.Fatal("client without key must report unavailable")
	}
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key in query")
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"[{\"name\":\"Nasi Lemak\"}]"}]}}]}`))
	}))
	defer srv.Close()

	client := &Client{
		apiKey:     "test-key",
		baseURL:    srv.URL,
		model:      "gemini-test",
		httpClient: srv.Client(),
	}

	text, err := client.Generate(context.Background(), "suggest meals")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if text != `[{"name":"Nasi Lemak"}]` {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestGenerateRetriesThenFails(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := &Client{
		apiKey:     "test-key",
		baseURL:    srv.URL,
		model:      "gemini-test",
		httpClient: srv.Client(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Generate(ctx, "prompt")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable after retries, got %v", err)
	}
	if got := hits.Load(); got != maxTries {
		t.Fatalf("expected %d attempts, got %d", maxTries, got)
	}
}

func TestGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	client := &Client{
		apiKey:     "test-key",
		baseURL:    srv.URL,
		model:      "gemini-test",
		httpClient: srv.Client(),
	}

	_, err := client.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on empty candidates, got %v", err)
	}
}
