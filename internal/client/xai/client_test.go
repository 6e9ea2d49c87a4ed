package xai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAnalyzeMarket(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path=%q want=/v1/chat/completions", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "{\"estimated_probability\": 0.7, \"confidence\": \"high\", \"reasoning\": \"r\", \"sources\": [\"a.com\"]}"}}],
			"citations": ["a.com", "b.com"]
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "secret", "grok-test")
	a, err := c.AnalyzeMarket(context.Background(), Request{
		Question:     "Will rates fall?",
		CurrentPrice: 0.55,
	})
	if err != nil {
		t.Fatalf("AnalyzeMarket: %v", err)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth=%q want bearer token", gotAuth)
	}
	if gotBody.Model != "grok-test" || len(gotBody.Messages) != 1 {
		t.Fatalf("request=%+v", gotBody)
	}
	if !strings.Contains(gotBody.Messages[0].Content, "Will rates fall?") {
		t.Fatalf("prompt missing the question: %q", gotBody.Messages[0].Content)
	}
	if a.EstimatedProbability != 0.7 || a.Confidence != "high" {
		t.Fatalf("analysis=%+v", a)
	}
	// Citations merge into sources without duplicates.
	if len(a.Sources) != 2 || a.Sources[0] != "a.com" || a.Sources[1] != "b.com" {
		t.Fatalf("sources=%v want=[a.com b.com]", a.Sources)
	}
}

func TestAnalyzeMarket_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "secret", "")
	_, err := c.AnalyzeMarket(context.Background(), Request{Question: "q"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err=%v want *APIError", err)
	}
	if apiErr.Status != http.StatusTooManyRequests {
		t.Fatalf("status=%d want=429", apiErr.Status)
	}
}

func TestAnalyzeMarket_EmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "secret", "")
	if _, err := c.AnalyzeMarket(context.Background(), Request{Question: "q"}); err == nil {
		t.Fatalf("empty completion accepted")
	}
}

func TestMergeSources(t *testing.T) {
	got := mergeSources([]string{"a", " b ", ""}, []string{"b", "c"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got=%v want=%v", got, want)
		}
	}
}
