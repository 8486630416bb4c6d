//go:build !integration

package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leorestored/leo-restored/internal/domain/ports/adapter"
)

func TestAnthropicAdapter_Generate(t *testing.T) {
	t.Run("should send the persona as the system field and parse the reply", func(t *testing.T) {
		var gotReq struct {
			Model     string            `json:"model"`
			MaxTokens int               `json:"max_tokens"`
			System    string            `json:"system"`
			Messages  []adapter.Message `json:"messages"`
		}
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/messages" {
				t.Errorf("unexpected path %q", r.URL.Path)
			}
			if r.Header.Get("x-api-key") != "key-1" {
				t.Errorf("missing api key header")
			}
			if r.Header.Get("anthropic-version") == "" {
				t.Errorf("missing anthropic-version header")
			}
			_ = json.NewDecoder(r.Body).Decode(&gotReq)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"meow, hello!"}]}`))
		}))
		defer ts.Close()

		a, err := NewAnthropicAdapter("key-1", "claude-3-5-haiku-20241022")
		if err != nil {
			t.Fatal(err)
		}
		a.base = ts.URL

		reply, err := a.Generate(context.Background(), "you are leo",
			[]adapter.Message{{Role: "user", Content: "hi"}}, 200)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if reply != "meow, hello!" {
			t.Errorf("unexpected reply %q", reply)
		}
		if gotReq.System != "you are leo" {
			t.Errorf("expected system prompt in the top-level field, got %q", gotReq.System)
		}
		if gotReq.MaxTokens != 200 {
			t.Errorf("expected max_tokens 200, got %d", gotReq.MaxTokens)
		}
		if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
			t.Errorf("unexpected messages %+v", gotReq.Messages)
		}
	})

	t.Run("should report non-2xx statuses", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		a, _ := NewAnthropicAdapter("key-1", "")
		a.base = ts.URL
		if _, err := a.Generate(context.Background(), "sys", nil, 100); err == nil {
			t.Error("expected an error for a 500 response")
		}
	})
}

func TestAnthropicAdapter_CountTokens(t *testing.T) {
	a, _ := NewAnthropicAdapter("key-1", "")
	n, err := a.CountTokens(context.Background(),
		[]adapter.Message{{Role: "user", Content: "abcdefgh"}})
	if err != nil {
		t.Fatal(err)
	}
	// chars/4 estimate
	if n != 2 {
		t.Errorf("expected 2 tokens for 8 chars, got %d", n)
	}
}
