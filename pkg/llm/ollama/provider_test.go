package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"dealagent-be/pkg/llm"
)

func TestChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}

		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Stream {
			t.Error("Chat must not request streaming")
		}
		if req.Model != "test-model" {
			t.Errorf("model = %q, want test-model", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("messages = %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: "hello back"},
			Done:    true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "test-model")
	got, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hello"}})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if got != "hello back" {
		t.Errorf("Chat() = %q, want %q", got, "hello back")
	}
}

func TestChatMapsModelRoleToAssistant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Messages[1].Role != "assistant" {
			t.Errorf("role = %q, want assistant", req.Messages[1].Role)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{Done: true})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "test-model")
	_, err := p.Chat(context.Background(), []llm.Message{
		{Role: "user", Content: "hi"},
		{Role: "model", Content: "previous reply"},
	})
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
}

func TestStreamYieldsFragmentsUntilDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream {
			t.Error("Stream must request streaming")
		}

		enc := json.NewEncoder(w)
		enc.Encode(ollamaChatResponse{Message: ollamaMessage{Content: "Hel"}})
		enc.Encode(ollamaChatResponse{Message: ollamaMessage{Content: "lo"}})
		enc.Encode(ollamaChatResponse{Message: ollamaMessage{Content: ""}, Done: true})
		// Anything after done must never be surfaced.
		fmt.Fprintln(w, `{"message":{"content":"garbage"}}`)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "test-model")

	var got string
	for tok, err := range p.Stream(context.Background(), "say hello") {
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		got += tok
	}
	if got != "Hello" {
		t.Errorf("streamed content = %q, want %q", got, "Hello")
	}
}

func TestStreamSurfacesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "missing-model")

	var streamErr error
	for _, err := range p.Stream(context.Background(), "hello") {
		if err != nil {
			streamErr = err
		}
	}
	if streamErr == nil {
		t.Fatal("expected an error from the stream")
	}
}

func TestStreamStopsWhenConsumerBreaks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		enc := json.NewEncoder(w)
		for i := 0; i < 100; i++ {
			enc.Encode(ollamaChatResponse{Message: ollamaMessage{Content: "x"}})
		}
		enc.Encode(ollamaChatResponse{Done: true})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "test-model")

	seen := 0
	for _, err := range p.Stream(context.Background(), "hello") {
		if err != nil {
			t.Fatalf("stream error: %v", err)
		}
		seen++
		if seen == 3 {
			break
		}
	}
	if seen != 3 {
		t.Errorf("consumed %d fragments, want 3", seen)
	}
}
