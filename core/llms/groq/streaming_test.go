package groq

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cadencehq/cadence/core/llms"
)

func TestStreamYieldsContentChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{
			`data: {"choices":[{"delta":{"content":"It's "}}]}`,
			`data: {"choices":[{"delta":{"content":"sunny."}}]}`,
			`data: [DONE]`,
		}
		for _, chunk := range chunks {
			w.Write([]byte(chunk + "\n\n"))
		}
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("failed to build the client: %v", err)
	}

	stream := client.GenerateStream(context.Background(), []llms.Turn{
		{Role: llms.TurnRoleUser, Content: "weather?"},
	}, nil)

	var content strings.Builder
	for chunk, err := range stream.Chunks(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		if contentChunk, ok := chunk.(llms.StreamContentChunk); ok {
			content.WriteString(contentChunk.Content())
		}
	}

	if content.String() != "It's sunny." {
		t.Errorf("unexpected assembled content: %q", content.String())
	}
}

func TestStreamYieldsToolCallChunks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		chunks := []string{
			`data: {"choices":[{"delta":{"tool_calls":[{"id":"call-1","type":"function","function":{"name":"weather","arguments":"{\"location\":\"Paris\"}"}}]}}]}`,
			`data: [DONE]`,
		}
		for _, chunk := range chunks {
			w.Write([]byte(chunk + "\n\n"))
		}
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("failed to build the client: %v", err)
	}

	stream := client.GenerateStream(context.Background(), []llms.Turn{
		{Role: llms.TurnRoleUser, Content: "weather in Paris?"},
	}, nil)

	var calls []llms.ToolCall
	for chunk, err := range stream.Chunks(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected stream error: %v", err)
		}
		if toolChunk, ok := chunk.(llms.StreamToolCallChunk); ok {
			calls = append(calls, toolChunk.ToolCall())
		}
	}

	if len(calls) != 1 {
		t.Fatalf("expected one tool call, got %d", len(calls))
	}
	if calls[0].Name != "weather" || calls[0].Arguments != `{"location":"Paris"}` {
		t.Errorf("unexpected call: %+v", calls[0])
	}
}

func TestStreamSurfacesHTTPErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("failed to build the client: %v", err)
	}

	stream := client.GenerateStream(context.Background(), []llms.Turn{
		{Role: llms.TurnRoleUser, Content: "hello"},
	}, nil)

	sawError := false
	for _, err := range stream.Chunks(context.Background()) {
		if err != nil {
			sawError = true
		}
	}
	if !sawError {
		t.Error("expected the stream to surface the HTTP error")
	}
}
