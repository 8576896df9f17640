package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cadencehq/cadence/core/llms"
)

type lookupParams struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

func lookupTool(invocations *atomic.Int64) llms.Tool {
	return llms.NewTool("lookup", "looks something up",
		map[string]llms.ParameterBase{
			"query": {Type: "string"},
			"limit": {Type: "integer", Optional: true},
		},
		func(_ context.Context, params lookupParams) (string, error) {
			if invocations != nil {
				invocations.Add(1)
			}
			return "result for " + params.Query, nil
		})
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	if _, err := NewToolRegistry(lookupTool(nil), lookupTool(nil)); err == nil {
		t.Error("expected duplicate names to be rejected")
	}
}

func TestInvokeRunsMatchingArguments(t *testing.T) {
	var invocations atomic.Int64
	registry, err := NewToolRegistry(lookupTool(&invocations))
	if err != nil {
		t.Fatalf("failed to build the registry: %v", err)
	}

	response, err := registry.Invoke(context.Background(), llms.ToolCall{
		ID:        "call-1",
		Name:      "lookup",
		Arguments: `{"query":"weather in Ljubljana","limit":3}`,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response != "result for weather in Ljubljana" {
		t.Errorf("unexpected response: %q", response)
	}
	if invocations.Load() != 1 {
		t.Errorf("expected one handler invocation, got %d", invocations.Load())
	}
}

func TestInvokeValidationNeverReachesHandler(t *testing.T) {
	cases := []struct {
		name      string
		arguments string
		parameter string
	}{
		{name: "missing required", arguments: `{"limit":3}`, parameter: "query"},
		{name: "wrong type", arguments: `{"query":7}`, parameter: "query"},
		{name: "fractional integer", arguments: `{"query":"x","limit":1.5}`, parameter: "limit"},
		{name: "undeclared parameter", arguments: `{"query":"x","verbose":true}`, parameter: "verbose"},
		{name: "not an object", arguments: `["x"]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var invocations atomic.Int64
			registry, err := NewToolRegistry(lookupTool(&invocations))
			if err != nil {
				t.Fatalf("failed to build the registry: %v", err)
			}

			_, err = registry.Invoke(context.Background(), llms.ToolCall{
				ID:        "call-1",
				Name:      "lookup",
				Arguments: tc.arguments,
			})

			var argumentErr *ToolArgumentError
			if !errors.As(err, &argumentErr) {
				t.Fatalf("expected a ToolArgumentError, got %v", err)
			}
			if argumentErr.Parameter != tc.parameter {
				t.Errorf("expected parameter %q flagged, got %q", tc.parameter, argumentErr.Parameter)
			}
			if invocations.Load() != 0 {
				t.Errorf("handler ran %d times on invalid arguments", invocations.Load())
			}
		})
	}
}

func TestInvokeUnknownTool(t *testing.T) {
	registry, err := NewToolRegistry()
	if err != nil {
		t.Fatalf("failed to build the registry: %v", err)
	}

	_, err = registry.Invoke(context.Background(), llms.ToolCall{Name: "missing", Arguments: "{}"})

	var argumentErr *ToolArgumentError
	if !errors.As(err, &argumentErr) {
		t.Errorf("expected a ToolArgumentError for an unknown tool, got %v", err)
	}
}

func TestInvokeCancellationReachesHandler(t *testing.T) {
	blocking := llms.NewTool("blocking", "waits forever", nil,
		func(ctx context.Context, _ struct{}) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})
	registry, err := NewToolRegistry(blocking)
	if err != nil {
		t.Fatalf("failed to build the registry: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := registry.Invoke(ctx, llms.ToolCall{Name: "blocking", Arguments: "{}"})
		done <- err
	}()

	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected the cancellation surfaced, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancelling the context did not unblock the handler")
	}
}

type upstreamError struct{ status int }

func (e *upstreamError) Error() string   { return fmt.Sprintf("upstream returned %d", e.status) }
func (e *upstreamError) StatusCode() int { return e.status }

func TestInvokePreservesHandlerStatus(t *testing.T) {
	failing := llms.NewTool("failing", "always fails", nil,
		func(context.Context, struct{}) (string, error) {
			return "", &upstreamError{status: 502}
		})
	registry, err := NewToolRegistry(failing)
	if err != nil {
		t.Fatalf("failed to build the registry: %v", err)
	}

	_, err = registry.Invoke(context.Background(), llms.ToolCall{Name: "failing", Arguments: "{}"})

	var executionErr *ToolExecutionError
	if !errors.As(err, &executionErr) {
		t.Fatalf("expected a ToolExecutionError, got %v", err)
	}
	if executionErr.Status != 502 {
		t.Errorf("expected the upstream status preserved, got %d", executionErr.Status)
	}
}
