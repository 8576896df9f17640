package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/cadencehq/cadence/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ToolRegistry maps tool names to their parameter schema and handler. It is
// immutable after session start: tools are registered at construction and
// the set never changes mid-session.
type ToolRegistry struct {
	tools  []llms.Tool
	byName map[string]llms.Tool
}

// NewToolRegistry builds a registry from the given tools. Names must be
// unique.
func NewToolRegistry(tools ...llms.Tool) (*ToolRegistry, error) {
	registry := &ToolRegistry{byName: map[string]llms.Tool{}}
	for _, tool := range tools {
		if tool.Name == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if _, ok := registry.byName[tool.Name]; ok {
			return nil, fmt.Errorf("duplicate tool name: %s", tool.Name)
		}
		registry.byName[tool.Name] = tool
		registry.tools = append(registry.tools, tool)
	}
	return registry, nil
}

// Tools returns the registered tools in registration order.
func (r *ToolRegistry) Tools() []llms.Tool {
	if r == nil {
		return nil
	}

	tools := make([]llms.Tool, len(r.tools))
	copy(tools, r.tools)
	return tools
}

// Invoke validates the call's arguments against the tool's parameter schema
// and, only if they match, runs the handler. Validation failures yield a
// ToolArgumentError and never reach the handler; handler failures are
// wrapped in a ToolExecutionError with any HTTP status preserved.
func (r *ToolRegistry) Invoke(ctx context.Context, call llms.ToolCall) (string, error) {
	ctx, span := tracer.Start(ctx, "execute tool")
	defer span.End()
	span.SetAttributes(attribute.String("tool.name", call.Name))

	tool, ok := r.byName[call.Name]
	if !ok {
		err := &ToolArgumentError{Tool: call.Name, Reason: "tool not registered"}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	if err := validateArguments(tool, call.Arguments); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	response, err := tool.Execute(ctx, call.Arguments)
	if err != nil {
		executionErr := &ToolExecutionError{Tool: call.Name, Err: err}
		var statusErr interface{ StatusCode() int }
		if errors.As(err, &statusErr) {
			executionErr.Status = statusErr.StatusCode()
			span.SetAttributes(attribute.Int("tool.status_code", executionErr.Status))
		}
		span.RecordError(executionErr)
		span.SetStatus(codes.Error, executionErr.Error())
		return "", executionErr
	}

	return response, nil
}

func validateArguments(tool llms.Tool, arguments string) error {
	parsed := map[string]any{}
	if arguments != "" {
		if err := json.Unmarshal([]byte(arguments), &parsed); err != nil {
			return &ToolArgumentError{Tool: tool.Name, Reason: "arguments are not a JSON object"}
		}
	}

	for name, parameter := range tool.Parameters {
		value, present := parsed[name]
		if !present {
			if parameter.Optional {
				continue
			}
			return &ToolArgumentError{Tool: tool.Name, Parameter: name, Reason: "required parameter missing"}
		}

		if !matchesKind(value, parameter.Type) {
			return &ToolArgumentError{
				Tool:      tool.Name,
				Parameter: name,
				Reason:    fmt.Sprintf("expected %s, got %T", parameter.Type, value),
			}
		}
	}

	for name := range parsed {
		if _, ok := tool.Parameters[name]; !ok {
			return &ToolArgumentError{Tool: tool.Name, Parameter: name, Reason: "parameter not declared"}
		}
	}

	return nil
}

func matchesKind(value any, kind string) bool {
	switch kind {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number":
		_, ok := value.(float64)
		return ok
	case "integer":
		number, ok := value.(float64)
		return ok && number == math.Trunc(number)
	}
	return false
}
