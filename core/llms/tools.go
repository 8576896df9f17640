package llms

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/invopop/jsonschema"
)

// ParameterBase describes a single named tool parameter.
type ParameterBase struct {
	// Type is the primitive JSON kind: "string", "number", "integer" or
	// "boolean".
	Type        string
	Description string
	// Optional marks parameters that may be omitted. The zero value makes a
	// parameter required.
	Optional bool
}

// Tool is a callable function exposed to the model: a unique name, a
// natural-language description used for selection, a parameter descriptor
// map, and an execution handler.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]ParameterBase

	execute func(ctx context.Context, arguments string) (string, error)
}

// Execute runs the tool handler with raw JSON arguments. The context bounds
// the handler: cancelling it must abort any in-flight work.
func (t Tool) Execute(ctx context.Context, arguments string) (string, error) {
	if t.execute == nil {
		return "", fmt.Errorf("tool %q has no handler", t.Name)
	}
	return t.execute(ctx, arguments)
}

// NewTool creates a tool whose handler receives its arguments decoded into T.
func NewTool[T any](name string, description string, parameters map[string]ParameterBase, execute func(context.Context, T) (string, error)) Tool {
	return Tool{
		Name:        name,
		Description: description,
		Parameters:  parameters,
		execute: func(ctx context.Context, arguments string) (string, error) {
			var params T
			if arguments != "" {
				if err := json.Unmarshal([]byte(arguments), &params); err != nil {
					return "", fmt.Errorf("failed to decode arguments for tool %q: %w", name, err)
				}
			}
			return execute(ctx, params)
		},
	}
}

// NewToolFor creates a tool whose parameter descriptors are derived from T's
// json-tagged fields, so the declared schema cannot drift from what the
// handler decodes.
func NewToolFor[T any](name string, description string, execute func(context.Context, T) (string, error)) Tool {
	var shape T
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&shape)

	parameters := map[string]ParameterBase{}
	if schema.Properties != nil {
		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			parameters[pair.Key] = ParameterBase{
				Type:        pair.Value.Type,
				Description: pair.Value.Description,
				Optional:    !slices.Contains(schema.Required, pair.Key),
			}
		}
	}

	return NewTool(name, description, parameters, execute)
}
