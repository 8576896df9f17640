package groq

import (
	"context"
	"slices"
	"testing"

	"github.com/cadencehq/cadence/core/llms"
)

func TestToMessagesGroupsToolTurns(t *testing.T) {
	turns := []llms.Turn{
		{Role: llms.TurnRoleSystem, Content: "be brief"},
		{Role: llms.TurnRoleUser, Content: "weather in Paris and London?"},
		{Role: llms.TurnRoleTool, Content: "sunny", ToolCallID: "call-1", ToolCalls: []llms.ToolCall{
			{ID: "call-1", Name: "weather", Arguments: `{"location":"Paris"}`, Response: "sunny"},
		}},
		{Role: llms.TurnRoleTool, Content: "rainy", ToolCallID: "call-2", ToolCalls: []llms.ToolCall{
			{ID: "call-2", Name: "weather", Arguments: `{"location":"London"}`, Response: "rainy"},
		}},
		{Role: llms.TurnRoleAssistant, Content: "Sunny in Paris, rainy in London."},
	}

	messages := toMessages(turns)

	roles := make([]messageRole, 0, len(messages))
	for _, m := range messages {
		roles = append(roles, m.Role)
	}
	expected := []messageRole{
		messageRoleSystem,
		messageRoleUser,
		messageRoleAssistant,
		messageRoleTool,
		messageRoleTool,
		messageRoleAssistant,
	}
	if !slices.Equal(roles, expected) {
		t.Fatalf("unexpected role sequence: %v", roles)
	}

	request := messages[2]
	if len(request.ToolCalls) != 2 {
		t.Fatalf("expected both calls grouped under one assistant message, got %d", len(request.ToolCalls))
	}
	if request.ToolCalls[0].ID != "call-1" || request.ToolCalls[1].ID != "call-2" {
		t.Errorf("tool calls out of order: %+v", request.ToolCalls)
	}
	if request.ToolCalls[0].Function.Name != "weather" {
		t.Errorf("unexpected function name: %s", request.ToolCalls[0].Function.Name)
	}

	if messages[3].ToolCallID != "call-1" || messages[3].Content != "sunny" {
		t.Errorf("unexpected first tool result: %+v", messages[3])
	}
	if messages[4].ToolCallID != "call-2" || messages[4].Content != "rainy" {
		t.Errorf("unexpected second tool result: %+v", messages[4])
	}
}

func TestToToolsRequiredList(t *testing.T) {
	tools := toTools([]llms.Tool{
		llms.NewTool("weather", "looks up weather",
			map[string]llms.ParameterBase{
				"location": {Type: "string", Description: "city name"},
				"units":    {Type: "string", Optional: true},
			},
			func(context.Context, struct{}) (string, error) { return "", nil }),
	})

	if len(tools) != 1 {
		t.Fatalf("expected one tool, got %d", len(tools))
	}

	function := tools[0].Function
	if function.Parameters.Type != "object" {
		t.Errorf("expected an object schema, got %s", function.Parameters.Type)
	}
	if !slices.Equal(function.Parameters.Required, []string{"location"}) {
		t.Errorf("unexpected required list: %v", function.Parameters.Required)
	}

	location, ok := function.Parameters.Properties["location"]
	if !ok {
		t.Fatal("expected the location property")
	}
	if location.Type != "string" || location.Description != "city name" {
		t.Errorf("unexpected location property: %+v", location)
	}
}

func TestDecodeToolCalls(t *testing.T) {
	decoded := decodeToolCalls([]toolCall{{
		ID:   "call-1",
		Type: "function",
		Function: toolCallFunction{
			Name:      "weather",
			Arguments: `{"location":"Paris"}`,
		},
	}})

	if len(decoded) != 1 {
		t.Fatalf("expected one call, got %d", len(decoded))
	}
	if decoded[0].Name != "weather" || decoded[0].Arguments != `{"location":"Paris"}` {
		t.Errorf("unexpected decoded call: %+v", decoded[0])
	}
}
