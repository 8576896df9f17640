package groq

import (
	"github.com/cadencehq/cadence/core/llms"
	"github.com/jinzhu/copier"
)

type message struct {
	Role       messageRole `json:"role"`
	Content    string      `json:"content"`
	ToolCallID string      `json:"tool_call_id,omitempty"`
	ToolCalls  []toolCall  `json:"tool_calls,omitempty"`
}

type messageRole string

const (
	messageRoleSystem    messageRole = "system"
	messageRoleUser      messageRole = "user"
	messageRoleAssistant messageRole = "assistant"
	messageRoleTool      messageRole = "tool"
)

type toolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function toolCallFunction `json:"function"`
}

type toolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool is the wire shape of a registered tool.
type Tool struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  toolParameters `json:"parameters"`
}

type toolParameters struct {
	Type       string                   `json:"type"`
	Properties map[string]toolParameter `json:"properties"`
	Required   []string                 `json:"required,omitempty"`
}

type toolParameter struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

func toTools(tools []llms.Tool) []Tool {
	var converted []Tool
	for _, tool := range tools {
		var properties map[string]toolParameter
		copier.Copy(&properties, tool.Parameters)

		var required []string
		for name, parameter := range tool.Parameters {
			if !parameter.Optional {
				required = append(required, name)
			}
		}

		converted = append(converted, Tool{
			Type: "function",
			Function: toolFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters: toolParameters{
					Type:       "object",
					Properties: properties,
					Required:   required,
				},
			},
		})
	}
	return converted
}

// toMessages flattens transcript turns into the chat completion wire shape.
// Consecutive tool turns are grouped under a single assistant tool_calls
// message followed by their results, the order the protocol expects.
func toMessages(turns []llms.Turn) []message {
	messages := []message{}

	for i := 0; i < len(turns); i++ {
		turn := turns[i]
		switch turn.Role {
		case llms.TurnRoleSystem:
			messages = append(messages, message{Role: messageRoleSystem, Content: turn.Content})

		case llms.TurnRoleUser:
			messages = append(messages, message{Role: messageRoleUser, Content: turn.Content})

		case llms.TurnRoleTool:
			request := message{Role: messageRoleAssistant}
			responses := []message{}
			for ; i < len(turns) && turns[i].Role == llms.TurnRoleTool; i++ {
				for _, call := range turns[i].ToolCalls {
					request.ToolCalls = append(request.ToolCalls, toolCall{
						ID:   call.ID,
						Type: "function",
						Function: toolCallFunction{
							Name:      call.Name,
							Arguments: call.Arguments,
						},
					})
					responses = append(responses, message{
						Role:       messageRoleTool,
						Content:    call.Response,
						ToolCallID: call.ID,
					})
				}
			}
			i--
			messages = append(messages, request)
			messages = append(messages, responses...)

		case llms.TurnRoleAssistant:
			messages = append(messages, message{Role: messageRoleAssistant, Content: turn.Content})
		}
	}

	return messages
}

type requestBody struct {
	Model      string    `json:"model"`
	Messages   []message `json:"messages"`
	Stream     bool      `json:"stream"`
	Tools      []Tool    `json:"tools,omitempty"`
	ToolChoice *string   `json:"tool_choice,omitempty"`
}

type responseBody struct {
	Choices []struct {
		Message struct {
			Content   string     `json:"content"`
			ToolCalls []toolCall `json:"tool_calls"`
		} `json:"message"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

type streamingResponseBody struct {
	Choices []struct {
		Delta struct {
			Content      string     `json:"content"`
			ToolCalls    []toolCall `json:"tool_calls"`
			FinishReason *string    `json:"finish_reason"`
		} `json:"delta"`
	} `json:"choices"`
}

func decodeToolCalls(calls []toolCall) []llms.ToolCall {
	var decoded []llms.ToolCall
	for _, call := range calls {
		decoded = append(decoded, llms.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return decoded
}
