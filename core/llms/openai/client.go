// Package openai provides a Responder backed by any OpenAI-compatible chat
// completions API through the go-openai client.
package openai

import (
	"context"
	"fmt"

	"github.com/cadencehq/cadence/core/llms"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel/attribute"
)

const defaultModel = openai.GPT4oMini

type Client struct {
	client *openai.Client
	model  string
}

type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL string
	model   string
}

// WithBaseURL points the client at an OpenAI-compatible endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *clientConfig) {
		c.baseURL = baseURL
	}
}

// WithModel overrides the default model.
func WithModel(model string) ClientOption {
	return func(c *clientConfig) {
		c.model = model
	}
}

func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key not found")
	}

	config := clientConfig{model: defaultModel}
	for _, opt := range opts {
		opt(&config)
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if config.baseURL != "" {
		clientConfig.BaseURL = config.baseURL
	}

	return &Client{client: openai.NewClientWithConfig(clientConfig), model: config.model}, nil
}

// Generate runs one chat completion over the transcript.
func (c *Client) Generate(ctx context.Context, turns []llms.Turn, tools []llms.Tool) (*llms.Response, error) {
	ctx, span := tracer.Start(ctx, "prompt llm")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", c.model))

	request := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toMessages(turns),
		Tools:    toTools(tools),
	}

	response, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		err = fmt.Errorf("chat completion failed: %w", err)
		span.RecordError(err)
		return nil, err
	}
	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := response.Choices[0]
	var toolCalls []llms.ToolCall
	for _, call := range choice.Message.ToolCalls {
		toolCalls = append(toolCalls, llms.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}

	return &llms.Response{Content: choice.Message.Content, ToolCalls: toolCalls}, nil
}

func toMessages(turns []llms.Turn) []openai.ChatCompletionMessage {
	messages := []openai.ChatCompletionMessage{}

	for i := 0; i < len(turns); i++ {
		turn := turns[i]
		switch turn.Role {
		case llms.TurnRoleSystem:
			messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: turn.Content})

		case llms.TurnRoleUser:
			messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: turn.Content})

		case llms.TurnRoleTool:
			request := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant}
			responses := []openai.ChatCompletionMessage{}
			for ; i < len(turns) && turns[i].Role == llms.TurnRoleTool; i++ {
				for _, call := range turns[i].ToolCalls {
					request.ToolCalls = append(request.ToolCalls, openai.ToolCall{
						ID:   call.ID,
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      call.Name,
							Arguments: call.Arguments,
						},
					})
					responses = append(responses, openai.ChatCompletionMessage{
						Role:       openai.ChatMessageRoleTool,
						Content:    call.Response,
						ToolCallID: call.ID,
					})
				}
			}
			i--
			messages = append(messages, request)
			messages = append(messages, responses...)

		case llms.TurnRoleAssistant:
			messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: turn.Content})
		}
	}

	return messages
}

func toTools(tools []llms.Tool) []openai.Tool {
	var converted []openai.Tool
	for _, tool := range tools {
		properties := map[string]map[string]string{}
		var required []string
		for name, parameter := range tool.Parameters {
			property := map[string]string{"type": parameter.Type}
			if parameter.Description != "" {
				property["description"] = parameter.Description
			}
			properties[name] = property
			if !parameter.Optional {
				required = append(required, name)
			}
		}

		converted = append(converted, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters: map[string]any{
					"type":       "object",
					"properties": properties,
					"required":   required,
				},
			},
		})
	}
	return converted
}
