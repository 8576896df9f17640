package pipeline

import (
	"sync"

	"github.com/cadencehq/cadence/core/llms"
	"github.com/google/uuid"
)

// Conversation is the ordered, append-only transcript of a session. The
// first turn is always the single seeded system turn; every later turn is
// appended in conversation order and never mutated.
type Conversation struct {
	mu    sync.RWMutex
	turns []llms.Turn
}

func newConversation(systemPrompt string) *Conversation {
	return &Conversation{
		turns: []llms.Turn{{
			ID:      uuid.NewString(),
			Role:    llms.TurnRoleSystem,
			Content: systemPrompt,
		}},
	}
}

// Snapshot returns a point-in-time copy of the transcript.
func (c *Conversation) Snapshot() []llms.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()

	turns := make([]llms.Turn, len(c.turns))
	copy(turns, c.turns)
	return turns
}

// Len reports the number of turns, including the system turn.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.turns)
}

func (c *Conversation) appendUser(content string) llms.Turn {
	return c.append(llms.Turn{Role: llms.TurnRoleUser, Content: content})
}

func (c *Conversation) appendAssistant(content string, toolCalls []llms.ToolCall) llms.Turn {
	return c.append(llms.Turn{Role: llms.TurnRoleAssistant, Content: content, ToolCalls: toolCalls})
}

// appendTool records one executed (or failed) tool call. The turn carries
// the full call so the request metadata survives alongside the result.
func (c *Conversation) appendTool(call llms.ToolCall, content string) llms.Turn {
	call.Response = content
	return c.append(llms.Turn{
		Role:       llms.TurnRoleTool,
		Content:    content,
		ToolCallID: call.ID,
		ToolCalls:  []llms.ToolCall{call},
	})
}

func (c *Conversation) append(turn llms.Turn) llms.Turn {
	turn.ID = uuid.NewString()

	c.mu.Lock()
	c.turns = append(c.turns, turn)
	c.mu.Unlock()

	return turn
}
