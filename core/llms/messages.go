package llms

// TurnRole describes who a transcript turn is from.
type TurnRole string

const (
	TurnRoleSystem    TurnRole = "system"
	TurnRoleUser      TurnRole = "user"
	TurnRoleAssistant TurnRole = "assistant"
	TurnRoleTool      TurnRole = "tool"
)

// Turn is a single role-tagged contribution to the conversation transcript.
type Turn struct {
	// ID uniquely identifies the turn within a session.
	ID   string
	Role TurnRole

	// Content is the content of the turn. In a user turn it is the
	// transcript, in an assistant turn the generated response, in a tool
	// turn the tool result (or error text).
	Content string

	// ToolCalls is the list of tool calls an assistant turn requested before
	// producing its content.
	ToolCalls []ToolCall

	// ToolCallID links a tool turn to the call it answers.
	ToolCallID string
}

// Response is a single response from an LLM. Either Content is the final
// assistant text, or ToolCalls carries the tool invocations the model
// requested before it can finish the turn.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// ToolCall is a structured tool invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string

	// Response is filled in once the call has been executed (or failed) and
	// is fed back to the model as a tool turn.
	Response string
}
