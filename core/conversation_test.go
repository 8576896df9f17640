package pipeline

import (
	"testing"

	"github.com/cadencehq/cadence/core/llms"
)

func TestConversationSeedsSystemTurn(t *testing.T) {
	conversation := newConversation("be brief")

	turns := conversation.Snapshot()
	if len(turns) != 1 {
		t.Fatalf("expected a single seeded turn, got %d", len(turns))
	}
	if turns[0].Role != llms.TurnRoleSystem || turns[0].Content != "be brief" {
		t.Errorf("unexpected system turn: %+v", turns[0])
	}
	if turns[0].ID == "" {
		t.Error("expected the system turn to carry an id")
	}
}

func TestConversationAppendsInOrder(t *testing.T) {
	conversation := newConversation("system")

	conversation.appendUser("what's the weather")
	conversation.appendTool(llms.ToolCall{ID: "call-1", Name: "weather", Arguments: `{"location":"Ljubljana"}`}, "sunny")
	conversation.appendAssistant("It's sunny.", nil)

	turns := conversation.Snapshot()
	roles := []llms.TurnRole{llms.TurnRoleSystem, llms.TurnRoleUser, llms.TurnRoleTool, llms.TurnRoleAssistant}
	if len(turns) != len(roles) {
		t.Fatalf("expected %d turns, got %d", len(roles), len(turns))
	}
	for i, role := range roles {
		if turns[i].Role != role {
			t.Errorf("turn %d: expected role %s, got %s", i, role, turns[i].Role)
		}
	}

	toolTurn := turns[2]
	if toolTurn.ToolCallID != "call-1" || toolTurn.Content != "sunny" {
		t.Errorf("unexpected tool turn: %+v", toolTurn)
	}
	if len(toolTurn.ToolCalls) != 1 || toolTurn.ToolCalls[0].Response != "sunny" {
		t.Errorf("expected the full call recorded on the tool turn, got %+v", toolTurn.ToolCalls)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	conversation := newConversation("system")
	conversation.appendUser("hello")

	snapshot := conversation.Snapshot()
	snapshot[0].Content = "mutated"

	if conversation.Snapshot()[0].Content != "system" {
		t.Error("mutating a snapshot must not affect the transcript")
	}
}
