package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/oventide/pizzabot/internal/domain"
	"github.com/oventide/pizzabot/internal/tools"
)

// BuildPrompt renders the full thread history into the single prompt
// string the completion backend receives. It is a pure function of its
// inputs: the responder's instructions, each message as "<Role>:
// <content>" with call/result annotations on the following lines, the
// function catalog, and a trailing "Assistant: " cursor.
func BuildPrompt(instructions string, history []domain.Message, catalog []*tools.Function) string {
	var b strings.Builder

	b.WriteString(strings.TrimSpace(instructions))
	b.WriteString("\n\nConversation:\n")

	for _, msg := range history {
		fmt.Fprintf(&b, "%s: %s\n", roleLabel(msg.Role), msg.Content)
		if msg.FunctionCall != nil {
			args, err := json.Marshal(msg.FunctionCall.Arguments)
			if err != nil {
				args = []byte("{}")
			}
			fmt.Fprintf(&b, "[function call] %s(%s)\n", msg.FunctionCall.Name, args)
		}
		if msg.FunctionResult != nil {
			fmt.Fprintf(&b, "[function result] %s: %s\n", msg.FunctionResult.Name, msg.FunctionResult.Result)
		}
	}

	b.WriteString("\nAvailable functions:\n")
	for _, fn := range catalog {
		fmt.Fprintf(&b, "- %s: %s\n", fn.Name, fn.Description)
	}

	b.WriteString("\nAssistant: ")
	return b.String()
}

func roleLabel(role domain.Role) string {
	switch role {
	case domain.RoleUser:
		return "User"
	case domain.RoleAssistant:
		return "Assistant"
	case domain.RoleSystem:
		return "System"
	case domain.RoleFunction:
		return "Function"
	}
	return "User"
}
