package agent

import (
	"strings"
	"testing"

	"github.com/oventide/pizzabot/internal/domain"
	"github.com/oventide/pizzabot/internal/tools"
)

func TestBuildPrompt(t *testing.T) {
	history := []domain.Message{
		{Role: domain.RoleUser, Content: "what pizzas do you have?"},
		{
			Role: domain.RoleAssistant,
			FunctionCall: &domain.FunctionCall{
				Name:      "get_pizzas",
				Arguments: map[string]interface{}{},
			},
		},
		{
			Role: domain.RoleFunction,
			FunctionResult: &domain.FunctionResult{
				Name:   "get_pizzas",
				Result: "Available Pizzas:\n- Margherita",
			},
		},
	}
	catalog := []*tools.Function{
		{Name: "get_pizzas", Description: "Get a list of all available pizzas from the menu."},
	}

	prompt := BuildPrompt("  You help with menus.  ", history, catalog)

	if !strings.HasPrefix(prompt, "You help with menus.\n\nConversation:\n") {
		t.Fatalf("unexpected prompt head: %q", prompt[:40])
	}
	if !strings.HasSuffix(prompt, "\nAssistant: ") {
		t.Fatalf("prompt must end with the assistant cursor: %q", prompt[len(prompt)-20:])
	}
	for _, want := range []string{
		"User: what pizzas do you have?\n",
		"[function call] get_pizzas({})\n",
		"[function result] get_pizzas: Available Pizzas:\n- Margherita\n",
		"\nAvailable functions:\n- get_pizzas: Get a list of all available pizzas from the menu.\n",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\nfull prompt:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptEmptyHistory(t *testing.T) {
	prompt := BuildPrompt("Instructions.", nil, nil)
	if !strings.Contains(prompt, "Conversation:\n") {
		t.Fatal("missing conversation section")
	}
	if !strings.Contains(prompt, "Available functions:\n") {
		t.Fatal("missing function catalog section")
	}
}
