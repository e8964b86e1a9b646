package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oventide/pizzabot/internal/adapter/llm"
	"github.com/oventide/pizzabot/internal/domain"
	"github.com/oventide/pizzabot/internal/policy"
	"github.com/oventide/pizzabot/internal/thread"
	"github.com/oventide/pizzabot/internal/tools"
)

type failingClient struct{}

func (failingClient) Complete(ctx context.Context, prompt string, opts *llm.CompletionOptions) (string, error) {
	return "", errors.New("backend down")
}

func newTestRegistry(t *testing.T) *tools.Registry {
	t.Helper()
	r := tools.NewRegistry()
	r.MustRegister(&tools.Function{
		Name:        "ping",
		Description: "Replies with pong.",
		Run: func(ctx context.Context, ec *tools.ExecutionContext) error {
			ec.AddResult("pong")
			return nil
		},
	})
	r.MustRegister(&tools.Function{
		Name:        "boom",
		Description: "Always fails.",
		Run: func(ctx context.Context, ec *tools.ExecutionContext) error {
			return errors.New("kaput")
		},
	})
	return r
}

func newTestAgent(client llm.CompletionClient, registry *tools.Registry, maxSteps int) *Agent {
	return New(Config{
		ID:           "menu",
		Name:         "MenuAgent",
		Instructions: "You help with menus.",
		Registry:     registry,
		Client:       client,
		MaxSteps:     maxSteps,
	})
}

func TestProcessMessagePlainReply(t *testing.T) {
	store := thread.NewStore()
	th, _ := store.GetOrCreate("")
	a := newTestAgent(llm.NewMockClient("We have five pizzas."), newTestRegistry(t), 0)

	result := a.ProcessMessage(context.Background(), th, "what pizzas do you have?")

	if result.Message.Content != "We have five pizzas." {
		t.Fatalf("unexpected reply: %q", result.Message.Content)
	}
	if result.Message.AuthorName != "MenuAgent" {
		t.Fatalf("final message must carry the author name, got %q", result.Message.AuthorName)
	}
	if len(result.FunctionCalls) != 0 || len(result.FunctionResults) != 0 {
		t.Fatalf("expected no calls, got %d/%d", len(result.FunctionCalls), len(result.FunctionResults))
	}
	// user + assistant
	if th.Len() != 2 {
		t.Fatalf("expected 2 thread messages, got %d", th.Len())
	}
}

func TestProcessMessageWithFunctionCall(t *testing.T) {
	store := thread.NewStore()
	th, _ := store.GetOrCreate("")
	a := newTestAgent(llm.NewMockClient(
		`function: ping({})`,
		"The backend says pong.",
	), newTestRegistry(t), 0)

	result := a.ProcessMessage(context.Background(), th, "ping please")

	if result.Message.Content != "The backend says pong." {
		t.Fatalf("unexpected reply: %q", result.Message.Content)
	}
	if len(result.FunctionCalls) != 1 || result.FunctionCalls[0].Name != "ping" {
		t.Fatalf("unexpected calls: %+v", result.FunctionCalls)
	}
	if len(result.FunctionResults) != 1 || result.FunctionResults[0].Result != "pong" {
		t.Fatalf("unexpected results: %+v", result.FunctionResults)
	}

	// user, assistant call, function result, assistant reply
	msgs := th.Messages()
	if len(msgs) != 4 {
		t.Fatalf("expected 4 thread messages, got %d", len(msgs))
	}
	if msgs[1].Role != domain.RoleAssistant || msgs[1].FunctionCall == nil {
		t.Fatalf("second message should record the call: %+v", msgs[1])
	}
	if msgs[2].Role != domain.RoleFunction || msgs[2].FunctionResult == nil {
		t.Fatalf("third message should record the result: %+v", msgs[2])
	}
}

func TestProcessMessageUnknownFunction(t *testing.T) {
	store := thread.NewStore()
	th, _ := store.GetOrCreate("")
	a := newTestAgent(llm.NewMockClient(
		`function: nope({})`,
		"Sorry, I could not do that.",
	), newTestRegistry(t), 0)

	result := a.ProcessMessage(context.Background(), th, "do the thing")

	if len(result.FunctionResults) != 1 {
		t.Fatalf("expected one result, got %d", len(result.FunctionResults))
	}
	if result.FunctionResults[0].Result != "Error: Function 'nope' not found." {
		t.Fatalf("unexpected result text: %q", result.FunctionResults[0].Result)
	}
	if result.Message.Content != "Sorry, I could not do that." {
		t.Fatalf("unexpected reply: %q", result.Message.Content)
	}
}

func TestProcessMessageFunctionFailure(t *testing.T) {
	store := thread.NewStore()
	th, _ := store.GetOrCreate("")
	a := newTestAgent(llm.NewMockClient(
		`function: boom({})`,
		"That did not work.",
	), newTestRegistry(t), 0)

	result := a.ProcessMessage(context.Background(), th, "explode")

	if got := result.FunctionResults[0].Result; got != "Error executing function 'boom': kaput" {
		t.Fatalf("unexpected result text: %q", got)
	}
}

func TestProcessMessageBackendFailure(t *testing.T) {
	store := thread.NewStore()
	th, _ := store.GetOrCreate("")
	a := newTestAgent(failingClient{}, newTestRegistry(t), 0)

	result := a.ProcessMessage(context.Background(), th, "hello")

	if !strings.Contains(result.Message.Content, "trouble responding") {
		t.Fatalf("backend failure should produce an apology, got %q", result.Message.Content)
	}
}

func TestProcessMessageStepLimit(t *testing.T) {
	store := thread.NewStore()
	th, _ := store.GetOrCreate("")
	a := newTestAgent(llm.NewMockClient(
		`function: ping({})`,
		`function: ping({})`,
	), newTestRegistry(t), 2)

	result := a.ProcessMessage(context.Background(), th, "loop forever")

	if len(result.FunctionCalls) != 2 {
		t.Fatalf("expected 2 calls before the limit, got %d", len(result.FunctionCalls))
	}
	if !strings.Contains(result.Message.Content, "couldn't complete") {
		t.Fatalf("step limit should produce an apology, got %q", result.Message.Content)
	}
}

func TestProcessMessagePolicyDeny(t *testing.T) {
	engine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	registry := newTestRegistry(t)
	registry.MustRegister(&tools.Function{
		Name:        "place_order",
		Description: "Places an order.",
		Run: func(ctx context.Context, ec *tools.ExecutionContext) error {
			ec.AddResult("placed")
			return nil
		},
	})

	a := New(Config{
		ID:       "menu",
		Name:     "MenuAgent",
		Registry: registry,
		Client: llm.NewMockClient(
			`function: place_order({"pizza_ids": "margherita", "quantities": "1"})`,
			"I cannot place orders.",
		),
		Policy: engine,
	})

	store := thread.NewStore()
	th, _ := store.GetOrCreate("")
	result := a.ProcessMessage(context.Background(), th, "order a margherita from the menu desk")

	if got := result.FunctionResults[0].Result; got != "Error executing function 'place_order': blocked by policy" {
		t.Fatalf("unexpected result text: %q", got)
	}
}
