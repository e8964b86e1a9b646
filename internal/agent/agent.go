// Package agent implements the responders: instruction-bound units
// that turn a thread history into a reply, invoking registered
// functions along the way.
package agent

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/oventide/pizzabot/internal/adapter/llm"
	"github.com/oventide/pizzabot/internal/domain"
	"github.com/oventide/pizzabot/internal/policy"
	"github.com/oventide/pizzabot/internal/thread"
	"github.com/oventide/pizzabot/internal/tools"
)

// DefaultMaxSteps bounds the function-calling loop. A model that keeps
// emitting calls without ever producing a plain reply fails closed with
// an apology instead of looping forever.
const DefaultMaxSteps = 8

const (
	backendFailureReply  = "I'm sorry, I'm having trouble responding right now. Please try again in a moment."
	stepLimitReply       = "I'm sorry, I couldn't complete that request. Please try again or rephrase it."
	unknownFunctionReply = "Error: Function '%s' not found."
	functionFailureReply = "Error executing function '%s': %v"
)

// Agent is a named responder bound to a set of instructions.
type Agent struct {
	ID           string
	Name         string
	Instructions string

	registry *tools.Registry
	client   llm.CompletionClient
	policies *policy.Engine
	options  *llm.CompletionOptions
	maxSteps int
}

// Config assembles an Agent.
type Config struct {
	ID           string
	Name         string
	Instructions string
	Registry     *tools.Registry
	Client       llm.CompletionClient
	Policy       *policy.Engine
	Options      *llm.CompletionOptions
	MaxSteps     int
}

// New creates an Agent from the config, applying DefaultMaxSteps when
// no bound is set.
func New(cfg Config) *Agent {
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	return &Agent{
		ID:           cfg.ID,
		Name:         cfg.Name,
		Instructions: cfg.Instructions,
		registry:     cfg.Registry,
		client:       cfg.Client,
		policies:     cfg.Policy,
		options:      cfg.Options,
		maxSteps:     maxSteps,
	}
}

// Result is the outcome of one responder turn: the final assistant
// message plus every call and result recorded along the way, in order.
type Result struct {
	Message         domain.Message
	FunctionCalls   []domain.FunctionCall
	FunctionResults []domain.FunctionResult
}

// ProcessMessage runs one turn against the thread. The incoming text is
// appended as a user message; after a function result is recorded the
// loop re-enters with empty text so the model sees the result and can
// produce its final answer. Backend and function failures are folded
// into conversation text and never surface as errors.
func (a *Agent) ProcessMessage(ctx context.Context, th *thread.Thread, text string) *Result {
	result := &Result{}

	for step := 0; step < a.maxSteps; step++ {
		// Empty text signals re-entry after a function result.
		if text != "" {
			th.Append(a.newMessage(domain.RoleUser, text))
			text = ""
		}

		prompt := BuildPrompt(a.Instructions, th.Messages(), a.registry.List())

		reply, err := a.client.Complete(ctx, prompt, a.options)
		if err != nil {
			log.Printf("WARN: completion backend failed for responder %s: %v", a.ID, err)
			return a.finish(th, result, backendFailureReply)
		}

		call, ok := ParseFunctionCall(reply)
		if !ok {
			return a.finish(th, result, reply)
		}

		callMsg := a.newMessage(domain.RoleAssistant, "")
		callMsg.FunctionCall = &call
		th.Append(callMsg)
		result.FunctionCalls = append(result.FunctionCalls, call)

		resultText := a.invoke(ctx, call)
		fnResult := domain.FunctionResult{Name: call.Name, Result: resultText}
		resultMsg := a.newMessage(domain.RoleFunction, "")
		resultMsg.FunctionResult = &fnResult
		th.Append(resultMsg)
		result.FunctionResults = append(result.FunctionResults, fnResult)
	}

	log.Printf("WARN: responder %s hit the step limit without a final reply", a.ID)
	return a.finish(th, result, stepLimitReply)
}

// invoke resolves and runs one function call, absorbing every failure
// mode into result text.
func (a *Agent) invoke(ctx context.Context, call domain.FunctionCall) string {
	fn, ok := a.registry.Resolve(call.Name)
	if !ok {
		return fmt.Sprintf(unknownFunctionReply, call.Name)
	}

	if a.policies != nil {
		decision, err := a.policies.Evaluate(ctx, policy.Input{
			Function:  call.Name,
			Args:      call.Arguments,
			Responder: a.ID,
		})
		if err != nil {
			log.Printf("WARN: policy evaluation failed for %s: %v", call.Name, err)
		} else if decision != policy.DecisionAllow {
			return fmt.Sprintf(functionFailureReply, call.Name, "blocked by policy")
		}
	}

	text, err := a.safeInvoke(ctx, fn, call.Arguments)
	if err != nil {
		return fmt.Sprintf(functionFailureReply, call.Name, err)
	}
	return text
}

// safeInvoke shields the loop from panicking executables.
func (a *Agent) safeInvoke(ctx context.Context, fn *tools.Function, args map[string]interface{}) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return fn.Invoke(ctx, args)
}

func (a *Agent) finish(th *thread.Thread, result *Result, content string) *Result {
	final := a.newMessage(domain.RoleAssistant, content)
	final.AuthorName = a.Name
	th.Append(final)
	result.Message = final
	return result
}

func (a *Agent) newMessage(role domain.Role, content string) domain.Message {
	return domain.Message{
		MessageID: "msg_" + uuid.New().String()[:8],
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}
