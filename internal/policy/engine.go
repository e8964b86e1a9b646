// Package policy gates function invocations through an OPA rego
// policy. A denied call never reaches the function; the responder folds
// the denial into the conversation like any other tool failure.
package policy

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// Decision values returned by the policy.
const (
	DecisionAllow = "allow"
	DecisionDeny  = "deny"
)

// Input is the evaluation input for one function invocation.
type Input struct {
	Function  string                 `json:"function"`
	Args      map[string]interface{} `json:"args"`
	Responder string                 `json:"responder"`
}

// Engine is the OPA policy engine.
type Engine struct {
	query rego.PreparedEvalQuery
}

// NewEngine creates a policy engine from the given rego module.
func NewEngine(ctx context.Context, policyContent string) (*Engine, error) {
	r := rego.New(
		rego.Query("data.function_policy.decision"),
		rego.Module("function_policy.rego", policyContent),
	)

	query, err := r.PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare rego: %w", err)
	}

	return &Engine{query: query}, nil
}

// Evaluate returns the policy decision for one invocation. Unknown or
// missing results default to allow; the policy module is expected to
// define its own default.
func (e *Engine) Evaluate(ctx context.Context, input Input) (string, error) {
	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return "", fmt.Errorf("failed to evaluate policy: %w", err)
	}

	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return DecisionAllow, nil
	}

	if s, ok := results[0].Expressions[0].Value.(string); ok {
		return s, nil
	}
	return DecisionAllow, nil
}

// DefaultPolicy allows everything except order mutations issued by the
// menu responder, which has no business placing or canceling orders.
const DefaultPolicy = `
package function_policy

default decision = "allow"

decision = "deny" {
	input.responder == "menu"
	input.function == "place_order"
}

decision = "deny" {
	input.responder == "menu"
	input.function == "cancel_order"
}
`
