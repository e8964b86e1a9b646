// Package tools provides the function registry the responders draw
// their callable capabilities from.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Parameter describes one declared argument of a function.
type Parameter struct {
	Name        string
	Description string
	Required    bool
	Default     string
}

// ExecutionContext is the ephemeral state of a single function
// invocation. It is created fresh per call, seeded from the call's
// arguments, and discarded afterwards.
type ExecutionContext struct {
	Variables map[string]string
	Results   []string
}

// NewExecutionContext creates an empty execution context.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{Variables: make(map[string]string)}
}

// Get returns the named variable, or "" when unset.
func (ec *ExecutionContext) Get(name string) string {
	return ec.Variables[name]
}

// Set assigns a variable.
func (ec *ExecutionContext) Set(name, value string) {
	ec.Variables[name] = value
}

// AddResult appends an output line. The last result becomes the
// function's reply text.
func (ec *ExecutionContext) AddResult(result string) {
	ec.Results = append(ec.Results, result)
}

// ResultText returns the last result if any were produced, otherwise a
// JSON serialization of the variable mapping.
func (ec *ExecutionContext) ResultText() string {
	if len(ec.Results) > 0 {
		return ec.Results[len(ec.Results)-1]
	}
	data, err := json.Marshal(ec.Variables)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// RunFunc executes a function against its invocation context.
type RunFunc func(ctx context.Context, ec *ExecutionContext) error

// Function is a named, parameterized capability a responder can invoke
// mid-turn. Immutable after registration.
type Function struct {
	Name        string
	Description string
	Parameters  []Parameter
	Run         RunFunc
}

// Invoke runs the function with a fresh execution context seeded from
// args, applying declared defaults and checking required parameters.
func (f *Function) Invoke(ctx context.Context, args map[string]interface{}) (string, error) {
	ec := NewExecutionContext()
	for name, value := range args {
		if s, ok := value.(string); ok {
			ec.Set(name, s)
		} else {
			ec.Set(name, fmt.Sprintf("%v", value))
		}
	}
	for _, p := range f.Parameters {
		if _, ok := ec.Variables[p.Name]; ok {
			continue
		}
		if p.Default != "" {
			ec.Set(p.Name, p.Default)
			continue
		}
		if p.Required {
			return "", fmt.Errorf("missing required parameter '%s'", p.Name)
		}
	}
	if f.Run == nil {
		return "", fmt.Errorf("function '%s' has no executable", f.Name)
	}
	if err := f.Run(ctx, ec); err != nil {
		return "", err
	}
	return ec.ResultText(), nil
}

// Registry stores functions keyed by qualified name.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]*Function
}

// NewRegistry creates an empty function registry.
func NewRegistry() *Registry {
	return &Registry{
		functions: make(map[string]*Function),
	}
}

// Register adds a function. Re-registering a name silently overwrites
// the previous entry; callers must avoid name collisions.
func (r *Registry) Register(fn *Function) error {
	if fn == nil {
		return fmt.Errorf("function is required")
	}
	if fn.Name == "" {
		return fmt.Errorf("function name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[fn.Name] = fn
	return nil
}

// MustRegister adds a function or panics.
func (r *Registry) MustRegister(fn *Function) {
	if err := r.Register(fn); err != nil {
		panic(err)
	}
}

// Resolve looks up a function by name.
func (r *Registry) Resolve(name string) (*Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[name]
	return fn, ok
}

// List returns all registered functions sorted by name, so prompt
// catalogs built from it are deterministic.
func (r *Registry) List() []*Function {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fns := make([]*Function, 0, len(r.functions))
	for _, fn := range r.functions {
		fns = append(fns, fn)
	}
	sort.Slice(fns, func(i, j int) bool { return fns[i].Name < fns[j].Name })
	return fns
}
