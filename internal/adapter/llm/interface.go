// Package llm provides an abstraction for the text-completion backend.
package llm

import "context"

// CompletionOptions tunes a single completion call. Every field is
// optional; zero values fall back to the documented defaults applied by
// the client (max tokens 1024, temperature 0.7, top-p 1.0, both
// penalties 0, no stop sequences).
type CompletionOptions struct {
	MaxTokens        int
	Temperature      *float64
	TopP             *float64
	PresencePenalty  *float64
	FrequencyPenalty *float64
	StopSequences    []string
}

// CompletionClient defines the single operation the responders need
// from the language backend.
type CompletionClient interface {
	// Complete sends the prompt and returns the raw reply text.
	Complete(ctx context.Context, prompt string, opts *CompletionOptions) (string, error)
}

// Ensure Client implements CompletionClient.
var _ CompletionClient = (*Client)(nil)
