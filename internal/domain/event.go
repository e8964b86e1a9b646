package domain

// EventType discriminates stream events on the wire.
type EventType string

const (
	EventTypeInit           EventType = "init"
	EventTypeMetadata       EventType = "metadata"
	EventTypeFunctionCall   EventType = "functionCall"
	EventTypeFunctionResult EventType = "functionResult"
	EventTypeContent        EventType = "content"
	EventTypeDone           EventType = "done"
	EventTypeError          EventType = "error"
)

// StreamEvent is one typed wire event of a streamed turn. Events are
// written as bare JSON objects, one per line, with no outer envelope.
//
// Ordering across a single turn is fixed: optional init, optional
// metadata, zero or more functionCall/functionResult pairs (call always
// precedes its matching result), zero or more content events carrying
// cumulative prefixes, then exactly one done or error.
type StreamEvent struct {
	Type           EventType       `json:"type"`
	Content        string          `json:"content,omitempty"`
	ThreadID       string          `json:"threadId,omitempty"`
	FunctionCall   *FunctionCall   `json:"functionCall,omitempty"`
	FunctionResult *FunctionResult `json:"functionResult,omitempty"`
	Error          string          `json:"error,omitempty"`
}
