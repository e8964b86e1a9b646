// Package domain defines the core domain models for the agent service.
package domain

import (
	"encoding/json"
	"time"
)

// Role identifies the author kind of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleFunction  Role = "function"
)

// FunctionCall is a tool invocation recorded on an assistant message.
type FunctionCall struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// FunctionResult is the textual outcome of a tool invocation, recorded
// on a function message.
type FunctionResult struct {
	Name   string `json:"name"`
	Result string `json:"result"`
}

// Message is a single entry in a conversation thread. Messages are
// immutable once appended; ordering within a thread is the conversation
// order and prompt construction depends on it.
type Message struct {
	MessageID      string          `json:"message_id"`
	Role           Role            `json:"role"`
	Content        string          `json:"content"`
	FunctionCall   *FunctionCall   `json:"function_call,omitempty"`
	FunctionResult *FunctionResult `json:"function_result,omitempty"`
	AuthorName     string          `json:"author_name,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
}
