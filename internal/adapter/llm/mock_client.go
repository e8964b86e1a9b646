package llm

import (
	"context"
	"fmt"
	"strings"
)

// MockClient is a canned CompletionClient for local runs and tests.
// When scripted replies are provided they are returned in order; once
// exhausted (or when none were given) it falls back to echoing the last
// user line of the prompt.
type MockClient struct {
	replies []string
	next    int
}

// NewMockClient creates a mock completion client.
func NewMockClient(replies ...string) *MockClient {
	return &MockClient{replies: replies}
}

// Ensure MockClient implements CompletionClient.
var _ CompletionClient = (*MockClient)(nil)

// Complete returns the next scripted reply, or a synthesized echo.
func (m *MockClient) Complete(ctx context.Context, prompt string, opts *CompletionOptions) (string, error) {
	if m.next < len(m.replies) {
		reply := m.replies[m.next]
		m.next++
		return reply, nil
	}

	var lastUser string
	for _, line := range strings.Split(prompt, "\n") {
		if strings.HasPrefix(line, "User: ") {
			lastUser = strings.TrimPrefix(line, "User: ")
		}
	}
	if lastUser == "" {
		return "[MOCK] This is a mock completion.", nil
	}
	return fmt.Sprintf("[MOCK] Received your message: %q. This is a mock completion.", truncate(lastUser, 100)), nil
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
