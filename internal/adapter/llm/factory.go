package llm

import (
	"log"
	"os"
	"time"
)

const (
	// EnvMode is the environment variable name for mode selection.
	EnvMode = "PIZZABOT_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewCompletionClient creates a completion client based on the
// PIZZABOT_MODE environment variable. If PIZZABOT_MODE=MOCK, returns a
// MockClient; otherwise returns a real Client.
func NewCompletionClient(baseURL, apiKey, model string, timeout time.Duration) CompletionClient {
	if os.Getenv(EnvMode) == ModeMock {
		log.Println("PIZZABOT_MODE=MOCK detected, using mock completion client")
		return NewMockClient()
	}
	return NewClient(baseURL, apiKey, model, timeout)
}
