package domain

// MessageRequest is the inbound body for both the blocking and the
// streaming agent endpoints.
type MessageRequest struct {
	Message  string `json:"message"`
	ThreadID string `json:"threadId,omitempty"`
}

// MessageResponse is the body returned by the non-streaming endpoint.
type MessageResponse struct {
	Response        string           `json:"response"`
	ThreadID        string           `json:"threadId"`
	FunctionCalls   []FunctionCall   `json:"functionCalls"`
	FunctionResults []FunctionResult `json:"functionResults"`
	AuthorName      string           `json:"authorName,omitempty"`
}

// DeleteResponse is the body returned by the thread delete endpoint.
type DeleteResponse struct {
	Success bool `json:"success"`
}

// ErrorResponse is the generic error body for API failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
