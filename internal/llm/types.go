package llm

import "context"

// ChatMessage is one role-tagged entry in a chat completion request.
type ChatMessage struct {
	Role    string `json:"role"` // system, assistant, user
	Content string `json:"content"`
}

// Client is the interface for a chat-completion language model backend.
type Client interface {
	// Complete sends the ordered messages to the model and returns the
	// generated reply text.
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
}
