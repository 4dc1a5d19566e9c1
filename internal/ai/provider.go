package ai

import "context"

// Message is a provider-agnostic chat message.
type Message struct {
	Role    string // "system", "user", or "assistant"
	Content string
}

// Provider is the interface that any completion backend must implement.
// It covers the non-streaming call shape: one request, one full reply.
type Provider interface {
	// Name identifies the backend in logs and error messages.
	Name() string
	// Complete sends the request and returns the assistant's full response text.
	Complete(ctx context.Context, req Request) (string, error)
}
