// Package provider implements the LLM handle contract and clients.
package provider

import (
	"context"
)

// Message is a single chat message sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Handle is the interface consumed by the orchestrator for all LLM calls.
// Implementations must return an empty string only when the remote endpoint
// actually produced one.
type Handle interface {
	// Call sends the messages and returns the model's text response.
	Call(ctx context.Context, messages []Message) (string, error)
	// DefaultModel returns the configured default model.
	DefaultModel() string
}

// Embedder is an optional interface for handles that support embedding.
// Callers should use type assertion: if emb, ok := h.(Embedder); ok { ... }
type Embedder interface {
	Embed(ctx context.Context, input string) ([]float32, error)
}
