package ai

import "context"

// Options controls model behavior; zero fields fall back to client defaults.
type Options struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string
}

// Client is a provider-agnostic interface for the chat-completion calls the
// pipeline needs: plan generation, fact extraction and trust scoring.
type Client interface {
	// Complete sends one system+user exchange and returns the assistant text.
	Complete(ctx context.Context, userMessage string, opts Options) (string, error)
}
