package core

import "context"

// Message represents a single chat turn.
type Message struct {
	Role    string
	Content string
}

// Tool represents a tool capability (e.g., web_search) for providers that support it.
type Tool struct {
	Type string
}

// Options controls model behavior; fields are optional per provider.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int
	SystemPrompt        string
	EnableWebSearch     bool
}

// Client is a provider-agnostic interface for the LLM operations we need.
type Client interface {
	// AnswerQuestion answers a follow-up question grounded in already
	// collected evidence.
	AnswerQuestion(ctx context.Context, evidence string, question string, opts Options) (string, error)
	// Respond sends arbitrary input and optional tools for advanced flows.
	Respond(ctx context.Context, input string, tools []Tool, opts Options) (string, error)
}
