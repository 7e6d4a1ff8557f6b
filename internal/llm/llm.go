// Package llm defines the narrow text-generation contract the rest of the
// service depends on. Concrete providers live in internal/openai and
// internal/anthropic.
package llm

import "context"

// Roles understood by every provider.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider completes a conversation and returns the text of the reply.
// system may be empty.
type Provider interface {
	Complete(ctx context.Context, system string, messages []Message, maxTokens int) (string, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, system string, messages []Message, maxTokens int) (string, error)

func (f ProviderFunc) Complete(ctx context.Context, system string, messages []Message, maxTokens int) (string, error) {
	return f(ctx, system, messages, maxTokens)
}

// UserPrompt is shorthand for a single user turn.
func UserPrompt(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}
