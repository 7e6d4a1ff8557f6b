// Package openai implements llm.Provider on top of the OpenAI chat
// completions API.
package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/MikeSquared-Agency/cadence/internal/llm"
)

const defaultBaseURL = "https://api.openai.com/v1"

type Client struct {
	client *goopenai.Client
	model  string
}

// NewClient creates a client bound to one model. baseURL may be empty to use
// the public API.
func NewClient(apiKey, baseURL, model string) *Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" && baseURL != defaultBaseURL {
		cfg.BaseURL = baseURL
	}
	return &Client{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Model returns the model this client sends requests to.
func (c *Client) Model() string {
	return c.model
}

// Complete runs a chat completion and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, system string, messages []llm.Message, maxTokens int) (string, error) {
	msgs := make([]goopenai.ChatCompletionMessage, 0, len(messages)+1)
	if system != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range messages {
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	req := goopenai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
	}
	if maxTokens > 0 {
		req.MaxTokens = maxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response choices")
	}
	return resp.Choices[0].Message.Content, nil
}
