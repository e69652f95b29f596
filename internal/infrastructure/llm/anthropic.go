package llm

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"listradar/internal/ports"
)

// AnthropicClient implements ports.ChatClient on the Anthropic Messages API.
type AnthropicClient struct {
	client    anthropic.Client
	maxTokens int64
}

var _ ports.ChatClient = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client with a fixed per-call token budget.
func NewAnthropicClient(apiKey string, maxTokens int64) *AnthropicClient {
	return &AnthropicClient{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		maxTokens: maxTokens,
	}
}

// Complete sends one system+user exchange and returns the first text block
// of the response, or empty string when the response carries none.
func (c *AnthropicClient) Complete(ctx context.Context, model, system, user string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: c.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic message: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", nil
}
