package chatmodel

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIChat generates chat completions against any OpenAI-schema-compatible
// endpoint (OpenAI itself, or a self-hosted gateway exposing the same API).
type OpenAIChat struct {
	modelName string
	client    *openai.Client
}

// NewOpenAIChat builds an OpenAIChat client; baseURL overrides the default
// OpenAI endpoint for OpenAI-compatible providers.
func NewOpenAIChat(baseURL, apiKey, modelName string) *OpenAIChat {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIChat{modelName: modelName, client: openai.NewClientWithConfig(cfg)}
}

func (c *OpenAIChat) ModelName() string { return c.modelName }

func (c *OpenAIChat) GenerateChat(ctx context.Context, messages []Message, opts Options) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.modelName,
		Messages:    toOpenAIMessages(messages),
		Temperature: float32(opts.Temperature),
		TopP:        float32(opts.TopP),
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return out
}
