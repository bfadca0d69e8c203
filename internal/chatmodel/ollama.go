package chatmodel

import (
	"context"
	"fmt"

	ollamaapi "github.com/ollama/ollama/api"
)

// OllamaChat generates chat completions against a local/self-hosted Ollama
// server using a non-streaming chat request.
type OllamaChat struct {
	modelName string
	client    *ollamaapi.Client
}

// NewOllamaChat builds an OllamaChat pointed at baseURL (empty uses the
// client's environment-configured default).
func NewOllamaChat(baseURL, modelName string) *OllamaChat {
	client := ollamaapi.ClientFromEnvironment
	var c *ollamaapi.Client
	if baseURL == "" {
		c, _ = client()
	} else {
		c = ollamaapi.NewClient(mustParseURL(baseURL), nil)
	}
	return &OllamaChat{modelName: modelName, client: c}
}

func (c *OllamaChat) ModelName() string { return c.modelName }

func (c *OllamaChat) GenerateChat(ctx context.Context, messages []Message, opts Options) (string, error) {
	req := &ollamaapi.ChatRequest{
		Model:    c.modelName,
		Messages: toOllamaMessages(messages),
		Stream:   boolPtr(false),
		Options:  map[string]interface{}{},
	}
	req.Options["temperature"] = opts.Temperature
	if opts.TopP > 0 {
		req.Options["top_p"] = opts.TopP
	}
	if opts.MaxTokens > 0 {
		req.Options["num_predict"] = opts.MaxTokens
	}

	var content string
	err := c.client.Chat(ctx, req, func(resp ollamaapi.ChatResponse) error {
		content = resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat request failed: %w", err)
	}
	return content, nil
}

func toOllamaMessages(messages []Message) []ollamaapi.Message {
	out := make([]ollamaapi.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, ollamaapi.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

func boolPtr(b bool) *bool { return &b }
