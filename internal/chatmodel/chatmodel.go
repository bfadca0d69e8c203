// Package chatmodel wraps the external chat-completion provider behind a
// narrow interface, so the orchestrator depends on neither vendor SDK
// directly (per the composition-root / no-singleton design note).
package chatmodel

import (
	"context"
)

// Message is one turn of a chat-completion request.
type Message struct {
	Role    string
	Content string
}

// Options carries per-call generation parameters.
type Options struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// ChatModel is the narrow capability the orchestrator depends on:
// GenerateChat(prompt, params) -> text. Vendor SDKs sit behind this
// interface and are never referenced outside this package.
type ChatModel interface {
	GenerateChat(ctx context.Context, messages []Message, opts Options) (string, error)
	ModelName() string
}

// Config selects and parameterizes a ChatModel implementation.
type Config struct {
	Source    string // "ollama" | "openai"
	BaseURL   string
	APIKey    string
	ModelName string
}

// New constructs a ChatModel from config, switching on Source the way the
// embedder factory switches on provider.
func New(cfg Config) (ChatModel, error) {
	switch cfg.Source {
	case "ollama", "":
		return NewOllamaChat(cfg.BaseURL, cfg.ModelName), nil
	default:
		return NewOpenAIChat(cfg.BaseURL, cfg.APIKey, cfg.ModelName), nil
	}
}
