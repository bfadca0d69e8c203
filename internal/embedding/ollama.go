package embedding

import (
	"context"
	"fmt"

	ollamaapi "github.com/ollama/ollama/api"
)

type ollamaEmbedder struct {
	client     *ollamaapi.Client
	modelName  string
	dimensions int
	poolSize   int
}

func newOllamaEmbedder(cfg Config) *ollamaEmbedder {
	var client *ollamaapi.Client
	if cfg.BaseURL == "" {
		client, _ = ollamaapi.ClientFromEnvironment()
	} else {
		client = ollamaapi.NewClient(mustParseURL(cfg.BaseURL), nil)
	}
	return &ollamaEmbedder{
		client:     client,
		modelName:  cfg.ModelName,
		dimensions: cfg.Dimensions,
		poolSize:   cfg.PoolSize,
	}
}

func (e *ollamaEmbedder) ModelName() string { return e.modelName }
func (e *ollamaEmbedder) Dimensions() int   { return e.dimensions }

func (e *ollamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings(ctx, &ollamaapi.EmbeddingRequest{
		Model:  e.modelName,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embedding request failed: %w", err)
	}
	vec := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vec[i] = float32(v)
	}
	return normalize(vec), nil
}

func (e *ollamaEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	return batchWithPool(ctx, texts, e.poolSize, e.Embed)
}
