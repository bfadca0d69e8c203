package embedding

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type openAIEmbedder struct {
	client     *openai.Client
	modelName  string
	dimensions int
	poolSize   int
}

func newOpenAIEmbedder(cfg Config) *openAIEmbedder {
	oaCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaCfg.BaseURL = cfg.BaseURL
	}
	return &openAIEmbedder{
		client:     openai.NewClientWithConfig(oaCfg),
		modelName:  cfg.ModelName,
		dimensions: cfg.Dimensions,
		poolSize:   cfg.PoolSize,
	}
}

func (e *openAIEmbedder) ModelName() string { return e.modelName }
func (e *openAIEmbedder) Dimensions() int   { return e.dimensions }

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.modelName),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai embedding response contained no data")
	}
	return normalize(resp.Data[0].Embedding), nil
}

func (e *openAIEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	return batchWithPool(ctx, texts, e.poolSize, e.Embed)
}
