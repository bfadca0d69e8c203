// Package embedding wraps the external embedding provider: batching and L2
// normalization, behind a narrow Embedder capability. A failed provider call
// is returned to the caller without retry.
package embedding

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Embedder is the orchestrator's EmbedQuery(text) -> vector capability,
// extended with a batch form for index-build-time use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	BatchEmbed(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	ModelName() string
}

// Config selects and parameterizes an Embedder implementation.
type Config struct {
	Source     string // "ollama" | "openai"
	BaseURL    string
	APIKey     string
	ModelName  string
	Dimensions int
	PoolSize   int
}

// New constructs an Embedder from config using a provider-switch factory.
func New(cfg Config) (Embedder, error) {
	switch cfg.Source {
	case "ollama", "":
		return newOllamaEmbedder(cfg), nil
	case "openai":
		return newOpenAIEmbedder(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported embedder source: %s", cfg.Source)
	}
}

// normalize rescales v to unit L2 norm; used by both providers so every
// vector entering the index satisfies the VectorIndex invariant.
func normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// batchWithPool fans calls to embedOne out across a bounded goroutine pool,
// preserving input order in the result slice.
func batchWithPool(ctx context.Context, texts []string, poolSize int, embedOne func(context.Context, string) ([]float32, error)) ([][]float32, error) {
	if poolSize <= 0 {
		poolSize = 8
	}
	results := make([][]float32, len(texts))
	errs := make([]error, len(texts))

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("create embedding worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	wg.Add(len(texts))
	for i, t := range texts {
		i, t := i, t
		submitErr := pool.Submit(func() {
			defer wg.Done()
			v, err := embedOne(ctx, t)
			results[i] = v
			errs[i] = err
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = submitErr
		}
	}
	wg.Wait()

	for _, e := range errs {
		if e != nil {
			return nil, e
		}
	}
	return results, nil
}
