// Package rerank provides an optional cross-encoder reranking pass over
// vector search hits, called after Index.Search (which already returns at
// most k hits) and before prompt assembly.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/nbaqa/hro/internal/logger"
	"github.com/nbaqa/hro/internal/types"
)

// Reranker scores (query, document) pairs and returns documents ordered by
// relevance, most relevant first.
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]RankResult, error)
	ModelName() string
}

// RankResult is one reranked document.
type RankResult struct {
	Index          int     `json:"index"`
	Document       string  `json:"document"`
	RelevanceScore float64 `json:"relevance_score"`
}

// HTTPReranker calls an external Jina-compatible /rerank endpoint.
type HTTPReranker struct {
	modelName string
	apiKey    string
	baseURL   string
	client    *http.Client
}

// Config parameterizes an HTTPReranker.
type Config struct {
	ModelName string
	APIKey    string
	BaseURL   string
}

// New builds an HTTPReranker from cfg.
func New(cfg Config) *HTTPReranker {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.jina.ai/v1"
	}
	return &HTTPReranker{
		modelName: cfg.ModelName,
		apiKey:    cfg.APIKey,
		baseURL:   baseURL,
		client:    &http.Client{},
	}
}

type rerankRequest struct {
	Model           string   `json:"model"`
	Query           string   `json:"query"`
	Documents       []string `json:"documents"`
	ReturnDocuments bool     `json:"return_documents,omitempty"`
}

type rerankResponse struct {
	Results []RankResult `json:"results"`
}

// Rerank sends query and documents to the external reranker and returns
// results ordered by descending relevance score.
func (r *HTTPReranker) Rerank(ctx context.Context, query string, documents []string) ([]RankResult, error) {
	body, err := json.Marshal(rerankRequest{
		Model:           r.modelName,
		Query:           query,
		Documents:       documents,
		ReturnDocuments: false,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/rerank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do rerank request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rerank response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		logger.Errorf(ctx, "reranker http error: status=%s body=%s", resp.Status, string(raw))
		return nil, fmt.Errorf("rerank api error: %s", resp.Status)
	}

	var parsed rerankResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal rerank response: %w", err)
	}
	sort.SliceStable(parsed.Results, func(i, j int) bool {
		return parsed.Results[i].RelevanceScore > parsed.Results[j].RelevanceScore
	})
	return parsed.Results, nil
}

// ModelName returns the configured reranking model's name.
func (r *HTTPReranker) ModelName() string { return r.modelName }

// ApplyTo reorders hits by the reranker's relevance score against query,
// leaving the original order unchanged on any reranker error since the
// quality-filtered vector ranking is already a valid fallback. The
// reordered hits carry the reranker's relevance score (scaled to the same
// [0,100] range as the cosine score) so Score still reflects the order
// the hits are returned in.
func ApplyTo(ctx context.Context, reranker Reranker, query string, hits []types.RetrievalHit) []types.RetrievalHit {
	if reranker == nil || len(hits) == 0 {
		return hits
	}
	documents := make([]string, len(hits))
	for i, h := range hits {
		documents[i] = h.Chunk.Text
	}
	results, err := reranker.Rerank(ctx, query, documents)
	if err != nil {
		logger.Warnf(ctx, "reranking skipped: %v", err)
		return hits
	}
	reordered := make([]types.RetrievalHit, 0, len(hits))
	for _, res := range results {
		if res.Index < 0 || res.Index >= len(hits) {
			continue
		}
		reordered = append(reordered, types.RetrievalHit{
			Chunk: hits[res.Index].Chunk,
			Score: res.RelevanceScore * 100,
		})
	}
	if len(reordered) != len(hits) {
		return hits
	}
	return reordered
}
