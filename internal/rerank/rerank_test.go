package rerank

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nbaqa/hro/internal/types"
)

type fakeReranker struct {
	results []RankResult
	err     error
}

func (f *fakeReranker) Rerank(ctx context.Context, query string, documents []string) ([]RankResult, error) {
	return f.results, f.err
}
func (f *fakeReranker) ModelName() string { return "fake-reranker" }

func TestApplyToNilRerankerReturnsHitsUnchanged(t *testing.T) {
	hits := []types.RetrievalHit{{Chunk: &types.DocumentChunk{ID: "1"}, Score: 50}}
	out := ApplyTo(context.Background(), nil, "q", hits)
	assert.Equal(t, hits, out)
}

func TestApplyToReordersAndRescalesScoreDescending(t *testing.T) {
	hits := []types.RetrievalHit{
		{Chunk: &types.DocumentChunk{ID: "a"}, Score: 90},
		{Chunk: &types.DocumentChunk{ID: "b"}, Score: 80},
	}
	reranker := &fakeReranker{results: []RankResult{
		{Index: 1, RelevanceScore: 0.9},
		{Index: 0, RelevanceScore: 0.4},
	}}

	out := ApplyTo(context.Background(), reranker, "q", hits)

	assert.Len(t, out, 2)
	assert.Equal(t, "b", out[0].Chunk.ID)
	assert.Equal(t, 90.0, out[0].Score)
	assert.Equal(t, "a", out[1].Chunk.ID)
	assert.Equal(t, 40.0, out[1].Score)
	assert.GreaterOrEqual(t, out[0].Score, out[1].Score)
}

func TestApplyToFallsBackOnRerankerError(t *testing.T) {
	hits := []types.RetrievalHit{
		{Chunk: &types.DocumentChunk{ID: "a"}, Score: 90},
		{Chunk: &types.DocumentChunk{ID: "b"}, Score: 80},
	}
	reranker := &fakeReranker{err: errors.New("reranker unavailable")}

	out := ApplyTo(context.Background(), reranker, "q", hits)
	assert.Equal(t, hits, out)
}
