package vectorindex

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbaqa/hro/internal/types"
)

func unit(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	n := math.Sqrt(sumSq)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out
}

func sampleChunk(id, text, source string, dataType types.DataType) types.DocumentChunk {
	return types.DocumentChunk{
		ID:     id,
		Text:   text,
		Source: source,
		Metadata: map[string]string{
			"data_type": string(dataType),
		},
	}
}

func TestNewRejectsMismatchedLengths(t *testing.T) {
	_, err := New([][]float32{{1, 0}}, nil)
	assert.Error(t, err)
}

func TestNewRejectsNonUnitVectors(t *testing.T) {
	_, err := New([][]float32{{1, 1}}, []types.DocumentChunk{
		sampleChunk("1", "a coherent sentence of reasonable length here", "src", types.DataTypeGlossary),
	})
	assert.Error(t, err)
}

func TestSearchOrdersByDescendingSimilarity(t *testing.T) {
	chunks := []types.DocumentChunk{
		sampleChunk("1", "a player averages twenty points per game this season", "boxscore", types.DataTypePlayerStats),
		sampleChunk("2", "a player averages twenty points per game this season", "boxscore", types.DataTypePlayerStats),
		sampleChunk("3", "a player averages twenty points per game this season", "boxscore", types.DataTypePlayerStats),
	}
	vectors := [][]float32{
		unit([]float32{1, 0}),
		unit([]float32{0.9, 0.1}),
		unit([]float32{0, 1}),
	}
	idx, err := New(vectors, chunks)
	require.NoError(t, err)

	hits, err := idx.Search(unit([]float32{1, 0}), 3, nil)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
}

func TestSearchScoresWithinRange(t *testing.T) {
	chunks := []types.DocumentChunk{
		sampleChunk("1", "a player averages twenty points per game this season", "boxscore", types.DataTypePlayerStats),
	}
	idx, err := New([][]float32{unit([]float32{1, 0})}, chunks)
	require.NoError(t, err)

	hits, err := idx.Search(unit([]float32{1, 0}), 1, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.GreaterOrEqual(t, hits[0].Score, 0.0)
	assert.LessOrEqual(t, hits[0].Score, 100.0)
}

func TestSearchFiltersLowQualityChunks(t *testing.T) {
	lowQuality := types.DocumentChunk{ID: "low", Text: "a b c", Source: "", Metadata: nil}
	chunks := []types.DocumentChunk{lowQuality}
	idx, err := New([][]float32{unit([]float32{1, 0})}, chunks)
	require.NoError(t, err)

	hits, err := idx.Search(unit([]float32{1, 0}), 5, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchRejectsWrongDimension(t *testing.T) {
	chunks := []types.DocumentChunk{
		sampleChunk("1", "a player averages twenty points per game this season", "boxscore", types.DataTypePlayerStats),
	}
	idx, err := New([][]float32{unit([]float32{1, 0})}, chunks)
	require.NoError(t, err)

	_, err = idx.Search([]float32{1, 0, 0}, 1, nil)
	assert.Error(t, err)
}

func TestSearchIsIdempotent(t *testing.T) {
	chunks := []types.DocumentChunk{
		sampleChunk("1", "a player averages twenty points per game this season", "boxscore", types.DataTypePlayerStats),
		sampleChunk("2", "a different player averages fifteen rebounds per game", "boxscore", types.DataTypePlayerStats),
	}
	vectors := [][]float32{unit([]float32{1, 0}), unit([]float32{0, 1})}
	idx, err := New(vectors, chunks)
	require.NoError(t, err)

	first, err := idx.Search(unit([]float32{1, 0}), 2, nil)
	require.NoError(t, err)
	second, err := idx.Search(unit([]float32{1, 0}), 2, nil)
	require.NoError(t, err)

	require.Len(t, first, len(second))
	for i := range first {
		assert.Equal(t, first[i].Chunk.Position, second[i].Chunk.Position)
	}
}

func TestAdaptiveKHonorsExplicitK(t *testing.T) {
	assert.Equal(t, 3, AdaptiveK("anything", 3))
}

func TestAdaptiveKDefaults(t *testing.T) {
	assert.Equal(t, 6, AdaptiveK("who is this guy", 0))
}

func TestAdaptiveKContinuation(t *testing.T) {
	assert.Equal(t, 9, AdaptiveK("what about his assists also", 0))
}

func TestAdaptiveKComparison(t *testing.T) {
	assert.Equal(t, 7, AdaptiveK("compare these two players", 0))
}

func TestConfigureOverridesDefaults(t *testing.T) {
	idx := &Index{oversample: oversampleFactor, threshold: qualityThreshold}
	idx.Configure(5, 0.9)
	assert.Equal(t, 5, idx.oversample)
	assert.Equal(t, 0.9, idx.threshold)

	idx.Configure(0, 0)
	assert.Equal(t, 5, idx.oversample)
	assert.Equal(t, 0.9, idx.threshold)
}
