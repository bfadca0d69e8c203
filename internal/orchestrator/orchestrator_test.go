package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbaqa/hro/internal/chatmodel"
	"github.com/nbaqa/hro/internal/types"
	"github.com/nbaqa/hro/internal/vectorindex"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}
func (f *fakeEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, f.err
}
func (f *fakeEmbedder) Dimensions() int   { return len(f.vector) }
func (f *fakeEmbedder) ModelName() string { return "fake-embedder" }

type fakeChatModel struct {
	answer string
	err    error
}

func (f *fakeChatModel) GenerateChat(ctx context.Context, messages []chatmodel.Message, opts chatmodel.Options) (string, error) {
	return f.answer, f.err
}
func (f *fakeChatModel) ModelName() string { return "fake-chat" }

func buildIndex(t *testing.T) *vectorindex.Index {
	t.Helper()
	chunks := []types.DocumentChunk{
		{ID: "1", Text: "a player averages twenty points per game this season", Source: "boxscore",
			Metadata: map[string]string{"data_type": string(types.DataTypePlayerStats)}},
	}
	idx, err := vectorindex.New([][]float32{{1, 0}}, chunks)
	require.NoError(t, err)
	return idx
}

func TestHandleContextualPathAssemblesAndGenerates(t *testing.T) {
	idx := buildIndex(t)
	orch := New(Config{
		Embedder:  &fakeEmbedder{vector: []float32{1, 0}},
		ChatModel: &fakeChatModel{answer: "He shoots a lot."},
		Index:     idx,
	})

	resp, err := orch.Handle(context.Background(), types.ChatRequest{
		Query: "Why does his shooting style work so well?",
	})
	require.NoError(t, err)
	assert.Equal(t, "He shoots a lot.", resp.Answer)
	assert.Equal(t, "vector_only", resp.Routing)
	assert.Empty(t, resp.PersistenceWarning)
}

func TestHandleUngroundedContextualReturnsUnavailable(t *testing.T) {
	lowQuality := types.DocumentChunk{ID: "low", Text: "a b c", Source: "", Metadata: nil}
	idx, err := vectorindex.New([][]float32{{1, 0}}, []types.DocumentChunk{lowQuality})
	require.NoError(t, err)

	orch := New(Config{
		Embedder:  &fakeEmbedder{vector: []float32{1, 0}},
		ChatModel: &fakeChatModel{answer: "should not be used"},
		Index:     idx,
	})

	resp, err := orch.Handle(context.Background(), types.ChatRequest{
		Query: "Why does his shooting style work so well?",
	})
	require.NoError(t, err)
	assert.Equal(t, types.UnavailableAnswer, resp.Answer)
	assert.Equal(t, "unknown", resp.Routing)
}

func TestHandleWithoutConversationStoreSkipsPersist(t *testing.T) {
	idx := buildIndex(t)
	orch := New(Config{
		Embedder:  &fakeEmbedder{vector: []float32{1, 0}},
		ChatModel: &fakeChatModel{answer: "answer text"},
		Index:     idx,
	})

	resp, err := orch.Handle(context.Background(), types.ChatRequest{Query: "Why does his shooting style work so well?"})
	require.NoError(t, err)
	assert.Empty(t, resp.PersistenceWarning)
	assert.Equal(t, 0, resp.TurnNumber)
}
