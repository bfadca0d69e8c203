package facade

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbaqa/hro/internal/chatmodel"
	"github.com/nbaqa/hro/internal/orchestrator"
	"github.com/nbaqa/hro/internal/types"
	"github.com/nbaqa/hro/internal/vectorindex"
)

type stubEmbedder struct{ vector []float32 }

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vector, nil
}
func (s *stubEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}
func (s *stubEmbedder) Dimensions() int   { return len(s.vector) }
func (s *stubEmbedder) ModelName() string { return "stub" }

type stubChatModel struct{ answer string }

func (s *stubChatModel) GenerateChat(ctx context.Context, messages []chatmodel.Message, opts chatmodel.Options) (string, error) {
	return s.answer, nil
}
func (s *stubChatModel) ModelName() string { return "stub" }

func newTestFacade(t *testing.T) *Facade {
	t.Helper()
	idx, err := vectorindex.New(nil, nil)
	require.NoError(t, err)
	orch := orchestrator.New(orchestrator.Config{
		Embedder:  &stubEmbedder{vector: []float32{1, 0}},
		ChatModel: &stubChatModel{answer: "ok"},
		Index:     idx,
	})
	return New(orch, nil, 0)
}

func TestValidateRejectsEmptyQuery(t *testing.T) {
	f := newTestFacade(t)
	err := f.validate(context.Background(), types.ChatRequest{Query: ""})
	require.Error(t, err)
	var fe *FacadeError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, types.ErrInvalidInput, fe.Kind)
}

func TestValidateRejectsOverlongQuery(t *testing.T) {
	f := newTestFacade(t)
	long := make([]rune, maxQueryLength+1)
	for i := range long {
		long[i] = 'a'
	}
	err := f.validate(context.Background(), types.ChatRequest{Query: string(long)})
	require.Error(t, err)
	var fe *FacadeError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, types.ErrInvalidInput, fe.Kind)
}

func TestValidateRejectsKOutOfBounds(t *testing.T) {
	f := newTestFacade(t)

	err := f.validate(context.Background(), types.ChatRequest{Query: "ok", K: -1})
	require.Error(t, err)

	err = f.validate(context.Background(), types.ChatRequest{Query: "ok", K: maxK + 1})
	require.Error(t, err)
}

func TestValidateRejectsScriptInjection(t *testing.T) {
	f := newTestFacade(t)
	err := f.validate(context.Background(), types.ChatRequest{Query: "<script>alert(1)</script>"})
	require.Error(t, err)
	var fe *FacadeError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, types.ErrInvalidInput, fe.Kind)
}

func TestValidateAcceptsWellFormedRequest(t *testing.T) {
	f := newTestFacade(t)
	err := f.validate(context.Background(), types.ChatRequest{Query: "who led scoring", K: 5})
	assert.NoError(t, err)
}

func TestNewAppliesDefaultDeadline(t *testing.T) {
	f := New(nil, nil, 0)
	assert.Equal(t, defaultDeadline, f.requestDeadline)
}

func TestNewHonorsExplicitDeadline(t *testing.T) {
	f := New(nil, nil, 5*time.Second)
	assert.Equal(t, 5*time.Second, f.requestDeadline)
}

func TestChatRunsValidatedRequestThroughOrchestrator(t *testing.T) {
	idx, err := vectorindex.New(nil, nil)
	require.NoError(t, err)
	orch := orchestrator.New(orchestrator.Config{
		Embedder:  &stubEmbedder{vector: []float32{1, 0}},
		ChatModel: &stubChatModel{answer: "ok"},
		Index:     idx,
	})
	f := New(orch, nil, time.Hour)

	resp, err := f.Chat(context.Background(), types.ChatRequest{Query: "Why does his shooting style work so well?"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Answer)
}
