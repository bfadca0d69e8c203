package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbaqa/hro/internal/types"
)

func TestAssembleSQLOnly(t *testing.T) {
	text, err := Assemble(types.KindSQLOnly, Slots{
		Question:   "Who leads the league in points?",
		SQLResults: "MAX Result: 34.2",
	})
	require.NoError(t, err)
	assert.Contains(t, text, "Who leads the league in points?")
	assert.Contains(t, text, "MAX Result: 34.2")
}

func TestAssembleContextualCitesSource(t *testing.T) {
	hits := []types.RetrievalHit{
		{Chunk: &types.DocumentChunk{Text: "a summary of the trade", Source: "glossary"}, Score: 80},
	}
	text, err := Assemble(types.KindContextual, Slots{Question: "Why was the trade made?", Hits: hits})
	require.NoError(t, err)
	assert.Contains(t, text, "[Source: glossary]")
	assert.Contains(t, text, types.UnavailableAnswer)
}

func TestAssembleUnknownFallsBackToCatchAllTemplate(t *testing.T) {
	text, err := Assemble(types.Kind("NOT_A_REAL_KIND"), Slots{Question: "test"})
	require.NoError(t, err)
	assert.Contains(t, text, types.UnavailableAnswer)
}

func TestAssembleRejectsUnsafeInput(t *testing.T) {
	_, err := Assemble(types.KindSQLOnly, Slots{Question: "<script>alert(1)</script>"})
	assert.Error(t, err)
}

func TestFormatHistoryEmpty(t *testing.T) {
	assert.Equal(t, "(none)", formatHistory(nil))
}

func TestFormatHistoryOrdering(t *testing.T) {
	history := []types.HistoryTurn{
		{TurnNumber: 1, Query: "first", Response: "a1"},
		{TurnNumber: 2, Query: "second", Response: "a2"},
	}
	text := formatHistory(history)
	assert.True(t, strings.Index(text, "first") < strings.Index(text, "second"))
}

func TestFormatContextEmpty(t *testing.T) {
	assert.Equal(t, "(no relevant context found)", formatContext(nil))
}

func TestFormatContextTruncatesAtChunkBoundary(t *testing.T) {
	hits := make([]types.RetrievalHit, 0, 200)
	for i := 0; i < 200; i++ {
		hits = append(hits, types.RetrievalHit{
			Chunk: &types.DocumentChunk{Text: strings.Repeat("word ", 20), Source: "src"},
			Score: 90,
		})
	}
	text := formatContext(hits)
	assert.LessOrEqual(t, len(text), contextBudget+200)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(text), "]"))
}

func TestCurrentTimeSlot(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	formatted, weekday := CurrentTimeSlot(now)
	assert.Equal(t, "2026-07-30 12:00:00", formatted)
	assert.Equal(t, "Thursday", weekday)
}
