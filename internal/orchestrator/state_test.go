package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nbaqa/hro/internal/types"
)

func TestRoutingLabelPrefersExplicitRouting(t *testing.T) {
	state := &RequestState{Routing: "sql_failed_vector_fallback", EffectiveKind: types.KindSQLOnly}
	assert.Equal(t, "sql_failed_vector_fallback", routingLabel(state))
}

func TestRoutingLabelFromEffectiveKind(t *testing.T) {
	cases := []struct {
		kind types.Kind
		want string
	}{
		{types.KindSQLOnly, "sql_only"},
		{types.KindContextual, "vector_only"},
		{types.KindHybrid, "hybrid"},
		{types.KindUnknown, "unknown"},
	}
	for _, c := range cases {
		state := &RequestState{EffectiveKind: c.kind}
		assert.Equal(t, c.want, routingLabel(state))
	}
}

func TestPrependLastTurnNoHistory(t *testing.T) {
	assert.Equal(t, "why though", prependLastTurn("why though", nil))
}

func TestPrependLastTurnUsesMostRecentTurn(t *testing.T) {
	history := []types.HistoryTurn{
		{TurnNumber: 1, Query: "who led scoring", Response: "player x"},
		{TurnNumber: 2, Query: "how many assists", Response: "7"},
	}
	got := prependLastTurn("why is that good", history)
	assert.Equal(t, "how many assists why is that good", got)
}

func TestPromptSlotsDefaultsSQLResults(t *testing.T) {
	state := &RequestState{Query: "test question"}
	slots := promptSlots(state)
	assert.Equal(t, "No results found.", slots.SQLResults)
	assert.Equal(t, "test question", slots.Question)
}

func TestPromptSlotsUsesFormattedSQLResult(t *testing.T) {
	state := &RequestState{
		Query:     "test",
		SQLResult: &types.SQLExecutionResult{Formatted: "AVERAGE Result: 27.5"},
	}
	slots := promptSlots(state)
	assert.Equal(t, "AVERAGE Result: 27.5", slots.SQLResults)
}

func TestSourcesFromRespectsIncludeSources(t *testing.T) {
	state := &RequestState{
		IncludeSources: false,
		Hits: []types.RetrievalHit{
			{Chunk: &types.DocumentChunk{Source: "glossary"}, Score: 90},
		},
	}
	assert.Nil(t, sourcesFrom(state, 5))
}

func TestSourcesFromMapsHits(t *testing.T) {
	state := &RequestState{
		IncludeSources: true,
		Hits: []types.RetrievalHit{
			{Chunk: &types.DocumentChunk{Source: "glossary"}, Score: 90},
			{Chunk: &types.DocumentChunk{Source: "boxscore"}, Score: 70},
		},
	}
	sources := sourcesFrom(state, 5)
	assert.Len(t, sources, 2)
	assert.Equal(t, "glossary", sources[0].Source)
	assert.Equal(t, 90.0, sources[0].Score)
}
