package orchestrator

import (
	"time"

	"github.com/nbaqa/hro/internal/types"
)

// RequestState is the Orchestrator's exclusively-owned per-request mutable
// state: the classification, SQL result, retrieval hits, and assembled
// prompt all live here and nowhere else.
type RequestState struct {
	Query          string
	ConversationID string
	RequestedK     int
	IncludeSources bool

	Classification types.QueryClassification
	EffectiveKind  types.Kind

	History []types.HistoryTurn

	SQLResult *types.SQLExecutionResult
	SQLFailed bool

	Hits []types.RetrievalHit

	Prompt     string
	Answer     string
	Routing    string
	TurnNumber int

	StartedAt time.Time
}

// routingLabel maps the effective kind (after any fallback downgrade) to
// the response's routing field.
func routingLabel(state *RequestState) string {
	if state.Routing != "" {
		return state.Routing
	}
	switch state.EffectiveKind {
	case types.KindSQLOnly:
		return "sql_only"
	case types.KindContextual:
		return "vector_only"
	case types.KindHybrid:
		return "hybrid"
	default:
		return "unknown"
	}
}
