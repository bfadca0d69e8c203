// Package orchestrator coordinates classify → retrieve → assemble →
// generate → persist, implementing the fallback state machine from
// SQL_ATTEMPT back to VECTOR_ATTEMPT.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/nbaqa/hro/internal/cache"
	"github.com/nbaqa/hro/internal/chatmodel"
	"github.com/nbaqa/hro/internal/classifier"
	"github.com/nbaqa/hro/internal/common"
	"github.com/nbaqa/hro/internal/conversation"
	"github.com/nbaqa/hro/internal/embedding"
	"github.com/nbaqa/hro/internal/observability"
	"github.com/nbaqa/hro/internal/prompt"
	"github.com/nbaqa/hro/internal/rerank"
	"github.com/nbaqa/hro/internal/sqlgen"
	"github.com/nbaqa/hro/internal/statstore"
	"github.com/nbaqa/hro/internal/types"
	"github.com/nbaqa/hro/internal/vectorindex"
)

// highConfidenceThreshold governs the "empty results on a HIGH-confidence
// statistical query" fallback trigger that sends the request to vector search.
const highConfidenceThreshold = 0.8

// Orchestrator wires every leaf component into the end-to-end request
// pipeline. It is constructed once at startup in the composition root.
type Orchestrator struct {
	events *EventManager

	embedder  embedding.Embedder
	chatModel chatmodel.ChatModel
	validator *sqlgen.Validator
	generator *sqlgen.Generator
	store     *statstore.Store
	index     *vectorindex.Index
	convs     *conversation.Store
	metrics   *observability.Metrics
	cache     *cache.Cache

	historyTurns int
}

// Config bundles Orchestrator's constructor dependencies.
type Config struct {
	Embedder      embedding.Embedder
	ChatModel     chatmodel.ChatModel
	Validator     *sqlgen.Validator
	Generator     *sqlgen.Generator
	Store         *statstore.Store
	Index         *vectorindex.Index
	Conversations *conversation.Store
	Metrics       *observability.Metrics
	Reranker      rerank.Reranker
	Cache         *cache.Cache
	HistoryTurns  int
}

// New builds an Orchestrator and registers its stage plugins with a fresh
// EventManager, one events.Register call per stage plugin.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		events:       NewEventManager(),
		embedder:     cfg.Embedder,
		chatModel:    cfg.ChatModel,
		validator:    cfg.Validator,
		generator:    cfg.Generator,
		store:        cfg.Store,
		index:        cfg.Index,
		convs:        cfg.Conversations,
		metrics:      cfg.Metrics,
		cache:        cfg.Cache,
		historyTurns: cfg.HistoryTurns,
	}
	if o.historyTurns <= 0 {
		o.historyTurns = 5
	}

	o.events.Register(&classifyPlugin{convs: o.convs})
	o.events.Register(&sqlAttemptPlugin{validator: o.validator, generator: o.generator, store: o.store, cache: o.cache})
	o.events.Register(&vectorAttemptPlugin{embedder: o.embedder, index: o.index, reranker: cfg.Reranker, cache: o.cache})
	o.events.Register(&assemblePlugin{})
	o.events.Register(&generatePlugin{chatModel: o.chatModel})
	o.events.Register(&persistPlugin{convs: o.convs})

	return o
}

// Handle runs one request through CLASSIFY → SQL_ATTEMPT → VECTOR_ATTEMPT →
// ASSEMBLE → GENERATE → PERSIST. ctx should already carry the request's
// deadline; Handle never applies one of its own.
func (o *Orchestrator) Handle(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	state := &RequestState{
		Query:          req.Query,
		ConversationID: req.ConversationID,
		RequestedK:     req.K,
		IncludeSources: req.IncludeSources == nil || *req.IncludeSources,
		StartedAt:      time.Now(),
	}

	if req.ConversationID != "" && o.convs != nil {
		history, err := o.convs.GetHistory(ctx, req.ConversationID, o.historyTurns)
		if err == nil {
			state.History = history
		}
	}

	tracer := observability.Tracer()
	stages := []EventType{EventClassify, EventSQLAttempt, EventVectorAttempt, EventAssemble, EventGenerate}
	for _, stage := range stages {
		stageCtx, span := tracer.Start(ctx, string(stage))
		pe := o.events.Trigger(stageCtx, stage, state)
		span.End()
		if pe != nil {
			common.PipelineError(ctx, string(pe.Stage), "failed", map[string]interface{}{"error": pe.Error()})
			return nil, fmt.Errorf("upstream_unavailable: %w", pe)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("deadline_exceeded: %w", ctx.Err())
		}
	}

	processingTime := time.Since(state.StartedAt)

	routing := routingLabel(state)
	o.metrics.ObserveRequest(routing, processingTime.Seconds())
	o.metrics.ObserveClassification(string(state.Classification.Kind))
	if state.SQLFailed {
		o.metrics.ObserveFallback()
	}

	persistenceWarning := ""
	persistCtx, persistSpan := tracer.Start(ctx, string(EventPersist))
	pe := o.events.Trigger(persistCtx, EventPersist, state)
	persistSpan.End()
	if pe != nil {
		persistenceWarning = "response persisted with a non-fatal storage error"
		common.PipelineWarn(ctx, "PERSIST", "non_fatal", map[string]interface{}{"error": pe.Error()})
	}

	resp := &types.ChatResponse{
		Answer:             state.Answer,
		Sources:            sourcesFrom(state, o.historyTurns),
		ProcessingTimeMs:   processingTime.Milliseconds(),
		Routing:            routing,
		ConversationID:     state.ConversationID,
		TurnNumber:         state.TurnNumber,
		PersistenceWarning: persistenceWarning,
	}
	return resp, nil
}

func sourcesFrom(state *RequestState, _ int) []types.SourceCitation {
	if !state.IncludeSources {
		return nil
	}
	out := make([]types.SourceCitation, 0, len(state.Hits))
	for _, h := range state.Hits {
		out = append(out, types.SourceCitation{Source: h.Chunk.Source, Score: h.Score})
	}
	return out
}

// prependLastTurn prefixes query with the most recent user turn's query, so
// that a pronoun-bearing follow-up can be reclassified with that context.
func prependLastTurn(query string, history []types.HistoryTurn) string {
	if len(history) == 0 {
		return query
	}
	last := history[len(history)-1]
	return last.Query + " " + query
}

func classify(query string) types.QueryClassification {
	return classifier.Classify(query)
}

func promptSlots(state *RequestState) prompt.Slots {
	sqlText := "No results found."
	if state.SQLResult != nil && state.SQLResult.Formatted != "" {
		sqlText = state.SQLResult.Formatted
	}
	return prompt.Slots{
		Question:   state.Query,
		History:    state.History,
		SQLResults: sqlText,
		Hits:       state.Hits,
	}
}
