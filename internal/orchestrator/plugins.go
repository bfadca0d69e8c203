package orchestrator

import (
	"context"
	"time"

	"github.com/nbaqa/hro/internal/cache"
	"github.com/nbaqa/hro/internal/chatmodel"
	"github.com/nbaqa/hro/internal/common"
	"github.com/nbaqa/hro/internal/conversation"
	"github.com/nbaqa/hro/internal/embedding"
	"github.com/nbaqa/hro/internal/prompt"
	"github.com/nbaqa/hro/internal/rerank"
	"github.com/nbaqa/hro/internal/sqlgen"
	"github.com/nbaqa/hro/internal/statstore"
	"github.com/nbaqa/hro/internal/types"
	"github.com/nbaqa/hro/internal/vectorindex"
)

// classifyPlugin classifies the query, and on UNKNOWN
// with a conversation present, resolve pronouns by prepending the last turn
// and reclassifying once.
type classifyPlugin struct {
	convs *conversation.Store
}

func (p *classifyPlugin) ActivationEvents() []EventType { return []EventType{EventClassify} }

func (p *classifyPlugin) OnEvent(ctx context.Context, _ EventType, state *RequestState, next func() *PluginError) *PluginError {
	classification := classify(state.Query)

	if classification.Kind == types.KindUnknown && state.ConversationID != "" && len(state.History) > 0 {
		resolved := prependLastTurn(state.Query, state.History)
		classification = classify(resolved)
	}

	state.Classification = classification
	state.EffectiveKind = classification.Kind
	if state.EffectiveKind == types.KindUnknown {
		state.EffectiveKind = types.KindContextual
	}

	common.PipelineInfo(ctx, "Classify", "output", map[string]interface{}{
		"kind":       classification.Kind,
		"confidence": classification.Confidence,
	})
	return next()
}

// sqlAttemptPlugin attempts SQL generation and execution.
type sqlAttemptPlugin struct {
	validator *sqlgen.Validator
	generator *sqlgen.Generator
	store     *statstore.Store
	cache     *cache.Cache
}

func (p *sqlAttemptPlugin) ActivationEvents() []EventType { return []EventType{EventSQLAttempt} }

func (p *sqlAttemptPlugin) OnEvent(ctx context.Context, _ EventType, state *RequestState, next func() *PluginError) *PluginError {
	if state.EffectiveKind != types.KindSQLOnly && state.EffectiveKind != types.KindHybrid {
		return next()
	}

	cacheKey := cache.Key("sql", state.Query)
	if p.cache != nil {
		var cached types.SQLExecutionResult
		if hit, _ := p.cache.Get(ctx, cacheKey, &cached); hit {
			state.SQLResult = &cached
			state.SQLFailed = cached.ErrorKind != types.SQLErrorNone
			common.PipelineInfo(ctx, "SQLAttempt", "cache_hit", map[string]interface{}{"row_count": len(cached.Rows)})
			return p.fallbackOrContinue(state, next)
		}
	}

	candidate, err := p.generator.Generate(ctx, state.Query, p.store.SchemaPromptText(), sqlgen.DefaultExamples())
	if err != nil {
		state.SQLFailed = true
		state.SQLResult = &types.SQLExecutionResult{ErrorKind: types.SQLErrorSyntax}
		common.PipelineWarn(ctx, "SQLAttempt", "generation_failed", map[string]interface{}{"error": err.Error()})
		return p.fallbackOrContinue(state, next)
	}

	normalized, err := p.validator.ValidateAndNormalize(candidate, p.store)
	if err != nil {
		state.SQLFailed = true
		state.SQLResult = &types.SQLExecutionResult{SQL: candidate, ErrorKind: types.SQLErrorForbidden}
		common.PipelineWarn(ctx, "SQLAttempt", "validation_failed", map[string]interface{}{"error": err.Error()})
		return p.fallbackOrContinue(state, next)
	}

	result, err := p.store.Execute(ctx, normalized)
	if err != nil {
		state.SQLFailed = true
		state.SQLResult = &types.SQLExecutionResult{SQL: normalized, ErrorKind: types.SQLErrorExecution}
		common.PipelineWarn(ctx, "SQLAttempt", "execution_failed", map[string]interface{}{"error": err.Error()})
		return p.fallbackOrContinue(state, next)
	}

	emptyButValid := statstore.IsEmptyButValid(result, state.Classification.Confidence >= highConfidenceThreshold)
	if emptyButValid {
		state.SQLFailed = true
	}

	errorKind := types.SQLErrorNone
	if emptyButValid {
		errorKind = types.SQLErrorEmptyValid
	}
	state.SQLResult = &types.SQLExecutionResult{
		SQL:       normalized,
		Executed:  true,
		Rows:      result.Rows,
		Truncated: result.Truncated,
		Duration:  result.Duration,
		ErrorKind: errorKind,
		Formatted: statstore.Format(result),
	}

	if p.cache != nil && !state.SQLFailed {
		_ = p.cache.Set(ctx, cacheKey, state.SQLResult)
	}

	common.PipelineInfo(ctx, "SQLAttempt", "output", map[string]interface{}{
		"row_count":  len(result.Rows),
		"sql_failed": state.SQLFailed,
	})
	return p.fallbackOrContinue(state, next)
}

// fallbackOrContinue degrades SQL_ONLY to the vector path on failure, per
// the same trigger used before SQL is attempted; HYBRID proceeds regardless since it also uses the
// vector path.
func (p *sqlAttemptPlugin) fallbackOrContinue(state *RequestState, next func() *PluginError) *PluginError {
	if state.EffectiveKind == types.KindSQLOnly && state.SQLFailed {
		state.EffectiveKind = types.KindContextual
	}
	return next()
}

// vectorAttemptPlugin runs embedding search over the document index.
type vectorAttemptPlugin struct {
	embedder embedding.Embedder
	index    *vectorindex.Index
	reranker rerank.Reranker
	cache    *cache.Cache
}

func (p *vectorAttemptPlugin) ActivationEvents() []EventType { return []EventType{EventVectorAttempt} }

func (p *vectorAttemptPlugin) OnEvent(ctx context.Context, _ EventType, state *RequestState, next func() *PluginError) *PluginError {
	needsVector := state.EffectiveKind == types.KindContextual || state.EffectiveKind == types.KindHybrid
	if !needsVector {
		return next()
	}

	cacheKey := cache.Key("vector", state.Query)
	if p.cache != nil {
		var cached []types.RetrievalHit
		if hit, _ := p.cache.Get(ctx, cacheKey, &cached); hit {
			state.Hits = cached
			common.PipelineInfo(ctx, "VectorAttempt", "cache_hit", map[string]interface{}{"hit_count": len(cached)})
			return next()
		}
	}

	queryVector, err := p.embedder.Embed(ctx, state.Query)
	if err != nil {
		return NewPluginError(EventVectorAttempt, "embedding provider unavailable").WithError(err)
	}

	k := vectorindex.AdaptiveK(state.Query, state.RequestedK)
	hits, err := p.index.Search(queryVector, k, nil)
	if err != nil {
		return NewPluginError(EventVectorAttempt, "vector search failed").WithError(err)
	}

	state.Hits = rerank.ApplyTo(ctx, p.reranker, state.Query, hits)
	if p.cache != nil {
		_ = p.cache.Set(ctx, cacheKey, state.Hits)
	}
	common.PipelineInfo(ctx, "VectorAttempt", "output", map[string]interface{}{
		"k": k, "hit_count": len(hits),
	})
	return next()
}

// assemblePlugin fills the prompt template for the chosen Kind.
type assemblePlugin struct{}

func (p *assemblePlugin) ActivationEvents() []EventType { return []EventType{EventAssemble} }

func (p *assemblePlugin) OnEvent(ctx context.Context, _ EventType, state *RequestState, next func() *PluginError) *PluginError {
	text, err := prompt.Assemble(state.EffectiveKind, promptSlots(state))
	if err != nil {
		return NewPluginError(EventAssemble, "prompt assembly failed").WithError(err)
	}
	state.Prompt = text
	return next()
}

// generatePlugin calls the chat model at temperature 0.1, max 2048
// output tokens, 30s timeout per call; a failed call is retried up to 3
// times (4 calls in all) after exponential backoff delays of 1s, 2s and 4s.
type generatePlugin struct {
	chatModel chatmodel.ChatModel
}

func (p *generatePlugin) ActivationEvents() []EventType { return []EventType{EventGenerate} }

var backoffDelays = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

func (p *generatePlugin) OnEvent(ctx context.Context, _ EventType, state *RequestState, next func() *PluginError) *PluginError {
	noSQL := state.SQLResult == nil || len(state.SQLResult.Rows) == 0
	noVector := len(state.Hits) == 0
	ungrounded := state.EffectiveKind == types.KindUnknown ||
		(state.EffectiveKind == types.KindContextual && noVector) ||
		(state.EffectiveKind == types.KindHybrid && noSQL && noVector)
	if ungrounded {
		state.Answer = types.UnavailableAnswer
		state.Routing = "unknown"
		return next()
	}

	var lastErr error
	for attempt := 0; attempt < len(backoffDelays)+1; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		answer, err := p.chatModel.GenerateChat(attemptCtx, []chatmodel.Message{
			{Role: "user", Content: state.Prompt},
		}, chatmodel.Options{Temperature: 0.1, MaxTokens: 2048})
		cancel()
		if err == nil {
			state.Answer = answer
			return next()
		}
		lastErr = err
		if attempt < len(backoffDelays) {
			select {
			case <-time.After(backoffDelays[attempt]):
			case <-ctx.Done():
				return NewPluginError(EventGenerate, "deadline exceeded during retry backoff").WithError(ctx.Err())
			}
		}
	}
	return NewPluginError(EventGenerate, "chat model unavailable after retries").WithError(lastErr)
}

// persistPlugin persists the turn and applies the non-fatal
// persistence-failure policy.
type persistPlugin struct {
	convs *conversation.Store
}

func (p *persistPlugin) ActivationEvents() []EventType { return []EventType{EventPersist} }

func (p *persistPlugin) OnEvent(ctx context.Context, _ EventType, state *RequestState, next func() *PluginError) *PluginError {
	if p.convs == nil {
		return next()
	}

	sources := make([]string, 0, len(state.Hits))
	for _, h := range state.Hits {
		sources = append(sources, h.Chunk.Source)
	}

	convID := state.ConversationID
	if convID == "" {
		conv, err := p.convs.StartConversation(ctx, state.Query)
		if err != nil {
			return NewPluginError(EventPersist, "persistence_failure").WithError(err)
		}
		convID = conv.ID
		state.ConversationID = convID
	}

	interaction, err := p.convs.AppendInteraction(ctx, convID, state.Query, state.Answer, sources, time.Since(state.StartedAt))
	if err != nil {
		return NewPluginError(EventPersist, "persistence_failure").WithError(err)
	}
	state.TurnNumber = interaction.TurnNumber
	return next()
}
