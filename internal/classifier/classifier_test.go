package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nbaqa/hro/internal/types"
)

func TestClassifySQLOnly(t *testing.T) {
	result := Classify("Who has the most points this season?")
	assert.Equal(t, types.KindSQLOnly, result.Kind)
	assert.Greater(t, result.StatMatches, 0)
	assert.Zero(t, result.ContextMatches)
}

func TestClassifyContextual(t *testing.T) {
	result := Classify("Why does his shooting style work so well?")
	assert.Equal(t, types.KindContextual, result.Kind)
	assert.Zero(t, result.StatMatches)
	assert.Greater(t, result.ContextMatches, 0)
}

func TestClassifyHybrid(t *testing.T) {
	result := Classify("Who scored the most points and explain why he was so effective?")
	assert.Equal(t, types.KindHybrid, result.Kind)
}

func TestClassifyUnknown(t *testing.T) {
	t.Run("empty query", func(t *testing.T) {
		result := Classify("")
		assert.Equal(t, types.KindUnknown, result.Kind)
		assert.Zero(t, result.Confidence)
	})

	t.Run("single token", func(t *testing.T) {
		result := Classify("hello")
		assert.Equal(t, types.KindUnknown, result.Kind)
	})

	t.Run("no pattern family matches", func(t *testing.T) {
		result := Classify("tell me a joke please")
		assert.Equal(t, types.KindUnknown, result.Kind)
	})
}

func TestClassifyIsDeterministic(t *testing.T) {
	query := "What is the average points per game for the top 5 scorers?"
	first := Classify(query)
	second := Classify(query)
	assert.Equal(t, first, second)
}

func TestClassifyConfidenceBounded(t *testing.T) {
	queries := []string{
		"most points rebounds assists steals blocks turnovers average total count",
		"why how explain discuss think believe style approach impact",
	}
	for _, q := range queries {
		result := Classify(q)
		assert.GreaterOrEqual(t, result.Confidence, 0.0)
		assert.LessOrEqual(t, result.Confidence, 1.0)
	}
}
