package statstore

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatScalarResult(t *testing.T) {
	result := &Result{Rows: []map[string]any{{"avg_pts": 27.5}}}
	assert.Equal(t, "AVERAGE Result: 27.5", Format(result))
}

func TestFormatCountResult(t *testing.T) {
	result := &Result{Rows: []map[string]any{{"count": int64(14)}}}
	assert.Equal(t, "COUNT Result: 14", Format(result))
}

func TestFormatEmptyResult(t *testing.T) {
	assert.Equal(t, "No rows returned.", Format(&Result{}))
}

func TestFormatMultiRowResult(t *testing.T) {
	result := &Result{Rows: []map[string]any{
		{"name": "Player A", "pts": 30.1},
		{"name": "Player B", "pts": 28.4},
	}}
	text := Format(result)
	assert.True(t, strings.HasPrefix(text, "1. "))
	assert.Contains(t, text, "Player A")
	assert.Contains(t, text, "2. ")
}

func TestFormatTruncatesAt20Rows(t *testing.T) {
	rows := make([]map[string]any, 25)
	for i := range rows {
		rows[i] = map[string]any{"id": i, "name": "row"}
	}
	text := Format(&Result{Rows: rows})
	assert.Contains(t, text, "... (5 more rows omitted)")
	assert.Equal(t, 20, strings.Count(text, "name=row"))
}

func TestIsEmptyButValid(t *testing.T) {
	empty := &Result{Rows: nil}
	nonEmpty := &Result{Rows: []map[string]any{{"a": 1}}}

	assert.True(t, IsEmptyButValid(empty, true))
	assert.False(t, IsEmptyButValid(empty, false))
	assert.False(t, IsEmptyButValid(nonEmpty, true))
}

func TestStoreSchemaIntrospection(t *testing.T) {
	s := &Store{schema: nbaSchema(), rowCap: 1000, timeout: time.Second}

	assert.True(t, s.KnownIdentifier("players"))
	assert.True(t, s.KnownIdentifier("PTS"))
	assert.False(t, s.KnownIdentifier("nonexistent_column"))

	text := s.SchemaPromptText()
	assert.Contains(t, text, "TABLE players")
	assert.Contains(t, text, "ts_pct")
}
