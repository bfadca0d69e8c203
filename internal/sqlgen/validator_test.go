package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSchema struct {
	known map[string]bool
}

func (f fakeSchema) KnownIdentifier(name string) bool { return f.known[name] }

func TestValidateAndNormalizeAcceptsSimpleSelect(t *testing.T) {
	v := NewValidator()
	normalized, err := v.ValidateAndNormalize("SELECT name FROM players WHERE team_id = 1", nil)
	require.NoError(t, err)
	assert.Contains(t, normalized, "SELECT")
}

func TestValidateAndNormalizeAcceptsJoinAndAggregate(t *testing.T) {
	v := NewValidator()
	sql := `SELECT p.name, AVG(ps.pts) FROM players p JOIN player_stats ps ON ps.player_id = p.id GROUP BY p.name ORDER BY AVG(ps.pts) DESC`
	_, err := v.ValidateAndNormalize(sql, nil)
	assert.NoError(t, err)
}

func TestValidateAndNormalizeRejectsNonSelect(t *testing.T) {
	v := NewValidator()
	_, err := v.ValidateAndNormalize("DELETE FROM players WHERE id = 1", nil)
	assert.Error(t, err)
}

func TestValidateAndNormalizeRejectsMultipleStatements(t *testing.T) {
	v := NewValidator()
	_, err := v.ValidateAndNormalize("SELECT 1 FROM players; SELECT 1 FROM players", nil)
	assert.Error(t, err)
}

func TestValidateAndNormalizeRejectsUnknownTable(t *testing.T) {
	v := NewValidator()
	_, err := v.ValidateAndNormalize("SELECT * FROM pg_user", nil)
	assert.Error(t, err)
}

func TestValidateAndNormalizeRejectsSubqueries(t *testing.T) {
	v := NewValidator()
	_, err := v.ValidateAndNormalize("SELECT name FROM players WHERE team_id IN (SELECT id FROM teams)", nil)
	assert.Error(t, err)
}

func TestValidateAndNormalizeRejectsDangerousFunction(t *testing.T) {
	v := NewValidator()
	_, err := v.ValidateAndNormalize("SELECT pg_sleep(5) FROM players", nil)
	assert.Error(t, err)
}

func TestValidateAndNormalizeRejectsUnknownColumnWithSchema(t *testing.T) {
	v := NewValidator()
	schema := fakeSchema{known: map[string]bool{"players": true, "name": true}}
	_, err := v.ValidateAndNormalize("SELECT not_a_real_column FROM players", schema)
	assert.Error(t, err)
}

func TestValidateAndNormalizeAcceptsKnownColumnWithSchema(t *testing.T) {
	v := NewValidator()
	schema := fakeSchema{known: map[string]bool{"players": true, "name": true}}
	_, err := v.ValidateAndNormalize("SELECT name FROM players", schema)
	assert.NoError(t, err)
}

func TestValidateAndNormalizeSchemaScopedToSingleCall(t *testing.T) {
	v := NewValidator()
	schema := fakeSchema{known: map[string]bool{"players": true, "name": true}}
	_, err := v.ValidateAndNormalize("SELECT name FROM players", schema)
	require.NoError(t, err)

	// A later call without a schema must not retain the previous one.
	_, err = v.ValidateAndNormalize("SELECT name FROM players", nil)
	assert.NoError(t, err)
}
