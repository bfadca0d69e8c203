package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReturnsNilForEmptyAddr(t *testing.T) {
	c := New("", time.Minute)
	assert.Nil(t, c)
}

func TestNilCacheGetAlwaysMisses(t *testing.T) {
	var c *Cache
	var out string
	hit, err := c.Get(context.Background(), "some-key", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestNilCacheSetIsNoop(t *testing.T) {
	var c *Cache
	err := c.Set(context.Background(), "some-key", map[string]int{"a": 1})
	assert.NoError(t, err)
}

func TestNilCacheCloseIsNoop(t *testing.T) {
	var c *Cache
	assert.NoError(t, c.Close())
}

func TestKeyIsDeterministicAndNormalized(t *testing.T) {
	a := Key("sql", "  Who Leads The League?  ")
	b := Key("sql", "who leads the league?")
	assert.Equal(t, a, b)
}

func TestKeyDiffersByNamespace(t *testing.T) {
	a := Key("sql", "top scorers")
	b := Key("vector", "top scorers")
	assert.NotEqual(t, a, b)
}
