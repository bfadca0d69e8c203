package conversation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateTitleShortUnchanged(t *testing.T) {
	assert.Equal(t, "short title", truncateTitle("short title"))
}

func TestTruncateTitleExactBoundaryUnchanged(t *testing.T) {
	s := strings.Repeat("a", titleMaxLen)
	assert.Equal(t, s, truncateTitle(s))
}

func TestTruncateTitleLongAppendsEllipsis(t *testing.T) {
	s := strings.Repeat("a", titleMaxLen+10)
	got := truncateTitle(s)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, titleMaxLen+3, len([]rune(got)))
}

func TestTruncateTitleMultiByteRunes(t *testing.T) {
	s := strings.Repeat("日", titleMaxLen+5)
	got := truncateTitle(s)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, titleMaxLen, len([]rune(got))-3)
}
