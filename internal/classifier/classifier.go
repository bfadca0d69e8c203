// Package classifier implements the deterministic, pattern-based query
// router: no model call, never fails.
package classifier

import (
	"regexp"
	"strings"

	"github.com/nbaqa/hro/internal/types"
)

// statPatterns match statistical/SQL-shaped questions: superlatives,
// explicit stat tokens, aggregations, thresholds, named-entity interrogatives.
var statPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\btop\s+\d+\b`),
	regexp.MustCompile(`\bmost\b`),
	regexp.MustCompile(`\bhighest\b`),
	regexp.MustCompile(`\blowest\b`),
	regexp.MustCompile(`\b(pts|reb|ast|fg%|ft%|3p%|ts%|efg%|stl|blk|tov)\b`),
	regexp.MustCompile(`\b(points|rebounds|assists|steals|blocks|turnovers)\b`),
	regexp.MustCompile(`\baverage\b`),
	regexp.MustCompile(`\btotal\b`),
	regexp.MustCompile(`\bcount\b`),
	regexp.MustCompile(`\bmore than\s+\d+\b`),
	regexp.MustCompile(`\bless than\s+\d+\b`),
	regexp.MustCompile(`\bover\s+\d+\b`),
	regexp.MustCompile(`\bwho (has|scored|had)\b.*\b(most|highest|best)\b`),
}

// contextPatterns match qualitative, explanatory questions.
var contextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bwhy\b`),
	regexp.MustCompile(`\bhow\b`),
	regexp.MustCompile(`\bexplain\b`),
	regexp.MustCompile(`\bdiscuss\b`),
	regexp.MustCompile(`\bthink\b`),
	regexp.MustCompile(`\bbelieve\b`),
	regexp.MustCompile(`\bstyle\b`),
	regexp.MustCompile(`\bapproach\b`),
	regexp.MustCompile(`\bimpact\b`),
}

// hybridPatterns match a statistical sub-question conjoined with an
// explanatory connector.
var hybridPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(top|most|best).*(and|then)\s*(explain|why|what makes|how)`),
	regexp.MustCompile(`(?i)(compare|list|show).*\band\s*(explain|analyze|discuss)`),
	regexp.MustCompile(`(?i)(compare|versus|vs\.?)\b.*\b(valuable|better|impact|style)`),
	regexp.MustCompile(`(?i)\bstats?\b.*\band\b.*\b(explain|why|analyze)`),
	regexp.MustCompile(`(?i)(more|highest|most).*\bbut\b.*\b(why|how)`),
}

// Classify decides the routing kind for a raw query without ever calling a
// model. An empty or gibberish query yields UNKNOWN with confidence 0.
func Classify(query string) types.QueryClassification {
	lower := strings.ToLower(strings.TrimSpace(query))

	tokens := strings.Fields(lower)
	if len(tokens) < 2 {
		return types.QueryClassification{Kind: types.KindUnknown, Confidence: 0, Reason: "query too short"}
	}

	s := countMatches(statPatterns, lower)
	c := countMatches(contextPatterns, lower)
	h := countMatches(hybridPatterns, lower)

	switch {
	case h >= 1:
		conf := 0.6 + 0.1*float64(h)
		if conf > 0.9 {
			conf = 0.9
		}
		return types.QueryClassification{
			Kind: types.KindHybrid, Confidence: conf,
			StatMatches: s, ContextMatches: c, HybridMatches: h,
			Reason: "explicit hybrid connector matched",
		}
	case s >= 2 && c >= 1:
		return types.QueryClassification{
			Kind: types.KindHybrid, Confidence: 0.8,
			StatMatches: s, ContextMatches: c, HybridMatches: h,
			Reason: "multiple statistical patterns alongside a contextual pattern",
		}
	case s >= 1 && c == 0:
		conf := 0.5 + 0.1*float64(s)
		if conf > 0.9 {
			conf = 0.9
		}
		return types.QueryClassification{
			Kind: types.KindSQLOnly, Confidence: conf,
			StatMatches: s, ContextMatches: c, HybridMatches: h,
			Reason: "statistical pattern matched, no contextual pattern",
		}
	case c >= 1 && s == 0:
		conf := 0.5 + 0.1*float64(c)
		if conf > 0.85 {
			conf = 0.85
		}
		return types.QueryClassification{
			Kind: types.KindContextual, Confidence: conf,
			StatMatches: s, ContextMatches: c, HybridMatches: h,
			Reason: "contextual pattern matched, no statistical pattern",
		}
	default:
		return types.QueryClassification{
			Kind: types.KindUnknown, Confidence: 0,
			StatMatches: s, ContextMatches: c, HybridMatches: h,
			Reason: "no pattern family matched",
		}
	}
}

func countMatches(patterns []*regexp.Regexp, query string) int {
	count := 0
	for _, p := range patterns {
		if p.MatchString(query) {
			count++
		}
	}
	return count
}
