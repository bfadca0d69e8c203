// Package vectorindex implements in-memory nearest-neighbor search over
// normalized embedding vectors: an N×D matrix of unit-norm vectors, a
// parallel slice of DocumentChunks, cosine similarity via inner product,
// oversample-then-quality-filter candidate selection, and adaptive-k
// estimation for the orchestrator.
package vectorindex

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/nbaqa/hro/internal/types"
)

const (
	oversampleFactor = 3
	qualityThreshold = 0.5
	normTolerance    = 1e-5
)

// Index is the read-only, shared-by-all-requests vector store.
type Index struct {
	dim        int
	matrix     [][]float32
	chunks     []types.DocumentChunk
	oversample int
	threshold  float64
}

// New builds an Index from parallel vectors and chunks. It fails if the two
// slices differ in length, or if any vector's L2 norm strays from 1 by more
// than normTolerance.
func New(vectors [][]float32, chunks []types.DocumentChunk) (*Index, error) {
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("vector count (%d) must equal chunk count (%d)", len(vectors), len(chunks))
	}
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, expected %d", i, len(v), dim)
		}
		if n := l2Norm(v); math.Abs(float64(n)-1) > normTolerance {
			return nil, fmt.Errorf("vector %d is not unit-normalized (norm=%f)", i, n)
		}
	}
	for i := range chunks {
		chunks[i].Position = i
	}
	return &Index{dim: dim, matrix: vectors, chunks: chunks, oversample: oversampleFactor, threshold: qualityThreshold}, nil
}

// Configure overrides the oversample factor and quality threshold read from
// config, in place of the package defaults.
func (idx *Index) Configure(oversample int, threshold float64) {
	if oversample > 0 {
		idx.oversample = oversample
	}
	if threshold > 0 {
		idx.threshold = threshold
	}
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int { return len(idx.chunks) }

// Filter narrows candidates by metadata, e.g. data_type, applied before
// the quality filter so callers can scope a query to a single corpus slice.
type Filter func(types.DocumentChunk) bool

// Search returns the top-k chunks most similar to queryVector, after
// oversampling and the deterministic quality filter. The query vector must
// be unit-normalized.
func (idx *Index) Search(queryVector []float32, k int, filter Filter) ([]types.RetrievalHit, error) {
	if idx.Len() > 0 && len(queryVector) != idx.dim {
		return nil, fmt.Errorf("invalid_input: query vector has dimension %d, expected %d", len(queryVector), idx.dim)
	}
	if n := l2Norm(queryVector); math.Abs(float64(n)-1) > normTolerance {
		return nil, fmt.Errorf("invalid_input: query vector is not unit-normalized (norm=%f)", n)
	}
	if k <= 0 || idx.Len() == 0 {
		return []types.RetrievalHit{}, nil
	}

	type scored struct {
		position int
		sim      float32
	}
	candidates := make([]scored, idx.Len())
	for i, v := range idx.matrix {
		candidates[i] = scored{position: i, sim: dot(queryVector, v)}
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].sim != candidates[b].sim {
			return candidates[a].sim > candidates[b].sim
		}
		return candidates[a].position < candidates[b].position
	})

	oversampled := k * idx.oversample
	if oversampled > idx.Len() {
		oversampled = idx.Len()
	}
	candidates = candidates[:oversampled]

	hits := make([]types.RetrievalHit, 0, k)
	for _, c := range candidates {
		if len(hits) >= k {
			break
		}
		chunk := idx.chunks[c.position]
		chunk.Position = c.position
		if filter != nil && !filter(chunk) {
			continue
		}
		if qualityScore(chunk) < idx.threshold {
			continue
		}
		hits = append(hits, types.RetrievalHit{
			Chunk: &chunk,
			Score: round1(float64(c.sim+1) / 2 * 100),
		})
	}
	return hits, nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func l2Norm(v []float32) float32 {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	return float32(math.Sqrt(float64(sum)))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

var wordSplit = regexp.MustCompile(`\s+`)

var recognizedDataTypes = map[types.DataType]bool{
	types.DataTypePlayerStats: true,
	types.DataTypeTeamStats:   true,
	types.DataTypeGameData:    true,
	types.DataTypeDiscussion:  true,
	types.DataTypeGlossary:    true,
}

// qualityScore is a deterministic quality filter: coherence (mean word
// length), metadata completeness, and a source authority bonus for
// glossary/player_stats chunks.
func qualityScore(chunk types.DocumentChunk) float64 {
	score := coherence(chunk.Text) + metadataCompleteness(chunk) + authorityBonus(chunk)
	if score > 1 {
		score = 1
	}
	return score
}

func coherence(text string) float64 {
	if len(text) < 20 {
		return 0
	}
	words := wordSplit.Split(strings.TrimSpace(text), -1)
	if len(words) == 0 {
		return 0
	}
	totalLen := 0
	for _, w := range words {
		totalLen += len([]rune(w))
	}
	mean := float64(totalLen) / float64(len(words))
	switch {
	case mean >= 4 && mean <= 8:
		return 0.6
	case (mean >= 3 && mean < 4) || (mean > 8 && mean <= 12):
		return 0.4
	default:
		return 0
	}
}

func metadataCompleteness(chunk types.DocumentChunk) float64 {
	score := 0.0
	if strings.TrimSpace(chunk.Source) != "" {
		score += 0.15
	}
	if dt, ok := chunk.Metadata["data_type"]; ok && recognizedDataTypes[types.DataType(dt)] {
		score += 0.15
	}
	return score
}

func authorityBonus(chunk types.DocumentChunk) float64 {
	dt := types.DataType(chunk.Metadata["data_type"])
	if dt == types.DataTypeGlossary || dt == types.DataTypePlayerStats {
		return 0.1
	}
	return 0
}

// comparisonMarkers / continuationMarkers / collectionMarkers back the
// adaptive-k estimation performed by the orchestrator ahead of Search.
var (
	comparisonMarkers   = regexp.MustCompile(`(?i)\b(compare|versus|vs\.?|better|worse)\b`)
	continuationMarkers = regexp.MustCompile(`(?i)\b(also|what about|and his|and her|and their)\b`)
	collectionMarkers   = regexp.MustCompile(`(?i)\b(top|best|teams|players)\b`)
)

// AdaptiveK estimates k_c (complexity) and k_r (recall requirement) and
// returns max(k_c, k_r). requestedK, if non-zero, is returned unchanged —
// the caller is responsible for honoring an explicit k.
func AdaptiveK(query string, requestedK int) int {
	if requestedK > 0 {
		return requestedK
	}
	kc := 5
	switch {
	case continuationMarkers.MatchString(query):
		kc = 9
	case comparisonMarkers.MatchString(query):
		kc = 7
	case collectionMarkers.MatchString(query):
		kc = 7
	}
	kr := 6
	if kc > kr {
		return kc
	}
	return kr
}
