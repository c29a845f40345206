package embeddings

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrDimensionMismatch is returned when two vectors of different lengths
// are compared. It is a caller error, never swallowed.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Similarity returns the cosine similarity of a and b. A zero-magnitude
// vector yields exactly 0 rather than NaN.
func Similarity(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	den := math.Sqrt(na) * math.Sqrt(nb)
	if den == 0 {
		return 0, nil
	}
	return float32(dot / den), nil
}

// Normalize scales v to unit length in place. A zero vector is left as is.
func Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}

// RankedResult is one candidate that scored at or above the threshold.
// Index refers to the candidate's position in the input slice.
type RankedResult struct {
	Index int
	Score float32
}

// Rank scores every candidate against query, drops scores below threshold,
// and returns at most topK results sorted by score descending. Ties keep
// input order so results are reproducible.
func Rank(query []float32, candidates [][]float32, topK int, threshold float32) ([]RankedResult, error) {
	results := make([]RankedResult, 0, len(candidates))
	for i, c := range candidates {
		score, err := Similarity(query, c)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
		if score < threshold {
			continue
		}
		results = append(results, RankedResult{Index: i, Score: score})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
