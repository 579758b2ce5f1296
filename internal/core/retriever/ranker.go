package retriever

import (
	"math"
	"sort"
)

// LinearRanker scores every candidate with exact cosine similarity. O(n)
// per query, which is fine at the corpus sizes this service targets
// (hundreds to low thousands of chunks).
type LinearRanker struct{}

// Rank returns all candidates sorted by similarity descending; ties break
// by chunk identifier ascending so results are reproducible.
func (LinearRanker) Rank(query []float64, candidates []Candidate) []Ranked {
	ranked := make([]Ranked, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, Ranked{Candidate: c, Score: Cosine(query, c.Vector)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ChunkID < ranked[j].ChunkID
	})
	return ranked
}

// Cosine is the normalized dot product of a and b. If either norm is
// zero the similarity is defined as 0.0; there is no division by zero.
func Cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	for _, v := range a {
		normA += v * v
	}
	for _, v := range b {
		normB += v * v
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
