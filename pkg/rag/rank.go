package rag

import (
	"math"
	"sort"
)

// normFloor guards the max-normalization divisor when a score vector is
// all-zero.
const normFloor = 0.0001

// cosineSimilarity returns 0 for missing vectors, dimensionality mismatch,
// or a zero-norm side.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// normalizeScores divides every score by the vector maximum so the best
// candidate lands on exactly 1. An all-zero vector stays all-zero thanks to
// the floored divisor.
func normalizeScores(scores []float64) []float64 {
	max := normFloor
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = s / max
	}
	return out
}

// rankHybrid blends the normalized lexical and dense score vectors with
// bm25Weight, sorts descending (stable, so ties keep filter-pass order) and
// truncates to topK.
func rankHybrid(candidates []Chunk, bm25Norm, cosineNorm []float64, bm25Weight float64, topK int) []ScoredChunk {
	ranked := make([]ScoredChunk, len(candidates))
	for i, c := range candidates {
		ranked[i] = ScoredChunk{
			Chunk: c,
			Score: bm25Weight*bm25Norm[i] + (1-bm25Weight)*cosineNorm[i],
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if topK > 0 && topK < len(ranked) {
		ranked = ranked[:topK]
	}
	return ranked
}
