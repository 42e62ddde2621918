// Package eval measures retrieval quality against golden datasets.
package eval

// RecallAtK computes the fraction of relevant documents found in the top-k
// ranked doc ids. Relevance grades > 0 count as relevant.
func RecallAtK(ranked []string, relevant map[string]int, k int) float64 {
	totalRelevant := 0
	for _, grade := range relevant {
		if grade > 0 {
			totalRelevant++
		}
	}
	if totalRelevant == 0 {
		return 0
	}
	limit := k
	if limit > len(ranked) {
		limit = len(ranked)
	}
	found := 0
	for i := 0; i < limit; i++ {
		if relevant[ranked[i]] > 0 {
			found++
		}
	}
	return float64(found) / float64(totalRelevant)
}

// MRRAtK returns the reciprocal rank of the first relevant document within
// the top-k, or 0 when none appears.
func MRRAtK(ranked []string, relevant map[string]int, k int) float64 {
	limit := k
	if limit > len(ranked) {
		limit = len(ranked)
	}
	for i := 0; i < limit; i++ {
		if relevant[ranked[i]] > 0 {
			return 1 / float64(i+1)
		}
	}
	return 0
}
