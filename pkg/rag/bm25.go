package rag

import "math"

// Standard BM25 parameters.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// bm25Scores scores every candidate document against the query tokens.
// Document frequencies and the average length are computed over the
// candidate set itself, so access filtering must happen before scoring.
func bm25Scores(queryTokens []string, docTokens [][]string) []float64 {
	n := len(docTokens)
	scores := make([]float64, n)
	if n == 0 || len(queryTokens) == 0 {
		return scores
	}

	totalLen := 0
	df := make(map[string]int)
	for _, toks := range docTokens {
		totalLen += len(toks)
		seen := make(map[string]struct{}, len(toks))
		for _, t := range toks {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}
	avgLen := float64(totalLen) / float64(n)

	for i, toks := range docTokens {
		tf := make(map[string]int, len(toks))
		for _, t := range toks {
			tf[t]++
		}
		docLen := float64(len(toks))
		score := 0.0
		for _, q := range queryTokens {
			f := float64(tf[q])
			if f == 0 {
				continue
			}
			d := float64(df[q])
			idf := math.Log((float64(n)-d+0.5)/(d+0.5) + 1)
			score += idf * (f * (bm25K1 + 1)) / (f + bm25K1*(1-bm25B+bm25B*(docLen/avgLen)))
		}
		scores[i] = score
	}
	return scores
}
