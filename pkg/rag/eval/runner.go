package eval

import (
	"context"
	"fmt"
	"time"

	"github.com/crossx-ai/ragengine/pkg/rag"
)

// Retriever is the slice of the engine the runner needs; *rag.Service
// satisfies it.
type Retriever interface {
	Retrieve(ctx context.Context, query string, opts rag.QueryOptions) ([]rag.ScoredChunk, error)
}

// CaseResult holds per-query metrics and the ranked doc ids behind them.
type CaseResult struct {
	CaseID  string   `json:"caseId"`
	Query   string   `json:"query"`
	Recall  float64  `json:"recall@k"`
	MRR     float64  `json:"mrr@k"`
	TopDocs []string `json:"topDocs"`
}

// Report aggregates a full evaluation run.
type Report struct {
	Dataset    string        `json:"dataset"`
	TopK       int           `json:"topK"`
	MeanRecall float64       `json:"meanRecall"`
	MeanMRR    float64       `json:"meanMRR"`
	Cases      []CaseResult  `json:"cases"`
	Duration   time.Duration `json:"duration"`
}

// Run evaluates every golden case against an already-ingested retriever.
func Run(ctx context.Context, r Retriever, gf *GoldenFile, topK int) (*Report, error) {
	if topK <= 0 {
		topK = 10
	}
	start := time.Now()
	report := &Report{Dataset: gf.Dataset, TopK: topK}

	for _, c := range gf.Cases {
		opts := rag.QueryOptions{
			Audience: c.Audience,
			Language: c.Language,
			TopK:     topK,
		}
		chunks, err := r.Retrieve(ctx, c.Query, opts)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", c.ID, err)
		}
		ranked := rankedDocIDs(chunks)
		res := CaseResult{
			CaseID:  c.ID,
			Query:   c.Query,
			Recall:  RecallAtK(ranked, c.Relevance, topK),
			MRR:     MRRAtK(ranked, c.Relevance, topK),
			TopDocs: ranked,
		}
		report.Cases = append(report.Cases, res)
		report.MeanRecall += res.Recall
		report.MeanMRR += res.MRR
	}

	n := float64(len(report.Cases))
	report.MeanRecall /= n
	report.MeanMRR /= n
	report.Duration = time.Since(start)
	return report, nil
}

// rankedDocIDs collapses ranked chunks to doc ids, keeping first-hit order.
func rankedDocIDs(chunks []rag.ScoredChunk) []string {
	seen := make(map[string]struct{}, len(chunks))
	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if _, ok := seen[c.DocID]; ok {
			continue
		}
		seen[c.DocID] = struct{}{}
		out = append(out, c.DocID)
	}
	return out
}
