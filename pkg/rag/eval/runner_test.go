package eval

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/crossx-ai/ragengine/pkg/rag"
)

type fixedRetriever struct {
	byQuery map[string][]rag.ScoredChunk
}

func (f fixedRetriever) Retrieve(_ context.Context, query string, _ rag.QueryOptions) ([]rag.ScoredChunk, error) {
	return f.byQuery[query], nil
}

func scored(docID, chunkID string) rag.ScoredChunk {
	return rag.ScoredChunk{Chunk: rag.Chunk{DocID: docID, ChunkID: chunkID}}
}

func TestRunAggregates(t *testing.T) {
	r := fixedRetriever{byQuery: map[string][]rag.ScoredChunk{
		// Two chunks of the same doc; doc ids must be deduplicated.
		"visa fee":   {scored("A", "A::0"), scored("A", "A::1"), scored("B", "B::0")},
		"cash limit": {scored("C", "C::0")},
	}}
	gf := &GoldenFile{
		Dataset: "smoke",
		Cases: []GoldenCase{
			{ID: "q1", Query: "visa fee", Relevance: map[string]int{"A": 2}},
			{ID: "q2", Query: "cash limit", Relevance: map[string]int{"Z": 1}},
		},
	}

	report, err := Run(context.Background(), r, gf, 5)
	if err != nil {
		t.Fatal(err)
	}
	if report.Dataset != "smoke" || report.TopK != 5 {
		t.Fatalf("report header: %+v", report)
	}
	if len(report.Cases) != 2 {
		t.Fatalf("cases: %+v", report.Cases)
	}

	q1 := report.Cases[0]
	if q1.Recall != 1 || q1.MRR != 1 {
		t.Fatalf("q1 metrics: %+v", q1)
	}
	if len(q1.TopDocs) != 2 || q1.TopDocs[0] != "A" || q1.TopDocs[1] != "B" {
		t.Fatalf("doc dedup must keep first-hit order: %v", q1.TopDocs)
	}

	q2 := report.Cases[1]
	if q2.Recall != 0 || q2.MRR != 0 {
		t.Fatalf("q2 metrics: %+v", q2)
	}

	if report.MeanRecall != 0.5 || report.MeanMRR != 0.5 {
		t.Fatalf("means: %+v", report)
	}
}

func TestLoadGolden(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "golden.yaml")
	content := `dataset: travel
corpus_dir: corpus
cases:
  - id: q1
    query: visa fee
    audience: b2c
    language: en
    relevance:
      PAY-CN-001: 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	gf, err := LoadGolden(path)
	if err != nil {
		t.Fatal(err)
	}
	if gf.Dataset != "travel" {
		t.Fatalf("dataset: %q", gf.Dataset)
	}
	if gf.CorpusDir != filepath.Join(dir, "corpus") {
		t.Fatalf("corpus dir must resolve against the yaml file: %q", gf.CorpusDir)
	}
	c := gf.Cases[0]
	if c.ID != "q1" || c.Audience != "b2c" || c.Relevance["PAY-CN-001"] != 2 {
		t.Fatalf("case: %+v", c)
	}
}

func TestLoadGoldenRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("dataset: x\ncases: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadGolden(path); err == nil {
		t.Fatal("a golden file without cases must be rejected")
	}
}
