package rag

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParseFrontmatter(t *testing.T) {
	raw := `---
doc_id: PAY-CN-001
audience: b2c
priority: 3
nested:
  skip: me
tags: [a, b]
---
# Body
Actual content.`

	meta, body := ParseFrontmatter(raw)
	if meta[MetaDocID] != "PAY-CN-001" || meta[MetaAudience] != "b2c" {
		t.Fatalf("meta: %#v", meta)
	}
	if meta["priority"] != "3" {
		t.Fatalf("scalars flatten to strings: %#v", meta)
	}
	if _, ok := meta["nested"]; ok {
		t.Fatalf("nested values are ignored: %#v", meta)
	}
	if _, ok := meta["tags"]; ok {
		t.Fatalf("list values are ignored: %#v", meta)
	}
	if body != "# Body\nActual content." {
		t.Fatalf("body: %q", body)
	}
}

func TestParseFrontmatterAbsentOrMalformed(t *testing.T) {
	cases := []string{
		"# No frontmatter\nbody",
		"---\ndoc_id: X\nnever terminated",
		"---\n: [not yaml\n---\nbody",
	}
	for _, raw := range cases {
		meta, body := ParseFrontmatter(raw)
		if len(meta) != 0 {
			t.Errorf("ParseFrontmatter(%q) meta = %#v, want empty", raw, meta)
		}
		if body != raw {
			t.Errorf("ParseFrontmatter(%q) body = %q, want input unchanged", raw, body)
		}
	}
}

func TestIngestDir(t *testing.T) {
	dir := t.TempDir()
	writeFile := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeFile("good.md", "---\ndoc_id: GOOD-1\n---\n# Topic\nLong enough body for one chunk.")
	writeFile("noid.md", "# Orphan\nThis file has no frontmatter doc id.")
	writeFile("ignored.txt", "not markdown")

	svc := NewService(NewMemoryStore())
	report, err := svc.IngestDir(context.Background(), dir)
	if err != nil {
		t.Fatal(err)
	}

	if report.RunID == "" {
		t.Fatal("report needs a run id")
	}
	if len(report.Files) != 2 {
		t.Fatalf("only markdown files count: %#v", report.Files)
	}
	if report.TotalChunks != 1 || report.Skipped != 1 {
		t.Fatalf("totals: %#v", report)
	}

	var good, noid *FileResult
	for i := range report.Files {
		switch report.Files[i].Path {
		case "good.md":
			good = &report.Files[i]
		case "noid.md":
			noid = &report.Files[i]
		}
	}
	if good == nil || good.DocID != "GOOD-1" || good.Chunks != 1 || good.Err != "" {
		t.Fatalf("good file result: %#v", good)
	}
	if noid == nil || noid.Err == "" {
		t.Fatalf("file without doc id must be recorded as skipped: %#v", noid)
	}

	chunks := svc.store.Chunks()
	if len(chunks) != 1 || chunks[0].DocID != "GOOD-1" {
		t.Fatalf("store contents: %+v", chunks)
	}
}

func TestIngestDirMissing(t *testing.T) {
	svc := NewService(NewMemoryStore())
	if _, err := svc.IngestDir(context.Background(), filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("missing directory must error")
	}
}

func TestIngestDocumentReingestReplaces(t *testing.T) {
	svc := NewService(NewMemoryStore())
	meta := map[string]string{MetaDocID: "A"}
	ingestDoc(t, svc, meta, "# First\nOriginal body long enough to chunk.\n# Second\nAnother section with enough text.")
	if got := len(svc.store.Chunks()); got != 2 {
		t.Fatalf("initial ingest: %d chunks", got)
	}

	ingestDoc(t, svc, meta, "# Only\nReplacement body long enough to chunk.")
	chunks := svc.store.Chunks()
	if len(chunks) != 1 {
		t.Fatalf("re-ingest must replace, not append: %+v", chunks)
	}
	if chunks[0].ChunkID != "A::0" {
		t.Fatalf("ordinals restart on re-ingest: %q", chunks[0].ChunkID)
	}
}
