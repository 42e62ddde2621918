package rag

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/crossx-ai/ragengine/pkg/logger"
)

// IngestDocument chunks one parsed document, requests embeddings when an
// embedder is configured, and commits the result. Re-ingesting a doc_id is
// delete-then-insert: all prior chunks and embeddings for the id are removed
// first. Per-chunk embedding failures are logged and leave that chunk
// lexical-only; they never abort the ingest. Returns the chunk count added.
func (s *Service) IngestDocument(ctx context.Context, doc Document) (int, error) {
	docID := strings.TrimSpace(doc.Metadata[MetaDocID])
	if docID == "" {
		return 0, ErrMissingDocID
	}

	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	pieces := ChunkMarkdown(doc.Content)
	chunks := make([]Chunk, 0, len(pieces))
	embeddings := make(map[string][]float32)

	for i, p := range pieces {
		content := p.Content
		if p.HeadingPath != "" {
			content = "[" + p.HeadingPath + "]\n" + p.Content
		}
		chunk := Chunk{
			ChunkID:     fmt.Sprintf("%s::%d", docID, i),
			DocID:       docID,
			Content:     content,
			RawContent:  p.Content,
			HeadingPath: p.HeadingPath,
			Metadata:    cloneMetadata(doc.Metadata),
		}
		chunks = append(chunks, chunk)

		if s.embedder == nil {
			continue
		}
		ectx, cancel := context.WithTimeout(ctx, s.embedTimeout)
		vecs, err := s.embedder.Embed(ectx, []string{content})
		cancel()
		if err != nil || len(vecs) == 0 || len(vecs[0]) == 0 {
			logger.Warn("embedding failed, chunk stays lexical-only", "chunk", chunk.ChunkID, "err", err)
			continue
		}
		embeddings[chunk.ChunkID] = vecs[0]
	}

	if err := s.store.Replace(docID, chunks, embeddings); err != nil {
		return 0, fmt.Errorf("commit %s: %w", docID, err)
	}
	return len(chunks), nil
}

// RemoveDocument deletes every chunk and embedding of docID and flushes.
func (s *Service) RemoveDocument(docID string) error {
	if docID == "" {
		return nil
	}
	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()
	return s.store.Replace(docID, nil, nil)
}

// IngestReport summarizes one batch ingest run.
type IngestReport struct {
	RunID       string       `json:"runId"`
	Files       []FileResult `json:"files"`
	TotalChunks int          `json:"totalChunks"`
	Skipped     int          `json:"skipped"`
}

// FileResult records one file's outcome; Err is set when the file was
// skipped or failed.
type FileResult struct {
	Path   string `json:"path"`
	DocID  string `json:"docId,omitempty"`
	Chunks int    `json:"chunks"`
	Err    string `json:"err,omitempty"`
}

// IngestDir walks dir for markdown files and ingests each independently:
// one file's failure or missing doc_id never blocks the rest.
func (s *Service) IngestDir(ctx context.Context, dir string) (*IngestReport, error) {
	report := &IngestReport{RunID: uuid.NewString()}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.ToLower(filepath.Ext(path)) != ".md" {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			report.Files = append(report.Files, FileResult{Path: rel, Err: readErr.Error()})
			report.Skipped++
			return nil
		}

		meta, body := ParseFrontmatter(string(raw))
		n, ingErr := s.IngestDocument(ctx, Document{Metadata: meta, Content: body})
		if ingErr != nil {
			logger.Warn("skipping document", "path", rel, "err", ingErr)
			report.Files = append(report.Files, FileResult{Path: rel, Err: ingErr.Error()})
			report.Skipped++
			return nil
		}
		report.Files = append(report.Files, FileResult{Path: rel, DocID: meta[MetaDocID], Chunks: n})
		report.TotalChunks += n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	logger.Info("ingest run complete", "run", report.RunID, "chunks", report.TotalChunks, "skipped", report.Skipped)
	return report, nil
}

// ParseFrontmatter splits a leading YAML block (delimited by --- lines) from
// a markdown body and flattens its scalar values to strings. Nested values
// are ignored; a malformed block is treated as body text.
func ParseFrontmatter(raw string) (map[string]string, string) {
	meta := make(map[string]string)
	if !strings.HasPrefix(raw, "---\n") {
		return meta, raw
	}
	end := strings.Index(raw[4:], "\n---\n")
	if end < 0 {
		return meta, raw
	}
	var fields map[string]any
	if err := yaml.Unmarshal([]byte(raw[4:4+end]), &fields); err != nil {
		return meta, raw
	}
	for k, v := range fields {
		switch v.(type) {
		case map[string]any, []any, nil:
			continue
		default:
			meta[k] = fmt.Sprint(v)
		}
	}
	return meta, raw[4+end+5:]
}

func cloneMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
