package rag

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestWatcherIngestsAndRemoves(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(NewMemoryStore())

	w, err := NewWatcher(svc, dir, WithIngestDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	w.Start(context.Background())
	defer w.Stop()

	path := filepath.Join(dir, "guide.md")
	content := "---\ndoc_id: WATCH-1\n---\n# Guide\nBody long enough to become a chunk."
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	docPresent := func() bool {
		for _, c := range svc.store.Chunks() {
			if c.DocID == "WATCH-1" {
				return true
			}
		}
		return false
	}
	if !waitFor(t, 5*time.Second, docPresent) {
		t.Fatal("written file was never ingested")
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 5*time.Second, func() bool { return !docPresent() }) {
		t.Fatal("removed file's document was never deleted")
	}
}

func TestWatcherIgnoresNonMarkdown(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(NewMemoryStore())

	w, err := NewWatcher(svc, dir, WithIngestDebounce(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	w.Start(context.Background())
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"),
		[]byte("---\ndoc_id: TXT-1\n---\nbody"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := svc.store.Chunks(); len(got) != 0 {
		t.Fatalf("non-markdown files must be ignored: %+v", got)
	}
}
