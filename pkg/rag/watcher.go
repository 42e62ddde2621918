package rag

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/crossx-ai/ragengine/pkg/logger"
)

const defaultIngestDebounce = 2 * time.Second

// Watcher monitors a knowledge-base directory and keeps the store current:
// changed or added markdown files are re-ingested after a debounce window,
// removed files have their documents deleted from the store. Ingestion
// flushes immediately, so no separate persistence tier is needed.
type Watcher struct {
	svc     *Service
	docsDir string
	fsw     *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	debounce time.Duration

	mu       sync.Mutex
	docByRel map[string]string // relative path -> docID, from the last ingest
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

func WithIngestDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// NewWatcher creates a recursive watcher over docsDir for the service.
func NewWatcher(svc *Service, docsDir string, opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		svc:      svc,
		docsDir:  docsDir,
		fsw:      fsw,
		debounce: defaultIngestDebounce,
		docByRel: make(map[string]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := addRecursive(fsw, docsDir); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start begins watching in a background goroutine. The context controls the
// watcher lifecycle.
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.loop(ctx)
	}()
}

// Stop cancels the watcher and waits for the loop to finish.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.fsw.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	resetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.debounce)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addRecursive(w.fsw, event.Name)
					continue
				}
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
				continue
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.removeDoc(event.Name)
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				resetTimer()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("watcher error", "err", err)
		case <-timerC:
			w.reingest(ctx)
		}
	}
}

// reingest runs a full directory pass and refreshes the path-to-docID map
// used for removals.
func (w *Watcher) reingest(ctx context.Context) {
	report, err := w.svc.IngestDir(ctx, w.docsDir)
	if err != nil {
		logger.Warn("watcher re-ingest failed", "err", err)
		return
	}
	w.mu.Lock()
	w.docByRel = make(map[string]string, len(report.Files))
	for _, f := range report.Files {
		if f.DocID != "" {
			w.docByRel[f.Path] = f.DocID
		}
	}
	w.mu.Unlock()
}

func (w *Watcher) removeDoc(path string) {
	rel, err := filepath.Rel(w.docsDir, path)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	w.mu.Lock()
	docID := w.docByRel[rel]
	delete(w.docByRel, rel)
	w.mu.Unlock()

	if docID == "" {
		return
	}
	if err := w.svc.RemoveDocument(docID); err != nil {
		logger.Warn("remove document failed", "doc", docID, "err", err)
	}
}

func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}
