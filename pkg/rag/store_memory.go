package rag

import "sync"

// MemoryStore keeps the corpus in process memory with no persistence.
// Flushing is a no-op, so it suits tests and embedded single-run use.
type MemoryStore struct {
	mu      sync.RWMutex
	chunks  []Chunk
	vectors map[string][]float32
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vectors: make(map[string][]float32)}
}

func (s *MemoryStore) Chunks() []Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunks
}

func (s *MemoryStore) Embedding(chunkID string) ([]float32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vec, ok := s.vectors[chunkID]
	return vec, ok
}

func (s *MemoryStore) Replace(docID string, chunks []Chunk, embeddings map[string][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks, s.vectors = replaceDoc(s.chunks, s.vectors, docID, chunks, embeddings)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
