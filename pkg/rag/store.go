package rag

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	bolt "go.etcd.io/bbolt"
)

// Store holds the ingested corpus: chunks in insertion order plus an
// optional embedding per chunk id. Implementations must support concurrent
// readers; writes come from a single serialized ingestion flow.
type Store interface {
	// Chunks returns a stable snapshot in insertion order. Callers must not
	// mutate the returned slice or the chunks it holds.
	Chunks() []Chunk
	// Embedding returns the stored vector for a chunk id, if present.
	Embedding(chunkID string) ([]float32, bool)
	// Replace removes every chunk and embedding belonging to docID, inserts
	// the new set, and flushes to persistent state before returning. A nil
	// chunk slice deletes the document.
	Replace(docID string, chunks []Chunk, embeddings map[string][]float32) error
	Close() error
}

var (
	bucketChunks  = []byte("chunks")
	bucketVectors = []byte("vectors")
)

// FileStore persists the corpus in a bbolt database: chunks as JSON under
// positional keys (preserving insertion order), embeddings as packed little-
// endian float32 under their chunk id. The full state lives in memory;
// Replace rewrites both buckets in one transaction and syncs, so a crash
// after a successful ingest cannot lose it.
type FileStore struct {
	db *bolt.DB

	mu      sync.RWMutex
	chunks  []Chunk
	vectors map[string][]float32
}

// OpenFileStore opens or creates the database at path and loads the corpus.
func OpenFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := bolt.Open(path, 0o644, &bolt.Options{NoSync: true})
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}
	s := &FileStore{db: db, vectors: make(map[string][]float32)}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *FileStore) load() error {
	return s.db.View(func(tx *bolt.Tx) error {
		if b := tx.Bucket(bucketChunks); b != nil {
			err := b.ForEach(func(_, v []byte) error {
				var c Chunk
				if err := json.Unmarshal(v, &c); err != nil {
					return fmt.Errorf("unmarshal chunk: %w", err)
				}
				s.chunks = append(s.chunks, c)
				return nil
			})
			if err != nil {
				return err
			}
		}
		if b := tx.Bucket(bucketVectors); b != nil {
			return b.ForEach(func(k, v []byte) error {
				vec := decodeVector(v)
				if vec != nil {
					s.vectors[string(k)] = vec
				}
				return nil
			})
		}
		return nil
	})
}

func (s *FileStore) Chunks() []Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunks
}

func (s *FileStore) Embedding(chunkID string) ([]float32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vec, ok := s.vectors[chunkID]
	return vec, ok
}

func (s *FileStore) Replace(docID string, chunks []Chunk, embeddings map[string][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nextChunks, nextVectors := replaceDoc(s.chunks, s.vectors, docID, chunks, embeddings)
	if err := s.flush(nextChunks, nextVectors); err != nil {
		return err
	}
	s.chunks = nextChunks
	s.vectors = nextVectors
	return nil
}

// flush rewrites both buckets from scratch in one transaction, then syncs
// (bbolt runs with NoSync; the explicit Sync at the commit boundary provides
// the durability the load/flush lifecycle promises).
func (s *FileStore) flush(chunks []Chunk, vectors map[string][]float32) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketChunks, bucketVectors} {
			if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
				return fmt.Errorf("delete bucket %s: %w", name, err)
			}
		}
		cb, err := tx.CreateBucket(bucketChunks)
		if err != nil {
			return err
		}
		key := make([]byte, 4)
		for i, c := range chunks {
			data, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("marshal chunk %s: %w", c.ChunkID, err)
			}
			binary.BigEndian.PutUint32(key, uint32(i))
			if err := cb.Put(key, data); err != nil {
				return err
			}
		}
		vb, err := tx.CreateBucket(bucketVectors)
		if err != nil {
			return err
		}
		for id, vec := range vectors {
			if err := vb.Put([]byte(id), encodeVector(vec)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.db.Sync()
}

func (s *FileStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// replaceDoc implements the shared delete-then-insert semantics: drop every
// chunk of docID, append the new set, and keep only embeddings whose chunk
// still exists so no dangling entry survives an ingestion cycle.
func replaceDoc(chunks []Chunk, vectors map[string][]float32, docID string, newChunks []Chunk, newVectors map[string][]float32) ([]Chunk, map[string][]float32) {
	next := make([]Chunk, 0, len(chunks)+len(newChunks))
	for _, c := range chunks {
		if c.DocID != docID {
			next = append(next, c)
		}
	}
	next = append(next, newChunks...)

	live := make(map[string]struct{}, len(next))
	for _, c := range next {
		live[c.ChunkID] = struct{}{}
	}
	nextVec := make(map[string][]float32, len(vectors)+len(newVectors))
	for id, vec := range vectors {
		if _, ok := live[id]; ok {
			nextVec[id] = vec
		}
	}
	for id, vec := range newVectors {
		if _, ok := live[id]; ok {
			nextVec[id] = vec
		}
	}
	return next, nextVec
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(data []byte) []float32 {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec
}
