package rag

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/crossx-ai/ragengine/pkg/logger"
)

// Runtime defaults, applied wherever the caller leaves options unset.
const (
	DefaultTopK       = 4
	DefaultBM25Weight = 0.4
	// DefaultAudience is the most restrictive tier; callers must opt in to
	// anything broader.
	DefaultAudience = "b2c"

	defaultEmbedTimeout    = 10 * time.Second
	defaultGenerateTimeout = 30 * time.Second
)

// Service wires the store, the optional external providers, and the scoring
// pipeline behind two entry points: Retrieve and RetrieveAndGenerate.
// Retrieval is read-only and safe for concurrent use; ingestion is
// serialized through a single-writer mutex so delete-then-insert windows
// never interleave.
type Service struct {
	store     Store
	embedder  Embedder
	generator Generator

	embedTimeout    time.Duration
	generateTimeout time.Duration

	ingestMu sync.Mutex
}

// ServiceOption configures optional Service dependencies.
type ServiceOption func(*Service)

// WithEmbedder enables dense scoring. Useful in tests with a fake embedder
// that needs no API key.
func WithEmbedder(e Embedder) ServiceOption {
	return func(s *Service) { s.embedder = e }
}

// WithGenerator enables answer generation; without it every answer is the
// localized fallback.
func WithGenerator(g Generator) ServiceOption {
	return func(s *Service) { s.generator = g }
}

func WithEmbedTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.embedTimeout = d
		}
	}
}

func WithGenerateTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.generateTimeout = d
		}
	}
}

// NewService centralizes runtime defaults so every entry point gets
// identical, reproducible behavior.
func NewService(store Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:           store,
		embedTimeout:    defaultEmbedTimeout,
		generateTimeout: defaultGenerateTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close releases the underlying store.
func (s *Service) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}

// validateOptions rejects malformed options at the boundary and fills
// defaults. This is the only path that surfaces an error to retrieval
// callers; everything past it degrades instead of failing.
func validateOptions(opts *QueryOptions) error {
	if opts.TopK < 0 {
		return fmt.Errorf("%w: topK must not be negative, got %d", ErrInvalidOptions, opts.TopK)
	}
	if opts.TopK == 0 {
		opts.TopK = DefaultTopK
	}
	if opts.BM25Weight == nil {
		w := DefaultBM25Weight
		opts.BM25Weight = &w
	} else if *opts.BM25Weight < 0 || *opts.BM25Weight > 1 {
		return fmt.Errorf("%w: bm25Weight must be in [0,1], got %v", ErrInvalidOptions, *opts.BM25Weight)
	}
	if opts.Audience == "" {
		opts.Audience = DefaultAudience
	}
	return nil
}

// Retrieve runs the query pipeline: access filter, BM25 over the candidate
// set, optional dense scoring, hybrid ranking. An empty candidate set (empty
// corpus, or everything filtered) returns an empty slice without invoking
// any scorer. A failed query embedding degrades the call to lexical-only.
func (s *Service) Retrieve(ctx context.Context, query string, opts QueryOptions) ([]ScoredChunk, error) {
	if err := validateOptions(&opts); err != nil {
		return nil, err
	}

	candidates := FilterChunks(s.store.Chunks(), opts)
	if len(candidates) == 0 {
		return []ScoredChunk{}, nil
	}

	queryTokens := Tokenize(query)
	docTokens := make([][]string, len(candidates))
	for i, c := range candidates {
		docTokens[i] = Tokenize(c.Content)
	}
	bm25 := bm25Scores(queryTokens, docTokens)

	cosine := make([]float64, len(candidates))
	if s.embedder != nil {
		if qvec, err := s.embedQuery(ctx, query); err != nil {
			logger.Warn("query embedding failed, lexical-only scoring", "err", err)
		} else {
			for i, c := range candidates {
				if vec, ok := s.store.Embedding(c.ChunkID); ok {
					cosine[i] = cosineSimilarity(qvec, vec)
				}
			}
		}
	}

	return rankHybrid(candidates, normalizeScores(bm25), normalizeScores(cosine), *opts.BM25Weight, opts.TopK), nil
}

// embedQuery is the one retrieval-side network call, bounded by the embed
// timeout.
func (s *Service) embedQuery(ctx context.Context, query string) ([]float32, error) {
	ectx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()
	vecs, err := s.embedder.Embed(ectx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, ErrEmbeddingUnavailable
	}
	return vecs[0], nil
}

// askFilterLanguages maps answer language codes onto chunk language tags.
var askFilterLanguages = map[string]string{
	"ZH": "zh",
	"EN": "en",
	"JA": "ja",
	"KO": "ko",
}

// RetrieveAndGenerate is the full pipeline: intent routing, retrieval,
// citation building, grounded generation. Action-only intents skip
// retrieval entirely (the caller routes to its action pipeline). Zero
// retrieved chunks short-circuit to the localized fallback before any
// generation call; a failed generation call substitutes the fallback while
// keeping the already-computed citations.
func (s *Service) RetrieveAndGenerate(ctx context.Context, req AskRequest) (*AskResult, error) {
	intent := ClassifyIntent(req.Query)
	if intent == IntentAction {
		return &AskResult{
			Citations: []Citation{},
			Intent:    intent,
			Sources:   []string{},
		}, nil
	}

	language := req.Language
	if language == "" {
		language = "ZH"
	}

	chunks, err := s.Retrieve(ctx, req.Query, QueryOptions{
		Audience:      req.Audience,
		TopK:          req.TopK,
		TargetCountry: req.TargetCountry,
		Category:      req.Category,
		Language:      askFilterLanguages[language],
	})
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		return &AskResult{
			Answer:    FallbackFor(language),
			Citations: []Citation{},
			Intent:    intent,
			RAGUsed:   true,
			Sources:   []string{},
		}, nil
	}

	citations := buildCitations(chunks)
	sources := make([]string, len(citations))
	for i, c := range citations {
		sources[i] = c.DocID
	}

	answer := FallbackFor(language)
	if s.generator != nil {
		prompt := buildGroundingPrompt(req.Query, chunks, language)
		gctx, cancel := context.WithTimeout(ctx, s.generateTimeout)
		text, gerr := s.generator.Generate(gctx, prompt.System, prompt.User)
		cancel()
		if gerr != nil {
			logger.Warn("generation failed, returning fallback", "err", fmt.Errorf("%w: %v", ErrGenerationFailed, gerr))
		} else {
			answer = text
		}
	}

	return &AskResult{
		Answer:    answer,
		Citations: citations,
		Intent:    intent,
		RAGUsed:   true,
		Sources:   sources,
	}, nil
}
