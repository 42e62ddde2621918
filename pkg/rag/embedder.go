package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/crossx-ai/ragengine/pkg/logger"
)

// embedInputLimit caps text sent to the embedding provider, in runes.
const embedInputLimit = 8000

// Embedder computes dense vector representations for text. Implementations
// must be safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dims() int
}

// embeddingProviderInfo holds defaults for each supported provider.
type embeddingProviderInfo struct {
	BaseURL      string
	DefaultModel string
	Dims         int
	NeedsKey     bool
}

var embeddingProviders = map[string]embeddingProviderInfo{
	"openai": {
		BaseURL:      "https://api.openai.com/v1",
		DefaultModel: "text-embedding-3-small",
		Dims:         1536,
		NeedsKey:     true,
	},
	"ollama": {
		BaseURL:      "http://localhost:11434/v1",
		DefaultModel: "nomic-embed-text",
		Dims:         768,
		NeedsKey:     false,
	},
	"zhipu": {
		BaseURL:      "https://open.bigmodel.cn/api/paas/v4",
		DefaultModel: "embedding-3",
		Dims:         2048,
		NeedsKey:     true,
	},
}

// NewEmbedder constructs an Embedder from provider settings. Returns nil
// with a logged warning when the provider is unsupported or unconfigured —
// callers then run lexical-only retrieval.
func NewEmbedder(provider, model, apiBase, apiKey string, timeout time.Duration) Embedder {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return nil
	}
	info, supported := embeddingProviders[provider]
	if !supported {
		logger.Warn("unsupported embedding provider, running lexical-only", "provider", provider)
		return nil
	}
	if apiBase == "" {
		apiBase = info.BaseURL
	}
	if apiKey == "" && info.NeedsKey {
		logger.Warn("embedding provider requires api key, running lexical-only", "provider", provider)
		return nil
	}
	if model == "" {
		model = info.DefaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &httpEmbedder{
		apiBase: strings.TrimRight(apiBase, "/"),
		apiKey:  apiKey,
		model:   model,
		dims:    info.Dims, // 0 means discover on first call
		client:  &http.Client{Timeout: timeout},
	}
}

// httpEmbedder calls an OpenAI-compatible /v1/embeddings endpoint.
type httpEmbedder struct {
	apiBase  string
	apiKey   string
	model    string
	client   *http.Client
	dimsOnce sync.Once
	dims     int
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (e *httpEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = truncateRunes(t, embedInputLimit)
	}

	body, err := json.Marshal(embeddingRequest{Model: e.model, Input: input})
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiBase+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode embedding response: %w", err)
	}
	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(result.Data), len(texts))
	}

	vecs := make([][]float32, len(texts))
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("embedding response index %d out of range", d.Index)
		}
		vecs[d.Index] = d.Embedding
	}

	if e.dims == 0 && len(vecs) > 0 && len(vecs[0]) > 0 {
		e.dimsOnce.Do(func() { e.dims = len(vecs[0]) })
	}
	return vecs, nil
}

func (e *httpEmbedder) Dims() int {
	return e.dims
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
