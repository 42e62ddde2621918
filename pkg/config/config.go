// Package config loads engine configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// StorePath is the bbolt database the corpus is persisted to.
	StorePath string `env:"RAG_STORE_PATH" envDefault:".rag/index.db"`
	// DocsDir is the default knowledge-base directory for batch ingest.
	DocsDir string `env:"RAG_DOCS_DIR" envDefault:"docs"`

	TopK       int     `env:"RAG_TOP_K" envDefault:"4"`
	BM25Weight float64 `env:"RAG_BM25_WEIGHT" envDefault:"0.4"`

	// Embedding provider settings. Provider empty means lexical-only mode.
	EmbeddingProvider string        `env:"RAG_EMBEDDING_PROVIDER"`
	EmbeddingModel    string        `env:"RAG_EMBEDDING_MODEL"`
	EmbeddingAPIBase  string        `env:"RAG_EMBEDDING_API_BASE"`
	EmbeddingAPIKey   string        `env:"RAG_EMBEDDING_API_KEY"`
	EmbedTimeout      time.Duration `env:"RAG_EMBED_TIMEOUT" envDefault:"10s"`

	// Generation provider settings (OpenAI-compatible chat completions).
	GenerationModel   string        `env:"RAG_GENERATION_MODEL" envDefault:"gpt-4o-mini"`
	GenerationAPIBase string        `env:"RAG_GENERATION_API_BASE" envDefault:"https://api.openai.com/v1"`
	GenerationAPIKey  string        `env:"OPENAI_API_KEY"`
	GenerateTimeout   time.Duration `env:"RAG_GENERATE_TIMEOUT" envDefault:"30s"`
}

// Load reads configuration from the environment and applies sane floors so
// every entry point gets identical runtime behavior.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 4
	}
	if cfg.BM25Weight < 0 || cfg.BM25Weight > 1 {
		cfg.BM25Weight = 0.4
	}
	if cfg.EmbedTimeout <= 0 {
		cfg.EmbedTimeout = 10 * time.Second
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 30 * time.Second
	}
	return cfg, nil
}
