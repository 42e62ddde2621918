package eval

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GoldenFile is the YAML schema for a golden evaluation dataset: a corpus
// directory of markdown documents plus queries with doc-id relevance
// judgments.
type GoldenFile struct {
	Dataset   string       `yaml:"dataset"`
	CorpusDir string       `yaml:"corpus_dir"` // relative to the YAML file
	Cases     []GoldenCase `yaml:"cases"`
}

// GoldenCase is one evaluation query.
type GoldenCase struct {
	ID        string         `yaml:"id"`
	Query     string         `yaml:"query"`
	Audience  string         `yaml:"audience,omitempty"`
	Language  string         `yaml:"language,omitempty"`
	Relevance map[string]int `yaml:"relevance"` // doc_id -> grade
}

// LoadGolden parses a golden YAML file and resolves its corpus directory
// against the file's location.
func LoadGolden(path string) (*GoldenFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read golden file: %w", err)
	}
	var gf GoldenFile
	if err := yaml.Unmarshal(data, &gf); err != nil {
		return nil, fmt.Errorf("parse golden file: %w", err)
	}
	if gf.CorpusDir != "" && !filepath.IsAbs(gf.CorpusDir) {
		gf.CorpusDir = filepath.Join(filepath.Dir(path), gf.CorpusDir)
	}
	if len(gf.Cases) == 0 {
		return nil, fmt.Errorf("golden file %s has no cases", path)
	}
	return &gf, nil
}
