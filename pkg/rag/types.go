package rag

// Metadata keys recognized by ingestion and the access filter.
const (
	MetaDocID         = "doc_id"
	MetaAudience      = "audience"
	MetaTargetCountry = "target_country"
	MetaSourceCountry = "source_country"
	MetaCategory      = "category"
	MetaLanguage      = "language"
	MetaTitle         = "title"
)

// Chunk is the immutable unit of retrieval. Content carries the heading-path
// annotation used for indexing; RawContent is the unannotated text handed to
// generation.
type Chunk struct {
	ChunkID     string            `json:"chunkId"` // {docId}::{ordinal}
	DocID       string            `json:"docId"`
	Content     string            `json:"content"`
	RawContent  string            `json:"rawContent"`
	HeadingPath string            `json:"headingPath"`
	Metadata    map[string]string `json:"metadata"`
}

// Document is one parsed source document handed to ingestion: frontmatter
// already extracted into Metadata, body in Content.
type Document struct {
	Metadata map[string]string `json:"metadata"`
	Content  string            `json:"content"`
}

// QueryOptions controls one retrieval call. Zero TopK applies DefaultTopK;
// nil BM25Weight applies DefaultBM25Weight (0 is a meaningful weight, so the
// field is a pointer). Empty Audience defaults to the most restrictive tier.
type QueryOptions struct {
	Audience      string   `json:"audience,omitempty"`
	TopK          int      `json:"topK,omitempty"`
	BM25Weight    *float64 `json:"bm25Weight,omitempty"`
	TargetCountry string   `json:"target_country,omitempty"`
	SourceCountry string   `json:"source_country,omitempty"`
	Category      string   `json:"category,omitempty"`
	Language      string   `json:"language,omitempty"`
}

// ScoredChunk is a retrieval result: a chunk plus its hybrid score.
type ScoredChunk struct {
	Chunk
	Score float64 `json:"score"`
}

// Citation points an answer back at a source document.
type Citation struct {
	DocID string  `json:"docId"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// IntentType routes a user message: retrieval, direct action, or both.
type IntentType string

const (
	IntentRAG    IntentType = "rag"
	IntentAction IntentType = "action"
	IntentBoth   IntentType = "both"
)

// AskRequest drives the full retrieve-and-generate pipeline.
type AskRequest struct {
	Query         string `json:"query"`
	Audience      string `json:"audience,omitempty"`
	Language      string `json:"language,omitempty"` // ZH | EN | JA | KO
	TargetCountry string `json:"target_country,omitempty"`
	Category      string `json:"category,omitempty"`
	TopK          int    `json:"topK,omitempty"`
}

// AskResult is the pipeline output. Answer is empty when Intent is action
// (the caller routes to its action pipeline) and RAGUsed is false.
type AskResult struct {
	Answer    string     `json:"answer,omitempty"`
	Citations []Citation `json:"citations"`
	Intent    IntentType `json:"intentType"`
	RAGUsed   bool       `json:"ragUsed"`
	Sources   []string   `json:"sources"`
}
