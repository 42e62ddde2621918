package rag

import "errors"

var (
	// ErrMissingDocID marks an ingest input without a doc_id. Batch ingest
	// skips the document and continues.
	ErrMissingDocID = errors.New("document metadata has no doc_id")

	// ErrEmbeddingUnavailable scopes a failed or unconfigured embedding call
	// to one chunk or query; the affected candidate degrades to lexical-only
	// scoring.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrGenerationFailed marks a failed generation call; the localized
	// fallback answer is substituted and citations are kept.
	ErrGenerationFailed = errors.New("generation failed")

	// ErrInvalidOptions is the only engine error surfaced to callers:
	// malformed query options rejected before any work begins.
	ErrInvalidOptions = errors.New("invalid query options")
)

// IsInvalidOptions lets callers branch on boundary validation with a typed
// check instead of string parsing.
func IsInvalidOptions(err error) bool {
	return errors.Is(err, ErrInvalidOptions)
}
