package rag

import "strings"

// FilterChunks applies the audience allow-list and the optional metadata
// pre-filters before any scoring happens. Audience is strict: a caller sees
// a chunk only when the chunk carries no audience tag or exactly the
// caller's tag, so a b2c caller can never receive a b2b chunk. Unset chunk
// fields never exclude.
func FilterChunks(chunks []Chunk, opts QueryOptions) []Chunk {
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if chunkVisible(c, opts) {
			out = append(out, c)
		}
	}
	return out
}

func chunkVisible(c Chunk, opts QueryOptions) bool {
	m := c.Metadata
	if opts.Audience != "" {
		if a := m[MetaAudience]; a != "" && a != opts.Audience {
			return false
		}
	}
	if !countryMatch(m[MetaTargetCountry], opts.TargetCountry) {
		return false
	}
	if !countryMatch(m[MetaSourceCountry], opts.SourceCountry) {
		return false
	}
	if opts.Category != "" {
		if cat := m[MetaCategory]; cat != "" && cat != opts.Category {
			return false
		}
	}
	if opts.Language != "" {
		// Prefix match lets a caller's "en" accept chunks tagged "en-US".
		if lang := m[MetaLanguage]; lang != "" && !strings.HasPrefix(lang, opts.Language) {
			return false
		}
	}
	return true
}

// countryMatch accepts on case-insensitive substring containment: chunk
// values like "CN, HK" match a caller's "cn".
func countryMatch(chunkVal, want string) bool {
	if want == "" || chunkVal == "" {
		return true
	}
	return strings.Contains(strings.ToLower(chunkVal), strings.ToLower(want))
}
