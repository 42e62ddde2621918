package rag

import (
	"strings"
	"testing"
)

func TestFallbackFor(t *testing.T) {
	if got := FallbackFor("ZH"); got != FallbackResponses["ZH"] {
		t.Fatalf("got %q", got)
	}
	if got := FallbackFor("FR"); got != FallbackResponses["EN"] {
		t.Fatalf("unknown language must fall back to English, got %q", got)
	}
	if got := FallbackFor(""); got != FallbackResponses["EN"] {
		t.Fatalf("empty language must fall back to English, got %q", got)
	}
}

func TestBuildCitationsTitleFallback(t *testing.T) {
	chunks := []ScoredChunk{
		{Chunk: Chunk{DocID: "D1", HeadingPath: "Visa > Fees", Metadata: map[string]string{MetaTitle: "Visa Guide"}}, Score: 0.456},
		{Chunk: Chunk{DocID: "D2", HeadingPath: "Payments"}, Score: 0.333},
		{Chunk: Chunk{DocID: "D3"}, Score: 0.125},
	}
	got := buildCitations(chunks)
	if len(got) != 3 {
		t.Fatalf("got %d citations", len(got))
	}
	if got[0].Title != "Visa Guide" {
		t.Fatalf("document title wins: %+v", got[0])
	}
	if got[1].Title != "Payments" {
		t.Fatalf("heading path is the second choice: %+v", got[1])
	}
	if got[2].Title != "D3" {
		t.Fatalf("doc id is the last resort: %+v", got[2])
	}
	if got[0].Score != 0.46 || got[1].Score != 0.33 || got[2].Score != 0.13 {
		t.Fatalf("scores must round to two decimals: %+v", got)
	}
}

func TestBuildGroundingPrompt(t *testing.T) {
	chunks := []ScoredChunk{
		{Chunk: Chunk{DocID: "PAY-CN-001", Content: "[Visa]\nVisa rules.", RawContent: "Visa rules."}},
		{Chunk: Chunk{DocID: "PAY-CN-002", Content: "Cash limits."}},
	}
	p := buildGroundingPrompt("What are the rules?", chunks, "ZH")

	if p.User != "What are the rules?" {
		t.Fatalf("user turn must be the raw query, got %q", p.User)
	}
	if !strings.Contains(p.System, "[出处 1: PAY-CN-001]\nVisa rules.") {
		t.Fatalf("first block must carry raw content:\n%s", p.System)
	}
	// A chunk without RawContent falls back to its indexed content.
	if !strings.Contains(p.System, "[出处 2: PAY-CN-002]\nCash limits.") {
		t.Fatalf("second block missing:\n%s", p.System)
	}
	if !strings.Contains(p.System, FallbackResponses["ZH"]) {
		t.Fatalf("prompt must embed the exact localized fallback:\n%s", p.System)
	}
	if !strings.Contains(p.System, answerLanguageInstructions["ZH"]) {
		t.Fatalf("prompt must carry the answer-language instruction:\n%s", p.System)
	}
}

func TestBuildGroundingPromptUnknownLanguage(t *testing.T) {
	p := buildGroundingPrompt("q", nil, "FR")
	if !strings.Contains(p.System, FallbackResponses["EN"]) {
		t.Fatalf("unknown language must use the English fallback:\n%s", p.System)
	}
	if !strings.Contains(p.System, answerLanguageInstructions["EN"]) {
		t.Fatalf("unknown language must use the English instruction:\n%s", p.System)
	}
}
