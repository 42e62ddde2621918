package rag

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkMarkdownHeaderBoundaries(t *testing.T) {
	body := `# Payments
Cash limits apply when entering the country.

## Alipay
Foreign cards can be linked to Alipay for daily spending.

### Limits
Single transactions are capped for unverified accounts.

# Transit
The rail network accepts passport-linked tickets.`

	pieces := ChunkMarkdown(body)
	if len(pieces) != 4 {
		t.Fatalf("expected 4 chunks, got %d: %+v", len(pieces), pieces)
	}

	wantPaths := []string{
		"Payments",
		"Payments > Alipay",
		"Payments > Alipay > Limits",
		"Transit",
	}
	for i, want := range wantPaths {
		if pieces[i].HeadingPath != want {
			t.Fatalf("chunk %d headingPath: got %q, want %q", i, pieces[i].HeadingPath, want)
		}
	}

	// H1 reset must clear H2/H3.
	last := pieces[3]
	if last.H2 != "" || last.H3 != "" {
		t.Fatalf("new H1 must clear deeper headers: %+v", last)
	}
	if !strings.HasPrefix(last.Content, "# Transit") {
		t.Fatalf("header line belongs to the new chunk: %q", last.Content)
	}
}

func TestChunkMarkdownDropsShortSlivers(t *testing.T) {
	body := "# A\nshort\n# B\nThis section is clearly long enough to keep around."
	pieces := ChunkMarkdown(body)
	if len(pieces) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %+v", len(pieces), pieces)
	}
	if pieces[0].H1 != "B" {
		t.Fatalf("surviving chunk should sit under B, got %+v", pieces[0])
	}
}

func TestChunkMarkdownEmptyBody(t *testing.T) {
	if pieces := ChunkMarkdown(""); len(pieces) != 0 {
		t.Fatalf("empty body must produce no chunks, got %+v", pieces)
	}
}

func TestChunkMarkdownSplitsOversized(t *testing.T) {
	para := strings.Repeat("x", 700)
	body := "# Big\n" + para + "\n\n" + para + "\n\n" + para
	pieces := ChunkMarkdown(body)
	if len(pieces) < 2 {
		t.Fatalf("oversized chunk must be re-split, got %d pieces", len(pieces))
	}
	for i, p := range pieces {
		if n := utf8.RuneCountInString(p.Content); n > maxChunkRunes {
			t.Fatalf("piece %d still oversized: %d runes", i, n)
		}
		if p.HeadingPath != "Big" {
			t.Fatalf("re-split pieces inherit header context, got %q", p.HeadingPath)
		}
	}
}

func TestChunkMarkdownUnderLimitPassesThrough(t *testing.T) {
	body := "# Small\nJust a normal sized section that fits in one chunk."
	pieces := ChunkMarkdown(body)
	if len(pieces) != 1 {
		t.Fatalf("expected passthrough, got %d pieces", len(pieces))
	}
}
