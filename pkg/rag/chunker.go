package rag

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// minChunkRunes drops header-only slivers produced between back-to-back
	// headings.
	minChunkRunes = 20
	// maxChunkRunes triggers the paragraph re-split pass.
	maxChunkRunes = 1200
)

var paragraphBreakRE = regexp.MustCompile(`\n\n+`)

// chunkPiece is one chunker output: body text plus the header context in
// effect while it was accumulated.
type chunkPiece struct {
	Content     string
	H1, H2, H3  string
	HeadingPath string
}

// ChunkMarkdown splits a document body into semantically coherent pieces
// along H1-H3 boundaries, then re-splits any piece over maxChunkRunes on
// paragraph breaks. The header line itself starts the new piece so the text
// stays self-describing.
func ChunkMarkdown(body string) []chunkPiece {
	var h1, h2, h3 string
	var acc []string
	pieces := make([]chunkPiece, 0, 8)

	flush := func() {
		text := strings.TrimSpace(strings.Join(acc, "\n"))
		acc = acc[:0]
		if utf8.RuneCountInString(text) <= minChunkRunes {
			return
		}
		pieces = append(pieces, chunkPiece{
			Content:     text,
			H1:          h1,
			H2:          h2,
			H3:          h3,
			HeadingPath: joinHeadingPath(h1, h2, h3),
		})
	}

	for _, line := range strings.Split(body, "\n") {
		switch {
		case strings.HasPrefix(line, "# "):
			flush()
			h1, h2, h3 = strings.TrimSpace(line[2:]), "", ""
		case strings.HasPrefix(line, "## "):
			flush()
			h2, h3 = strings.TrimSpace(line[3:]), ""
		case strings.HasPrefix(line, "### "):
			flush()
			h3 = strings.TrimSpace(line[4:])
		}
		acc = append(acc, line)
	}
	flush()

	out := make([]chunkPiece, 0, len(pieces))
	for _, p := range pieces {
		out = append(out, splitOversized(p)...)
	}
	return out
}

// splitOversized greedily packs paragraphs into buffers of at most
// maxChunkRunes, each emitted piece inheriting the parent's header context.
// A single paragraph over the limit is emitted as-is.
func splitOversized(p chunkPiece) []chunkPiece {
	if utf8.RuneCountInString(p.Content) <= maxChunkRunes {
		return []chunkPiece{p}
	}
	parts := paragraphBreakRE.Split(p.Content, -1)
	out := make([]chunkPiece, 0, 4)
	buffer := ""
	emit := func(text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		next := p
		next.Content = text
		out = append(out, next)
	}
	for _, part := range parts {
		if buffer != "" && utf8.RuneCountInString(buffer+"\n\n"+part) > maxChunkRunes {
			emit(buffer)
			buffer = part
			continue
		}
		if buffer == "" {
			buffer = part
		} else {
			buffer += "\n\n" + part
		}
	}
	emit(buffer)
	return out
}

func joinHeadingPath(headers ...string) string {
	parts := make([]string, 0, len(headers))
	for _, h := range headers {
		if h != "" {
			parts = append(parts, h)
		}
	}
	return strings.Join(parts, " > ")
}
