package rag

import "strings"

// isCJK reports whether r is a Han, Hiragana, Katakana or Hangul character.
func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3040 && r <= 0x309F) ||
		(r >= 0x30A0 && r <= 0x30FF) ||
		(r >= 0xAC00 && r <= 0xD7AF)
}

// Tokenize splits text into lexical tokens. CJK runs lack word boundaries,
// so every character is emitted as a unigram plus every adjacent pair as a
// bigram. Non-CJK runs are case-folded, stripped to [a-z0-9] words, and
// words shorter than two characters are dropped. Duplicates are kept; term
// frequency counting depends on them.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	tokens := make([]string, 0, 16)

	var cjk []rune
	var latin strings.Builder

	flushCJK := func() {
		if len(cjk) == 0 {
			return
		}
		for _, c := range cjk {
			tokens = append(tokens, string(c))
		}
		for i := 0; i+1 < len(cjk); i++ {
			tokens = append(tokens, string(cjk[i])+string(cjk[i+1]))
		}
		cjk = cjk[:0]
	}
	flushLatin := func() {
		if latin.Len() == 0 {
			return
		}
		for _, w := range strings.Fields(latin.String()) {
			if len(w) >= 2 {
				tokens = append(tokens, w)
			}
		}
		latin.Reset()
	}

	for _, r := range lower {
		if isCJK(r) {
			flushLatin()
			cjk = append(cjk, r)
			continue
		}
		flushCJK()
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			latin.WriteRune(r)
		} else {
			latin.WriteByte(' ')
		}
	}
	flushCJK()
	flushLatin()
	return tokens
}
