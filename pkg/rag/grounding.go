package rag

import (
	"fmt"
	"math"
	"strings"
)

// FallbackResponses are the per-language sentences emitted when the
// knowledge base cannot answer. They are returned verbatim and the
// generation prompt instructs the model to reproduce them exactly, so edits
// here are user-visible contract changes.
var FallbackResponses = map[string]string{
	"ZH": "抱歉，我的知识库中暂时没有关于这个问题的具体信息。建议您通过官方渠道或联系客服获取最新资讯。",
	"EN": "I don't have this specific information in my current knowledge base. Please check official channels or contact support for the latest details.",
	"JA": "申し訳ありませんが、この件に関する具体的な情報は現在のナレッジベースには含まれておりません。",
	"KO": "죄송합니다. 현재 지식 베이스에서 이 질문에 대한 구체적인 정보를 찾을 수 없습니다.",
}

// FallbackFor returns the localized fallback sentence, defaulting to English
// for unsupported language codes.
func FallbackFor(language string) string {
	if s, ok := FallbackResponses[language]; ok {
		return s
	}
	return FallbackResponses["EN"]
}

var answerLanguageInstructions = map[string]string{
	"ZH": "请用中文回答。",
	"JA": "日本語で回答してください。",
	"KO": "한국어로 답하십시오.",
	"EN": "Please answer in English.",
}

// buildCitations maps ranked chunks to citation entries. Title falls back
// through document title, heading path, then doc id; scores are rounded to
// two decimals for display.
func buildCitations(chunks []ScoredChunk) []Citation {
	citations := make([]Citation, 0, len(chunks))
	for _, c := range chunks {
		title := c.Metadata[MetaTitle]
		if title == "" {
			title = c.HeadingPath
		}
		if title == "" {
			title = c.DocID
		}
		citations = append(citations, Citation{
			DocID: c.DocID,
			Title: title,
			Score: math.Round(c.Score*100) / 100,
		})
	}
	return citations
}

// promptEnvelope is the generation call input: a grounding system
// instruction plus the original query as the user turn.
type promptEnvelope struct {
	System string
	User   string
}

// buildGroundingPrompt assembles the strict-grounding envelope: outside
// knowledge is forbidden, insufficient context must yield the exact
// localized fallback, and sources must be cited by doc id. Context blocks
// embed each chunk's raw content labeled by ordinal and doc id.
func buildGroundingPrompt(query string, chunks []ScoredChunk, language string) promptEnvelope {
	blocks := make([]string, 0, len(chunks))
	for i, c := range chunks {
		raw := c.RawContent
		if raw == "" {
			raw = c.Content
		}
		blocks = append(blocks, fmt.Sprintf("[出处 %d: %s]\n%s", i+1, c.DocID, raw))
	}

	instruction, ok := answerLanguageInstructions[language]
	if !ok {
		instruction = answerLanguageInstructions["EN"]
	}

	system := fmt.Sprintf(`You are CrossX, an AI travel assistant. You MUST answer ONLY using the provided knowledge base context below.
STRICT RULES:
1. DO NOT use any external knowledge, training data, or guesses beyond the provided context.
2. If the context does not contain sufficient information to answer the question, you MUST output EXACTLY: "%s"
3. Cite the source doc_id when you use information from it, e.g. "[PAY-CN-001]".
4. Format the answer clearly with markdown (bold for key terms, bullet points for steps).
5. %s

KNOWLEDGE BASE CONTEXT:
---
%s
---`, FallbackFor(language), instruction, strings.Join(blocks, "\n\n---\n\n"))

	return promptEnvelope{System: system, User: query}
}
