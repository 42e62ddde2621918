package rag

import "regexp"

type intentCategory int

const (
	catKnowledge intentCategory = iota
	catAction
)

// intentPatterns is the fixed routing table, evaluated in order. Two
// independent families: knowledge-seeking phrasing (question forms, policy
// and travel-document vocabulary in English and Chinese) and action phrasing
// (booking verbs, find-me requests). Swappable for a learned classifier
// without changing ClassifyIntent's contract.
var intentPatterns = []struct {
	re  *regexp.Regexp
	cat intentCategory
}{
	{regexp.MustCompile(`(?i)how (do|can|to|does)|what is|what are|where (do|can|can i)|when (do|can|is)|why (do|is)`), catKnowledge},
	{regexp.MustCompile(`规定|政策|手续|指南|说明|如何|怎么|怎样|能否|什么是|哪些|多少钱|费用|限额|流程`), catKnowledge},
	{regexp.MustCompile(`(?i)visa|policy|guide|tutorial|how to|requirement|procedure|rule|regulation|fee|limit`), catKnowledge},
	{regexp.MustCompile(`(?i)支付宝|微信支付|alipay|wechat pay|12306|didi|滴滴|护照|passport|transit|签证`), catKnowledge},
	{regexp.MustCompile(`(?i)旅行建议|tips|advice|warning|注意|提醒|常见问题|faq`), catKnowledge},
	{regexp.MustCompile(`(?i)book|reserve|order|buy|purchase|ticket|hotel|预订|订酒店|订票|买票|打车|叫车`), catAction},
	{regexp.MustCompile(`(?i)find me|show me|get me|帮我找|给我推荐|搜索|查找`), catAction},
}

// ClassifyIntent routes a user message to retrieval, a direct action, or
// both. Unmatched queries default to action so ungrounded small talk never
// blocks on retrieval.
func ClassifyIntent(query string) IntentType {
	var knowledge, action bool
	for _, p := range intentPatterns {
		if knowledge && action {
			break
		}
		switch p.cat {
		case catKnowledge:
			knowledge = knowledge || p.re.MatchString(query)
		case catAction:
			action = action || p.re.MatchString(query)
		}
	}
	switch {
	case knowledge && action:
		return IntentBoth
	case knowledge:
		return IntentRAG
	default:
		return IntentAction
	}
}
