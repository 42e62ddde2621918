package rag

import "testing"

func TestClassifyIntent(t *testing.T) {
	cases := []struct {
		query string
		want  IntentType
	}{
		{"How much is the visa fee?", IntentRAG},
		{"What is the cash limit when entering China?", IntentRAG},
		{"中国的签证政策是什么", IntentRAG},
		{"Book me a hotel", IntentAction},
		{"帮我找一家酒店", IntentAction},
		{"How do I book a hotel for my visa transfer", IntentBoth},
		{"预订机票的手续有哪些", IntentBoth},
	}
	for _, c := range cases {
		if got := ClassifyIntent(c.query); got != c.want {
			t.Errorf("ClassifyIntent(%q) = %q, want %q", c.query, got, c.want)
		}
	}
}

func TestClassifyIntentDefaultsToAction(t *testing.T) {
	for _, query := range []string{"", "hello there", "thanks!"} {
		if got := ClassifyIntent(query); got != IntentAction {
			t.Errorf("ClassifyIntent(%q) = %q, want action default", query, got)
		}
	}
}
