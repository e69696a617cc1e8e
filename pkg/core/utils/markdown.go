package utils

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// StripCodeFence removes an outer markdown code block so the content can
// be rendered or parsed directly.
func StripCodeFence(input string) string {
	cleaned := strings.TrimSpace(input)

	if strings.HasPrefix(cleaned, "```") && strings.HasSuffix(cleaned, "```") && len(cleaned) > 6 {
		cleaned = strings.TrimSuffix(cleaned, "```")
		cleaned = strings.TrimPrefix(cleaned, "```")
		// A language tag like ```json ends at the first newline.
		if idx := strings.IndexByte(cleaned, '\n'); idx >= 0 && !strings.ContainsAny(cleaned[:idx], " \t{[") {
			cleaned = cleaned[idx+1:]
		}
		cleaned = strings.TrimSpace(cleaned)
	}

	return cleaned
}

// ValidateMarkdown checks that a run summary parses as Markdown before it
// is written next to the JSON report. Goldmark is permissive, so this is a
// structural sanity check, not a lint.
func ValidateMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	doc := parser.Parse(text.NewReader([]byte(input)))
	return doc != nil
}
