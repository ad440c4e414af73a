package generator

import "strings"

// Sanitize strips markdown code fences, <think></think> internal tokens,
// and surrounding whitespace from a raw LLM response before it's parsed
// as JSON (spec §4.3).
func Sanitize(raw string) string {
	s := raw

	s = stripThinkTokens(s)
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)

	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
	}

	return strings.TrimSpace(s)
}

// stripThinkTokens removes every <think>...</think> span, including the
// empty-token case the spec calls out explicitly ("<think></think>").
func stripThinkTokens(s string) string {
	const open, close = "<think>", "</think>"
	for {
		start := strings.Index(s, open)
		if start == -1 {
			return s
		}
		end := strings.Index(s[start:], close)
		if end == -1 {
			// Unterminated — drop everything from the open tag onward.
			return s[:start]
		}
		end += start + len(close)
		s = s[:start] + s[end:]
	}
}
