package markdown

import (
	"regexp"
	"strings"
)

var (
	thinkBlock    = regexp.MustCompile(`(?is)<think(?:ing)?>.*?</think(?:ing)?>`)
	thinkDangling = regexp.MustCompile(`(?is)<think(?:ing)?>.*$`)
	thinkStrayEnd = regexp.MustCompile(`(?i)</think(?:ing)?>`)
)

// StripThinking removes reasoning blocks emitted by the model.
// Closed blocks go first, then an unterminated start marker and everything
// after it, then stray end markers. The result is trimmed.
//
// The passes repeat until nothing changes, so the function is idempotent even
// when a removal joins two fragments into a new marker.
func StripThinking(text string) string {
	out := text
	for {
		next := thinkBlock.ReplaceAllString(out, "")
		next = thinkDangling.ReplaceAllString(next, "")
		next = thinkStrayEnd.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == out {
			return out
		}
		out = next
	}
}
