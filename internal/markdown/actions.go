package markdown

import (
	"regexp"
	"strings"
)

var checklistItem = regexp.MustCompile(`^\s*- \[(?: |x|X)\] (.+)$`)

// ExtractActionItems returns checklist item texts in document order.
func ExtractActionItems(md string) []string {
	var out []string
	for _, line := range strings.Split(md, "\n") {
		m := checklistItem.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		if item := strings.TrimSpace(m[1]); item != "" {
			out = append(out, item)
		}
	}
	return out
}
