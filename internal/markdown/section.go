package markdown

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// CuesAliases are the level-2 headings that name the cues block across the
// supported locales.
var CuesAliases = NewAliases(
	"Cues",
	"线索区（Cues）",
	"线索区 (Cues)",
	"线索区",
	"Cornell Cues",
)

// Aliases is a normalized heading-alias set. Build it once with NewAliases.
type Aliases struct {
	raw  []string
	norm []string
}

func NewAliases(names ...string) Aliases {
	a := Aliases{}
	seen := map[string]bool{}
	for _, n := range names {
		k := normalizeHeading(n)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		a.raw = append(a.raw, n)
		a.norm = append(a.norm, k)
	}
	return a
}

func (a Aliases) Names() []string { return append([]string(nil), a.raw...) }

// Match reports whether a heading text names this alias set. Exact matches on
// the normalized form win; otherwise a small edit distance is tolerated so that
// minor phrasing drift ("Cue", "Cornel Cues") still resolves.
func (a Aliases) Match(heading string) bool {
	h := normalizeHeading(heading)
	if h == "" {
		return false
	}
	for _, n := range a.norm {
		if h == n {
			return true
		}
	}
	for _, n := range a.norm {
		limit := 1
		if utf8.RuneCountInString(n) >= 10 {
			limit = 2
		}
		if utf8.RuneCountInString(n) <= limit {
			continue
		}
		if levenshtein.ComputeDistance(h, n) <= limit {
			return true
		}
	}
	return false
}

// ExtractSection returns the body of the first level-2 section whose heading
// matches aliases, from the heading line up to the next level-2 heading or the
// end of the document. ok is false when no heading matches.
func ExtractSection(md string, aliases Aliases) (string, bool) {
	_, section, _, ok := Split(md, aliases)
	return section, ok
}

// Split cuts md around the first matching level-2 section. before and after
// are trimmed; when nothing matches, before holds the whole document.
func Split(md string, aliases Aliases) (before, section, after string, ok bool) {
	lines := strings.Split(md, "\n")
	start := -1
	for i, line := range lines {
		if text, isH2 := level2Heading(line); isH2 && aliases.Match(text) {
			start = i
			break
		}
	}
	if start < 0 {
		return strings.TrimSpace(md), "", "", false
	}
	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if _, isH2 := level2Heading(lines[i]); isH2 {
			end = i
			break
		}
	}
	before = strings.TrimSpace(strings.Join(lines[:start], "\n"))
	section = strings.TrimSpace(strings.Join(lines[start:end], "\n"))
	after = strings.TrimSpace(strings.Join(lines[end:], "\n"))
	return before, section, after, true
}

func level2Heading(line string) (string, bool) {
	trimmed := strings.TrimRight(line, " \t\r")
	if !strings.HasPrefix(trimmed, "##") {
		return "", false
	}
	rest := trimmed[2:]
	if strings.HasPrefix(rest, "#") {
		return "", false
	}
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(strings.TrimRight(rest, "#")), true
}

// normalizeHeading folds case and drops punctuation, brackets and spacing so
// "线索区（Cues）" and "线索区 (cues)" compare equal.
func normalizeHeading(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
