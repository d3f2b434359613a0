// Package prompt renders the fixed instruction templates sent to the model.
// Every function here is pure: same inputs, same text.
package prompt

import (
	"fmt"
	"strings"
	"time"

	llmclient "lifestream/internal/llm/client"
	"lifestream/internal/types"
)

// Report renders the full report system instruction.
func Report(typ types.ReportType, periodName string, lang types.Language) string {
	l := For(lang)
	var b strings.Builder
	b.WriteString("You are an expert personal assistant and life coach.\n")
	b.WriteString("Your task is to analyze a stream of daily journal logs and create a structured summary report.\n\n")
	fmt.Fprintf(&b, "The report type is: %s (%s).\n", typ, periodName)
	fmt.Fprintf(&b, "Language: %s.\n\n", l.LanguageName)
	fmt.Fprintf(&b, "Structure the output in Markdown with the following sections (Use %s for headers and content):\n\n", l.HeaderLang)
	writeCuesSkeleton(&b, l, true)
	section(&b, l.ExecutiveSummary, l.ExecutiveSummaryHint)
	section(&b, l.Achievements, l.AchievementsHint)
	section(&b, l.Topics, l.TopicsHint)
	section(&b, l.Mood, l.MoodHint)
	section(&b, l.NextPeriod, l.NextPeriodHint)
	b.WriteString("Keep the tone professional yet supportive and introspective.\n\n")
	b.WriteString("Do NOT output any <think> blocks or internal reasoning.\n")
	return b.String()
}

// Cues renders the standalone cues instruction. It forbids any heading other
// than the cues block.
func Cues(periodName string, lang types.Language) string {
	l := For(lang)
	var b strings.Builder
	b.WriteString("You are a precise assistant.\n")
	b.WriteString("Your task is to read the journal logs for the period and produce ONLY a Cornell-style cues section in Markdown.\n\n")
	fmt.Fprintf(&b, "Period: %s.\n", periodName)
	fmt.Fprintf(&b, "Language: %s.\n\n", l.LanguageName)
	b.WriteString("Output MUST be valid Markdown and MUST follow this exact structure:\n\n")
	writeCuesSkeleton(&b, l, false)
	b.WriteString("Rules:\n")
	b.WriteString("- Do not output any other top-level sections.\n")
	b.WriteString("- Questions MUST be questions only; do not include answers.\n")
	b.WriteString("- Next actions MUST be actionable and concrete; use - [ ] task list items.\n")
	b.WriteString("- Evidence MUST quote from the provided logs with a timestamp (at least YYYY-MM-DD). Do not fabricate.\n")
	b.WriteString("- Do NOT output any <think> blocks or internal reasoning.\n")
	return b.String()
}

func writeCuesSkeleton(b *strings.Builder, l Locale, withHints bool) {
	fmt.Fprintf(b, "## %s\n", l.Cues)
	items := []struct{ title, hint, placeholder string }{
		{l.Keywords, l.KeywordsHint, "- ..."},
		{l.Questions, l.QuestionsHint, "1. ..."},
		{l.NextActions, l.NextActionsHint, "- [ ] ..."},
		{l.Evidence, l.EvidenceHint, `- YYYY-MM-DD ... "..."`},
	}
	for _, it := range items {
		fmt.Fprintf(b, "### %s\n", it.title)
		if withHints {
			b.WriteString(it.hint + "\n\n")
		} else {
			b.WriteString(it.placeholder + "\n\n")
		}
	}
}

func section(b *strings.Builder, title, hint string) {
	fmt.Fprintf(b, "## %s\n%s\n\n", title, hint)
}

// FormatLogs renders entries one per line as "[local time] content".
func FormatLogs(entries []types.LogEntry, lang types.Language, loc *time.Location) string {
	l := For(lang)
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, "["+e.Time(loc).Format(l.TimeLayout)+"] "+e.Content)
	}
	return strings.Join(lines, "\n")
}

// LogsMessage is the user turn that carries the logs for a report or cues call.
func LogsMessage(entries []types.LogEntry, lang types.Language, loc *time.Location) string {
	return For(lang).LogsPreamble + "\n\n" + FormatLogs(entries, lang, loc)
}

// Final builds the two-message conversation for the synthesis call.
func Final(system string, entries []types.LogEntry, lang types.Language, loc *time.Location) []llmclient.Message {
	return []llmclient.Message{
		{Role: llmclient.RoleSystem, Content: system},
		{Role: llmclient.RoleUser, Content: LogsMessage(entries, lang, loc)},
	}
}

// ChunkSummary builds the map-phase conversation for one chunk of a group.
func ChunkSummary(label string, entries []types.LogEntry, lang types.Language, loc *time.Location) []llmclient.Message {
	l := For(lang)
	user := l.SegmentLabel + label + "\n\n" + l.LogsLabel + "\n" + FormatLogs(entries, lang, loc)
	return []llmclient.Message{
		{Role: llmclient.RoleSystem, Content: l.ChunkSystem},
		{Role: llmclient.RoleUser, Content: user},
	}
}

// Merge builds the conversation that folds several chunk summaries of one
// group into a single list.
func Merge(label string, partials []string, lang types.Language) []llmclient.Message {
	l := For(lang)
	user := l.SegmentLabel + label + "\n\n" + l.BulletsLabel + "\n" + strings.Join(partials, "\n")
	return []llmclient.Message{
		{Role: llmclient.RoleSystem, Content: l.MergeSystem},
		{Role: llmclient.RoleUser, Content: user},
	}
}
