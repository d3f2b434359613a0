package prompt

import (
	"strings"
	"testing"
	"time"

	"lifestream/internal/markdown"
	"lifestream/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportTemplateHeadings(t *testing.T) {
	en := Report(types.ReportWeekly, "Week 12 (2024-03-18 ~ 2024-03-24)", types.LanguageEnglish)
	for _, want := range []string{
		"The report type is: WEEKLY (Week 12 (2024-03-18 ~ 2024-03-24)).",
		"## Cues\n### Keywords\n",
		"### Review Questions",
		"### Next Actions (Executable)\n- [ ] 3-8 action items",
		"### Evidence (From Logs)",
		"## Executive Summary",
		"## Key Achievements & Progress",
		"## Topics & Themes",
		"## Mood & Sentiment",
		"## Action Items for Next Period",
		"Do NOT output any <think> blocks",
	} {
		assert.Contains(t, en, want)
	}

	zh := Report(types.ReportMonthly, "三月", types.LanguageChinese)
	for _, want := range []string{"## 线索区（Cues）", "### 关键词", "### 复盘问题", "### 下一步行动（可执行）", "### 证据（来自日志）", "## 执行摘要", "## 下期行动建议", "Language: Chinese (Simplified)."} {
		assert.Contains(t, zh, want)
	}
}

func TestTemplatesArePure(t *testing.T) {
	a := Report(types.ReportDaily, "2024-01-01", types.LanguageEnglish)
	b := Report(types.ReportDaily, "2024-01-01", types.LanguageEnglish)
	assert.Equal(t, a, b)
	assert.Equal(t, Cues("x", types.LanguageChinese), Cues("x", types.LanguageChinese))
}

func TestCuesTemplateOnlyCuesBlock(t *testing.T) {
	for _, lang := range []types.Language{types.LanguageEnglish, types.LanguageChinese} {
		out := Cues("2024-01-01 ~ 2024-01-07", lang)
		h2 := 0
		for _, line := range strings.Split(out, "\n") {
			if strings.HasPrefix(line, "## ") {
				h2++
			}
		}
		assert.Equal(t, 1, h2, "cues template must carry exactly one level-2 heading")
		section, ok := markdown.ExtractSection(out, markdown.CuesAliases)
		require.True(t, ok)
		assert.Contains(t, section, "- [ ] ...")
		assert.Contains(t, out, "Do not output any other top-level sections.")
	}
}

func TestReportCuesHeadingIsExtractable(t *testing.T) {
	for _, lang := range []types.Language{types.LanguageEnglish, types.LanguageChinese} {
		section, ok := markdown.ExtractSection(Report(types.ReportYearly, "2024", lang), markdown.CuesAliases)
		require.True(t, ok)
		assert.NotContains(t, section, For(lang).ExecutiveSummary)
	}
}

func TestFormatLogs(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC).UnixMilli()
	entries := []types.LogEntry{{ID: "a", Timestamp: ts, Content: "ran 5k"}}
	assert.Equal(t, "[3/5/2024, 2:07:09 PM] ran 5k", FormatLogs(entries, types.LanguageEnglish, time.UTC))
	assert.Equal(t, "[2024/3/5 14:07:09] ran 5k", FormatLogs(entries, types.LanguageChinese, time.UTC))
}

func TestChunkAndMergeMessages(t *testing.T) {
	ts := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC).UnixMilli()
	msgs := ChunkSummary("2024-03-05 #1/2", []types.LogEntry{{Timestamp: ts, Content: "x"}}, types.LanguageEnglish, time.UTC)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Max 8 bullets")
	assert.True(t, strings.HasPrefix(msgs[1].Content, "Segment: 2024-03-05 #1/2\n\nLogs:\n["))

	merged := Merge("2024-03", []string{"- a", "- b"}, types.LanguageChinese)
	assert.Contains(t, merged[0].Content, "最多 10 条")
	assert.Equal(t, "分段：2024-03\n\n要点：\n- a\n- b", merged[1].Content)
}
