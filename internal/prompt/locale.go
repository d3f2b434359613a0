package prompt

import "lifestream/internal/types"

// Locale holds every localized string the templates use. Headings and field
// order are the same for all locales so downstream extraction works everywhere.
type Locale struct {
	LanguageName string // "English", "Chinese (Simplified)"
	HeaderLang   string // language named in the "use X for headers" instruction

	Cues        string
	Keywords    string
	Questions   string
	NextActions string
	Evidence    string

	KeywordsHint    string
	QuestionsHint   string
	NextActionsHint string
	EvidenceHint    string

	ExecutiveSummary     string
	ExecutiveSummaryHint string
	Achievements         string
	AchievementsHint     string
	Topics               string
	TopicsHint           string
	Mood                 string
	MoodHint             string
	NextPeriod           string
	NextPeriodHint       string

	ChunkSystem  string
	MergeSystem  string
	SegmentLabel string // "Segment: "
	LogsLabel    string // "Logs:"
	BulletsLabel string // "Bullets:"
	TimeLayout   string
	LogsPreamble string
}

var locales = map[types.Language]Locale{
	types.LanguageEnglish: {
		LanguageName: "English",
		HeaderLang:   "English",

		Cues:        "Cues",
		Keywords:    "Keywords",
		Questions:   "Review Questions",
		NextActions: "Next Actions (Executable)",
		Evidence:    "Evidence (From Logs)",

		KeywordsHint:    "- Up to 6 keywords (unordered list).",
		QuestionsHint:   "1. 5-10 questions (ordered list). Questions only, no answers.",
		NextActionsHint: "- [ ] 3-8 action items (task list). Each item must be executable within 30-120 minutes or be the smallest next step.",
		EvidenceHint:    "- Provide evidence (unordered list). Each item MUST include a log timestamp (at least YYYY-MM-DD) + a quoted snippet (10-30 words). Do not fabricate.",

		ExecutiveSummary:     "Executive Summary",
		ExecutiveSummaryHint: "A brief 2-3 sentence overview.",
		Achievements:         "Key Achievements & Progress",
		AchievementsHint:     "Bullet points of completed tasks or wins.",
		Topics:               "Topics & Themes",
		TopicsHint:           "What occupied the user's mind mostly?",
		Mood:                 "Mood & Sentiment",
		MoodHint:             "General emotional trend.",
		NextPeriod:           "Action Items for Next Period",
		NextPeriodHint:       "Suggestions based on unfinished business or patterns. Keep consistent with the action items in the Cues section; you may elaborate, but do not change the wording of the action items.",

		ChunkSystem:  "You are a precise assistant. Summarize the given logs into bullet points. Output ONLY a Markdown unordered list (each line starts with -). No extra sections. Max 8 bullets.",
		MergeSystem:  "You are a precise assistant. Merge and deduplicate the following bullet summaries into ONE Markdown unordered list. Output ONLY the list. Max 10 bullets.",
		SegmentLabel: "Segment: ",
		LogsLabel:    "Logs:",
		BulletsLabel: "Bullets:",
		TimeLayout:   "1/2/2006, 3:04:05 PM",
		LogsPreamble: "Here are the logs for the period:",
	},
	types.LanguageChinese: {
		LanguageName: "Chinese (Simplified)",
		HeaderLang:   "Chinese",

		Cues:        "线索区（Cues）",
		Keywords:    "关键词",
		Questions:   "复盘问题",
		NextActions: "下一步行动（可执行）",
		Evidence:    "证据（来自日志）",

		KeywordsHint:    "- 最多 6 个关键词（无序列表）。",
		QuestionsHint:   "1. 5-10 个问题（有序列表）。只写问题，不要写答案。",
		NextActionsHint: "- [ ] 3-8 条行动项（任务列表）。每条必须可执行、可在 30-120 分钟内完成或拆成最小下一步。",
		EvidenceHint:    "- 为上面的洞察/行动提供证据（无序列表）。每条必须包含日志时间戳（至少 YYYY-MM-DD）+ 引号内原文片段（10-30 字）。不要编造。",

		ExecutiveSummary:     "执行摘要",
		ExecutiveSummaryHint: "2-3 句简要概述。",
		Achievements:         "关键成就与进展",
		AchievementsHint:     "完成的任务或胜利的要点（可用列表）。",
		Topics:               "话题与主题",
		TopicsHint:           "主要关注点。",
		Mood:                 "情绪与感受",
		MoodHint:             "整体情绪趋势。",
		NextPeriod:           "下期行动建议",
		NextPeriodHint:       "基于未完成事务或模式的建议。建议与线索区的行动项保持一致或进一步解释，但不要改变行动项的表述。",

		ChunkSystem:  "你是一个严谨的助理。请把给定日志压缩成要点摘要，只输出 Markdown 无序列表（以 - 开头），不输出其他段落。每条要点尽量包含关键信息（任务/结果/进展），最多 8 条。",
		MergeSystem:  "你是一个严谨的助理。下面是同一时间段的多段要点摘要，请合并去重为一个 Markdown 无序列表（以 - 开头），不输出其他段落，最多 10 条。",
		SegmentLabel: "分段：",
		LogsLabel:    "日志：",
		BulletsLabel: "要点：",
		TimeLayout:   "2006/1/2 15:04:05",
		LogsPreamble: "Here are the logs for the period:",
	},
}

// For returns the locale table for lang, defaulting to English.
func For(lang types.Language) Locale {
	if l, ok := locales[lang]; ok {
		return l
	}
	return locales[types.LanguageEnglish]
}
