package types

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// DateLayout is the calendar-date format used for periods and day keys.
const DateLayout = "2006-01-02"

// ReportType selects the grouping granularity of a report.
type ReportType string

const (
	ReportDaily   ReportType = "DAILY"
	ReportWeekly  ReportType = "WEEKLY"
	ReportMonthly ReportType = "MONTHLY"
	ReportYearly  ReportType = "YEARLY"
)

// ReportTypes lists the closed set of report types in ascending granularity.
var ReportTypes = []ReportType{ReportDaily, ReportWeekly, ReportMonthly, ReportYearly}

func (t ReportType) Valid() bool {
	switch t {
	case ReportDaily, ReportWeekly, ReportMonthly, ReportYearly:
		return true
	}
	return false
}

func ParseReportType(s string) (ReportType, error) {
	t := ReportType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("invalid report type %q", s)
	}
	return t, nil
}

// Language is one of the two supported output locales.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageChinese Language = "zh"
)

var languageMatcher = language.NewMatcher([]language.Tag{
	language.English,
	language.SimplifiedChinese,
})

// ParseLanguage negotiates a BCP 47 tag ("en", "en-US", "zh", "zh-CN", "zh-Hans")
// against the supported locales.
func ParseLanguage(s string) (Language, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return "", fmt.Errorf("language is required")
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid language %q: %w", s, err)
	}
	_, idx, conf := languageMatcher.Match(tag)
	if conf == language.No {
		return "", fmt.Errorf("unsupported language %q", s)
	}
	if idx == 1 {
		return LanguageChinese, nil
	}
	return LanguageEnglish, nil
}

// LogEntry is one timestamped journal entry. Timestamp is Unix milliseconds.
type LogEntry struct {
	ID        string   `json:"id"`
	Timestamp int64    `json:"timestamp"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
}

func (e LogEntry) Time(loc *time.Location) time.Time {
	return time.UnixMilli(e.Timestamp).In(locationOrLocal(loc))
}

// ReportKey identifies at most one persisted report.
type ReportKey struct {
	UserID      string
	Type        ReportType
	PeriodStart string
	PeriodEnd   string
}

func (k ReportKey) String() string {
	return k.UserID + "|" + string(k.Type) + "|" + k.PeriodStart + "|" + k.PeriodEnd
}

// Report is a finished Markdown artifact for one key. CreatedAt is Unix milliseconds.
type Report struct {
	ID          string     `json:"id"`
	UserID      string     `json:"-"`
	Type        ReportType `json:"type"`
	PeriodStart string     `json:"periodStart"`
	PeriodEnd   string     `json:"periodEnd"`
	Content     string     `json:"content"`
	CreatedAt   int64      `json:"createdAt"`
}

func (r Report) Key() ReportKey {
	return ReportKey{UserID: r.UserID, Type: r.Type, PeriodStart: r.PeriodStart, PeriodEnd: r.PeriodEnd}
}

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate parses a strict YYYY-MM-DD date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if !isoDate.MatchString(s) {
		return time.Time{}, fmt.Errorf("%q must be YYYY-MM-DD", s)
	}
	t, err := time.ParseInLocation(DateLayout, s, locationOrLocal(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a calendar date", s)
	}
	return t, nil
}

// DayKey returns the local calendar date of a millisecond timestamp.
func DayKey(tsMillis int64, loc *time.Location) string {
	return time.UnixMilli(tsMillis).In(locationOrLocal(loc)).Format(DateLayout)
}

func locationOrLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
