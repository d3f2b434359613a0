package pipeline

import (
	"sort"
	"time"

	"lifestream/internal/types"
)

// LogGroup is one map-phase unit. Entries are timestamp-ascending; OrderKey
// is the Unix-millisecond start of the group's span.
type LogGroup struct {
	Label    string
	OrderKey int64
	Entries  []types.LogEntry
}

// Group partitions entries by report granularity. With no period bounds, or a
// type it does not know, it groups by local calendar day. Entries outside the
// period are not filtered here; every input entry lands in exactly one group.
func Group(typ types.ReportType, entries []types.LogEntry, periodStart, periodEnd string, loc *time.Location) []LogGroup {
	if loc == nil {
		loc = time.Local
	}
	if periodStart == "" || periodEnd == "" {
		return groupByDay(entries, loc)
	}
	start, err1 := types.ParseDate(periodStart, loc)
	end, err2 := types.ParseDate(periodEnd, loc)
	if err1 != nil || err2 != nil {
		return groupByDay(entries, loc)
	}

	switch typ {
	case types.ReportDaily:
		label := periodStart
		if periodStart != periodEnd {
			label = periodStart + " ~ " + periodEnd
		}
		if len(entries) == 0 {
			return nil
		}
		return []LogGroup{{Label: label, OrderKey: start.UnixMilli(), Entries: sortedCopy(entries)}}
	case types.ReportWeekly:
		return groupWeekly(entries, start, end, loc)
	case types.ReportMonthly:
		return groupMonthly(entries, start, end, loc)
	case types.ReportYearly:
		return groupByMonth(entries, loc)
	default:
		return groupByDay(entries, loc)
	}
}

// groupWeekly emits one group per non-empty day in [start, end]. Entries on
// days outside the range keep their own day groups so nothing is dropped.
func groupWeekly(entries []types.LogEntry, start, end time.Time, loc *time.Location) []LogGroup {
	byDay := bucketByDay(entries, loc)
	var out []LogGroup
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format(types.DateLayout)
		if day := byDay[key]; len(day) > 0 {
			out = append(out, LogGroup{Label: key, OrderKey: d.UnixMilli(), Entries: day})
			delete(byDay, key)
		}
	}
	return appendLeftovers(out, byDay, loc)
}

// groupMonthly emits 7-day windows aligned to start, the last one clipped to end.
func groupMonthly(entries []types.LogEntry, start, end time.Time, loc *time.Location) []LogGroup {
	byDay := bucketByDay(entries, loc)
	var out []LogGroup
	for ws := start; !ws.After(end); ws = ws.AddDate(0, 0, 7) {
		we := ws.AddDate(0, 0, 6)
		if we.After(end) {
			we = end
		}
		var window []types.LogEntry
		for d := ws; !d.After(we); d = d.AddDate(0, 0, 1) {
			key := d.Format(types.DateLayout)
			window = append(window, byDay[key]...)
			delete(byDay, key)
		}
		if len(window) > 0 {
			label := ws.Format(types.DateLayout) + " ~ " + we.Format(types.DateLayout)
			out = append(out, LogGroup{Label: label, OrderKey: ws.UnixMilli(), Entries: window})
		}
	}
	return appendLeftovers(out, byDay, loc)
}

// groupByMonth emits one "YYYY-MM" group per month with entries, ordered by
// the month's start instant.
func groupByMonth(entries []types.LogEntry, loc *time.Location) []LogGroup {
	idx := map[string]int{}
	var out []LogGroup
	for _, e := range entries {
		t := e.Time(loc)
		key := t.Format("2006-01")
		i, ok := idx[key]
		if !ok {
			monthStart := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
			i = len(out)
			idx[key] = i
			out = append(out, LogGroup{Label: key, OrderKey: monthStart.UnixMilli()})
		}
		out[i].Entries = append(out[i].Entries, e)
	}
	for i := range out {
		sortEntries(out[i].Entries)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderKey < out[j].OrderKey })
	return out
}

func groupByDay(entries []types.LogEntry, loc *time.Location) []LogGroup {
	return appendLeftovers(nil, bucketByDay(entries, loc), loc)
}

// appendLeftovers adds the remaining day buckets as per-day groups and keeps
// the whole list ordered by OrderKey.
func appendLeftovers(out []LogGroup, byDay map[string][]types.LogEntry, loc *time.Location) []LogGroup {
	if len(byDay) == 0 {
		return out
	}
	for key, day := range byDay {
		d, _ := types.ParseDate(key, loc)
		out = append(out, LogGroup{Label: key, OrderKey: d.UnixMilli(), Entries: day})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].OrderKey != out[j].OrderKey {
			return out[i].OrderKey < out[j].OrderKey
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func bucketByDay(entries []types.LogEntry, loc *time.Location) map[string][]types.LogEntry {
	byDay := map[string][]types.LogEntry{}
	for _, e := range entries {
		key := types.DayKey(e.Timestamp, loc)
		byDay[key] = append(byDay[key], e)
	}
	for _, day := range byDay {
		sortEntries(day)
	}
	return byDay
}

func sortedCopy(entries []types.LogEntry) []types.LogEntry {
	out := append([]types.LogEntry(nil), entries...)
	sortEntries(out)
	return out
}

func sortEntries(entries []types.LogEntry) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp < entries[j].Timestamp })
}
