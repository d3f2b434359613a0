package pipeline

import (
	"fmt"
	"testing"
	"time"

	"lifestream/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(date string, hour int) int64 {
	d, err := time.ParseInLocation(types.DateLayout, date, time.UTC)
	if err != nil {
		panic(err)
	}
	return d.Add(time.Duration(hour) * time.Hour).UnixMilli()
}

func entry(id, date string, hour int) types.LogEntry {
	return types.LogEntry{ID: id, Timestamp: at(date, hour), Content: "entry " + id}
}

func flatten(groups []LogGroup) []string {
	var ids []string
	for _, g := range groups {
		for _, e := range g.Entries {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

func labels(groups []LogGroup) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Label
	}
	return out
}

func TestGroupWeeklySkipsEmptyDays(t *testing.T) {
	entries := []types.LogEntry{
		entry("b", "2024-03-05", 9),
		entry("a", "2024-03-02", 10),
		entry("a0", "2024-03-02", 8),
	}
	groups := Group(types.ReportWeekly, entries, "2024-03-01", "2024-03-07", time.UTC)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"2024-03-02", "2024-03-05"}, labels(groups))
	assert.Equal(t, []string{"a0", "a", "b"}, flatten(groups))
	assert.Less(t, groups[0].OrderKey, groups[1].OrderKey)
}

func TestGroupMonthlyWindows(t *testing.T) {
	entries := []types.LogEntry{
		entry("d1", "2024-03-01", 1),
		entry("d7", "2024-03-07", 1),
		entry("d8", "2024-03-08", 1),
		entry("d10", "2024-03-10", 1),
	}
	groups := Group(types.ReportMonthly, entries, "2024-03-01", "2024-03-10", time.UTC)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"2024-03-01 ~ 2024-03-07", "2024-03-08 ~ 2024-03-10"}, labels(groups))
	assert.Equal(t, []string{"d1", "d7"}, flatten(groups[:1]))

	// empty first window is omitted
	groups = Group(types.ReportMonthly, entries[2:], "2024-03-01", "2024-03-10", time.UTC)
	assert.Equal(t, []string{"2024-03-08 ~ 2024-03-10"}, labels(groups))
}

func TestGroupDailySingleGroup(t *testing.T) {
	entries := []types.LogEntry{entry("late", "2024-03-01", 20), entry("early", "2024-03-01", 6)}
	groups := Group(types.ReportDaily, entries, "2024-03-01", "2024-03-01", time.UTC)
	require.Len(t, groups, 1)
	assert.Equal(t, "2024-03-01", groups[0].Label)
	assert.Equal(t, []string{"early", "late"}, flatten(groups))
	assert.Equal(t, at("2024-03-01", 0), groups[0].OrderKey)

	groups = Group(types.ReportDaily, entries, "2024-03-01", "2024-03-02", time.UTC)
	assert.Equal(t, "2024-03-01 ~ 2024-03-02", groups[0].Label)
}

func TestGroupYearlyByMonth(t *testing.T) {
	entries := []types.LogEntry{
		entry("nov", "2024-11-03", 1),
		entry("jan2", "2024-01-20", 1),
		entry("jan1", "2024-01-02", 1),
	}
	groups := Group(types.ReportYearly, entries, "2024-01-01", "2024-12-31", time.UTC)
	assert.Equal(t, []string{"2024-01", "2024-11"}, labels(groups))
	assert.Equal(t, []string{"jan1", "jan2", "nov"}, flatten(groups))
	assert.Equal(t, at("2024-11-01", 0), groups[1].OrderKey)
}

func TestGroupFallsBackToDays(t *testing.T) {
	entries := []types.LogEntry{entry("y", "2024-02-02", 1), entry("x", "2024-02-01", 1)}
	for _, tc := range []struct {
		typ        types.ReportType
		start, end string
	}{
		{types.ReportWeekly, "", ""},
		{"", "2024-02-01", "2024-02-02"},
		{types.ReportMonthly, "bad", "2024-02-02"},
	} {
		groups := Group(tc.typ, entries, tc.start, tc.end, time.UTC)
		assert.Equal(t, []string{"2024-02-01", "2024-02-02"}, labels(groups))
	}
}

func TestGroupRespectsLocation(t *testing.T) {
	shanghai := time.FixedZone("CST", 8*3600)
	// 2024-03-01 20:00 UTC is already 2024-03-02 in UTC+8
	e := types.LogEntry{ID: "x", Timestamp: at("2024-03-01", 20)}
	groups := Group(types.ReportWeekly, []types.LogEntry{e}, "2024-03-01", "2024-03-07", shanghai)
	assert.Equal(t, []string{"2024-03-02"}, labels(groups))
}

func TestGroupIsPartition(t *testing.T) {
	var entries []types.LogEntry
	for i := 0; i < 60; i++ {
		day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i%40)
		entries = append(entries, types.LogEntry{ID: fmt.Sprint(i), Timestamp: day.Add(time.Duration(i) * time.Minute).UnixMilli(), Content: "c"})
	}
	for _, typ := range append([]types.ReportType{""}, types.ReportTypes...) {
		// the period deliberately covers only part of the entries
		groups := Group(typ, entries, "2024-03-05", "2024-03-25", time.UTC)
		ids := flatten(groups)
		assert.Len(t, ids, len(entries), "type %s", typ)
		seen := map[string]bool{}
		for _, id := range ids {
			assert.False(t, seen[id], "duplicate %s in %s", id, typ)
			seen[id] = true
		}
		for i := 1; i < len(groups); i++ {
			assert.LessOrEqual(t, groups[i-1].OrderKey, groups[i].OrderKey, "type %s", typ)
		}
		for _, g := range groups {
			for j := 1; j < len(g.Entries); j++ {
				assert.LessOrEqual(t, g.Entries[j-1].Timestamp, g.Entries[j].Timestamp)
			}
		}
	}
}

func TestChunk(t *testing.T) {
	mk := func(n int) types.LogEntry { return types.LogEntry{ID: fmt.Sprint(n), Content: string(make([]byte, n))} }
	entries := []types.LogEntry{mk(36), mk(36), mk(36), mk(500), mk(10)}
	chunks := Chunk(entries, 200, 64)
	require.Len(t, chunks, 4)
	assert.Len(t, chunks[0], 2)
	assert.Len(t, chunks[1], 1)
	assert.Equal(t, "500", chunks[2][0].ID, "oversized entry stands alone")
	assert.Len(t, chunks[3], 1)

	total := 0
	for _, c := range chunks {
		assert.NotEmpty(t, c)
		total += len(c)
	}
	assert.Equal(t, len(entries), total)
	assert.Nil(t, Chunk(nil, 100, 64))
	assert.Equal(t, 36+64+10+64, EstimateChars([]types.LogEntry{mk(36), mk(10)}, 64))
}
