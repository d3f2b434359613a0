package report

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"lifestream/internal/gateway/repository/archive"
	"lifestream/internal/gateway/repository/logstore"
	"lifestream/internal/gateway/repository/reportstore"
	"lifestream/internal/llm"
	llmclient "lifestream/internal/llm/client"
	"lifestream/internal/pipeline"
	"lifestream/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc     *Service
	fake    *llm.FakeClient
	reports *reportstore.MemoryStore
	logs    *logstore.MemoryStore
	archive *archive.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	quiet := log.New(io.Discard, "", 0)
	fake := llm.NewFakeClient()
	f := &fixture{
		fake:    fake,
		reports: reportstore.NewMemoryStore(),
		logs:    logstore.NewMemoryStore(time.UTC),
		archive: archive.NewMemoryStore(),
	}
	f.svc = New(Deps{
		Reports:    f.reports,
		Logs:       f.logs,
		Archive:    f.archive,
		Summarizer: pipeline.NewSummarizer(fake, pipeline.Config{Location: time.UTC}, quiet),
		Location:   time.UTC,
		Logger:     quiet,
	})
	clock := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return f
}

func (f *fixture) seed(t *testing.T, user string, day int, contents ...string) {
	t.Helper()
	entries := make([]types.LogEntry, 0, len(contents))
	for i, c := range contents {
		ts := time.Date(2024, 3, day, 8+i, 0, 0, 0, time.UTC).UnixMilli()
		entries = append(entries, types.LogEntry{Timestamp: ts, Content: c})
	}
	_, err := f.svc.ImportLogs(context.Background(), user, entries)
	require.NoError(t, err)
}

func weeklyReq(force bool) GenerateRequest {
	return GenerateRequest{Type: types.ReportWeekly, PeriodStart: "2024-03-04", PeriodEnd: "2024-03-10", Language: types.LanguageEnglish, Force: force}
}

func TestGenerateStoresAndReuses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "u", 5, "wrote tests", "went running")

	first, err := f.svc.Generate(ctx, "u", weeklyReq(false))
	require.NoError(t, err)
	assert.True(t, first.Generated)
	assert.Equal(t, "direct", f.fake.Phases())
	assert.Equal(t, []string{"fake action"}, first.ActionItems)
	assert.Contains(t, first.Cues, "## Cues")
	assert.NotContains(t, first.Cues, "Executive Summary")

	again, err := f.svc.Generate(ctx, "u", weeklyReq(false))
	require.NoError(t, err)
	assert.False(t, again.Generated)
	assert.Equal(t, first.Report, again.Report)
	assert.Len(t, f.fake.Calls(), 1)

	forced, err := f.svc.Generate(ctx, "u", weeklyReq(true))
	require.NoError(t, err)
	assert.True(t, forced.Generated)
	assert.Len(t, f.fake.Calls(), 2)
	assert.Equal(t, first.Report.ID, forced.Report.ID)
	assert.NotEqual(t, first.Report.Content, forced.Report.Content)
	assert.Greater(t, forced.Report.CreatedAt, first.Report.CreatedAt)

	archived, err := f.archive.Get(ctx, forced.Report.Key())
	require.NoError(t, err)
	assert.Equal(t, forced.Report.Content, string(archived))
}

func TestGeneratePassesPeriodName(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "u", 5, "entry")
	req := weeklyReq(false)
	req.PeriodName = "Week 10"
	_, err := f.svc.Generate(context.Background(), "u", req)
	require.NoError(t, err)

	calls := f.fake.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Messages[0].Content, "Week 10 (2024-03-04 ~ 2024-03-10)")
}

func TestGenerateValidation(t *testing.T) {
	cases := map[string]GenerateRequest{
		"bad start":      {Type: types.ReportWeekly, PeriodStart: "2024-3-4", PeriodEnd: "2024-03-10"},
		"bad end":        {Type: types.ReportWeekly, PeriodStart: "2024-03-04", PeriodEnd: "2024-02-30"},
		"end before":     {Type: types.ReportWeekly, PeriodStart: "2024-03-10", PeriodEnd: "2024-03-04"},
		"unknown type":   {Type: "HOURLY", PeriodStart: "2024-03-04", PeriodEnd: "2024-03-10"},
		"daily mismatch": {Type: types.ReportDaily, PeriodStart: "2024-03-04", PeriodEnd: "2024-03-05"},
		"bad language":   {Type: types.ReportWeekly, PeriodStart: "2024-03-04", PeriodEnd: "2024-03-10", Language: "fr"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			f.seed(t, "u", 5, "entry")
			_, err := f.svc.Generate(context.Background(), "u", req)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Empty(t, f.fake.Calls())
		})
	}
}

func TestGenerateWithoutLogs(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "u", 20, "outside the period")
	_, err := f.svc.Generate(context.Background(), "u", weeklyReq(false))
	assert.ErrorIs(t, err, ErrNoLogs)
	assert.Empty(t, f.fake.Calls())

	_, err = f.svc.Generate(context.Background(), "someone-else", weeklyReq(false))
	assert.ErrorIs(t, err, ErrNoLogs)
}

func TestGenerateUpstreamFailurePersistsNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "u", 5, "entry")
	f.fake.Err = &llmclient.UpstreamError{Backend: "llamacpp", URL: "http://x/v1/chat/completions", Kind: llmclient.KindUnreachable, Err: errors.New("refused")}

	_, err := f.svc.Generate(ctx, "u", weeklyReq(false))
	var ue *llmclient.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, llmclient.KindUnreachable, ue.Kind)

	_, err = f.reports.FindByKey(ctx, types.ReportKey{UserID: "u", Type: types.ReportWeekly, PeriodStart: "2024-03-04", PeriodEnd: "2024-03-10"})
	assert.ErrorIs(t, err, reportstore.ErrNotFound)
	keys, err := f.archive.List(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestGenerateStripsReasoning(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "u", 5, "entry")
	f.fake.Respond(llm.PhaseDirect, "<think>plan the answer</think>\n## Cues\n- [ ] call mom\n<think>unfinished")

	res, err := f.svc.Generate(context.Background(), "u", weeklyReq(false))
	require.NoError(t, err)
	assert.Equal(t, "## Cues\n- [ ] call mom", res.Report.Content)
	assert.Equal(t, []string{"call mom"}, res.ActionItems)
}

func TestConcurrentGenerateSameKeyCallsOnce(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "u", 5, "entry")

	var wg sync.WaitGroup
	ids := make([]string, 4)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := f.svc.Generate(context.Background(), "u", weeklyReq(false))
			if err == nil {
				ids[i] = res.Report.ID
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, f.fake.Calls(), 1)
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestGenerateCuesIsNotPersisted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "u", 5, "entry")

	res, err := f.svc.GenerateCues(ctx, "u", CuesRequest{PeriodStart: "2024-03-04", PeriodEnd: "2024-03-10", Language: "zh-CN"})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, []string{"fake action"}, res.ActionItems)
	assert.Equal(t, "cues", f.fake.Phases())

	all, err := f.svc.List(ctx, "u", "")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateOrFetch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	req := CreateRequest{Type: types.ReportDaily, PeriodStart: "2024-03-05", PeriodEnd: "2024-03-05", Content: "<thinking>x</thinking>mine"}

	r, created, err := f.svc.Create(ctx, "u", req)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "mine", r.Content)

	req.Content = "other"
	again, created, err := f.svc.Create(ctx, "u", req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, r, again)

	_, _, err = f.svc.Create(ctx, "u", CreateRequest{Type: types.ReportDaily, PeriodStart: "2024-03-05", PeriodEnd: "2024-03-06"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateIDCollision(t *testing.T) {
	f := newFixture(t)
	f.svc.newID = func() string { return "fixed" }
	_, _, err := f.svc.Create(context.Background(), "u", CreateRequest{Type: types.ReportDaily, PeriodStart: "2024-03-05", PeriodEnd: "2024-03-05"})
	require.NoError(t, err)
	_, _, err = f.svc.Create(context.Background(), "u", CreateRequest{Type: types.ReportDaily, PeriodStart: "2024-03-06", PeriodEnd: "2024-03-06"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUpdateGetDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	r, _, err := f.svc.Create(ctx, "u", CreateRequest{Type: types.ReportMonthly, PeriodStart: "2024-03-01", PeriodEnd: "2024-03-31", Content: "v1"})
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, "u", r.ID, "v2</think>")
	require.NoError(t, err)
	assert.Equal(t, "v2", updated.Content)
	assert.Greater(t, updated.CreatedAt, r.CreatedAt)

	_, err = f.svc.Update(ctx, "intruder", r.ID, "x")
	assert.ErrorIs(t, err, ErrReportNotFound)

	got, err := f.svc.Get(ctx, "u", r.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	require.NoError(t, f.svc.Delete(ctx, "u", r.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, "u", r.ID), ErrReportNotFound)
	_, err = f.archive.Get(ctx, r.Key())
	assert.ErrorIs(t, err, archive.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _, _ = f.svc.Create(ctx, "u", CreateRequest{Type: types.ReportDaily, PeriodStart: "2024-03-05", PeriodEnd: "2024-03-05"})
	_, _, _ = f.svc.Create(ctx, "u", CreateRequest{Type: types.ReportWeekly, PeriodStart: "2024-03-04", PeriodEnd: "2024-03-10"})

	all, err := f.svc.List(ctx, "u", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, types.ReportWeekly, all[0].Type)

	daily, err := f.svc.List(ctx, "u", types.ReportDaily)
	require.NoError(t, err)
	assert.Len(t, daily, 1)

	_, err = f.svc.List(ctx, "u", "HOURLY")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestImportLogsValidates(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ImportLogs(context.Background(), "u", []types.LogEntry{{Timestamp: 1, Content: "  "}})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.ImportLogs(context.Background(), "u", []types.LogEntry{{Content: "x"}})
	assert.ErrorIs(t, err, ErrValidation)

	n, err := f.svc.ImportLogs(context.Background(), "u", []types.LogEntry{{Timestamp: 1, Content: "x"}, {ID: "b", Timestamp: 2, Content: "y"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestPeriodName(t *testing.T) {
	cases := []struct {
		typ        types.ReportType
		start, end string
		name, want string
	}{
		{types.ReportDaily, "2024-03-05", "2024-03-05", "", "2024-03-05"},
		{types.ReportWeekly, "2024-03-04", "2024-03-10", "", "2024-03-04 ~ 2024-03-10"},
		{types.ReportWeekly, "2024-03-04", "2024-03-10", "Week 10", "Week 10 (2024-03-04 ~ 2024-03-10)"},
		{types.ReportMonthly, "2024-03-01", "2024-03-31", "March 2024-03-01 ~ 2024-03-31", "March 2024-03-01 ~ 2024-03-31"},
		{"", "2024-03-01", "2024-03-01", "Friday", "Friday (2024-03-01)"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, PeriodName(c.typ, c.start, c.end, c.name))
	}
}
