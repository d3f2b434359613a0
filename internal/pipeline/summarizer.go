package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"lifestream/internal/llm"
	llmclient "lifestream/internal/llm/client"
	"lifestream/internal/markdown"
	"lifestream/internal/prompt"
	"lifestream/internal/types"
)

// ErrNoEntries is returned when Generate is called without any log entries.
var ErrNoEntries = errors.New("no log entries to summarize")

// Intent selects the final template.
type Intent string

const (
	IntentReport Intent = "report"
	IntentCues   Intent = "cues"
)

// Config holds the size policy and sampling temperatures. The character
// budgets are heuristics, not token limits of any particular model.
type Config struct {
	DirectThreshold    int
	ChunkBudget        int
	EntryOverhead      int
	MapConcurrency     int
	ReportTemperature  float64
	SummaryTemperature float64
	Location           *time.Location
}

func DefaultConfig() Config {
	return Config{
		DirectThreshold:    18000,
		ChunkBudget:        12000,
		EntryOverhead:      DefaultEntryOverhead,
		MapConcurrency:     1,
		ReportTemperature:  0.3,
		SummaryTemperature: 0.2,
		Location:           time.Local,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.DirectThreshold <= 0 {
		c.DirectThreshold = d.DirectThreshold
	}
	if c.ChunkBudget <= 0 {
		c.ChunkBudget = d.ChunkBudget
	}
	if c.EntryOverhead <= 0 {
		c.EntryOverhead = d.EntryOverhead
	}
	if c.MapConcurrency <= 0 {
		c.MapConcurrency = 1
	}
	if c.Location == nil {
		c.Location = d.Location
	}
	return c
}

// Request is one generation. PeriodStart/PeriodEnd are optional YYYY-MM-DD
// bounds used for grouping; Type is ignored for cues.
type Request struct {
	Intent      Intent
	Type        types.ReportType
	Entries     []types.LogEntry
	PeriodName  string
	Language    types.Language
	PeriodStart string
	PeriodEnd   string
}

// Summarizer turns a period's entries into one Markdown artifact, either with
// a single call or by summarizing groups first and synthesizing over the
// summaries.
type Summarizer struct {
	LLM llmclient.ChatClient
	cfg Config
	log *log.Logger
}

func NewSummarizer(client llmclient.ChatClient, cfg Config, logger *log.Logger) *Summarizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Summarizer{LLM: client, cfg: cfg.withDefaults(), log: logger}
}

func (s *Summarizer) Config() Config { return s.cfg }

// Generate runs the pipeline and returns the final text with reasoning removed.
// The first failed call aborts the run.
func (s *Summarizer) Generate(ctx context.Context, req Request) (string, error) {
	if len(req.Entries) == 0 {
		return "", ErrNoEntries
	}
	if req.Intent == "" {
		req.Intent = IntentReport
	}
	est := EstimateChars(req.Entries, s.cfg.EntryOverhead)
	if est <= s.cfg.DirectThreshold {
		s.log.Printf("%s %q: direct, %s chars in %d entries", req.Intent, req.PeriodName, humanize.Comma(int64(est)), len(req.Entries))
		emit(ctx, Event{Stage: StagePlan, Path: "direct", Total: 1})
		emit(ctx, Event{Stage: StageDirect, Index: 1, Total: 1})
		return s.final(ctx, req, req.Entries, false)
	}

	typ := req.Type
	if req.Intent == IntentCues {
		typ = ""
	}
	groups := Group(typ, req.Entries, req.PeriodStart, req.PeriodEnd, s.cfg.Location)
	s.log.Printf("%s %q: map-reduce, %s chars over %d groups", req.Intent, req.PeriodName, humanize.Comma(int64(est)), len(groups))
	emit(ctx, Event{Stage: StagePlan, Path: "map-reduce", Total: len(groups)})

	summaries, err := s.mapGroups(ctx, groups, req.Language)
	if err != nil {
		return "", err
	}

	synthetic := make([]types.LogEntry, len(groups))
	for i, g := range groups {
		synthetic[i] = types.LogEntry{
			ID:        "summary:" + g.Label,
			Timestamp: g.OrderKey,
			Content:   "[" + g.Label + "]\n" + summaries[i],
			Tags:      []string{},
		}
	}
	emit(ctx, Event{Stage: StageReduce, Index: 1, Total: 1})
	return s.final(ctx, req, synthetic, true)
}

// mapGroups returns one bullet list per group, in group order.
func (s *Summarizer) mapGroups(ctx context.Context, groups []LogGroup, lang types.Language) ([]string, error) {
	out := make([]string, len(groups))
	if s.cfg.MapConcurrency <= 1 {
		for i, g := range groups {
			sum, err := s.summarizeGroup(ctx, g, i, len(groups), lang)
			if err != nil {
				return nil, err
			}
			out[i] = sum
		}
		return out, nil
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.cfg.MapConcurrency)
	for i, g := range groups {
		eg.Go(func() error {
			sum, err := s.summarizeGroup(gctx, g, i, len(groups), lang)
			if err != nil {
				return err
			}
			out[i] = sum
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// summarizeGroup summarizes each chunk of a group and, when there is more
// than one chunk, merges the partial lists with one more call.
func (s *Summarizer) summarizeGroup(ctx context.Context, g LogGroup, idx, total int, lang types.Language) (string, error) {
	emit(ctx, Event{Stage: StageMap, Label: g.Label, Index: idx + 1, Total: total})
	chunks := Chunk(g.Entries, s.cfg.ChunkBudget, s.cfg.EntryOverhead)
	if len(chunks) == 1 {
		return s.call(llm.WithPhase(ctx, llm.PhaseMap), prompt.ChunkSummary(g.Label, chunks[0], lang, s.cfg.Location), s.cfg.SummaryTemperature, g.Label)
	}

	partials := make([]string, 0, len(chunks))
	for i, c := range chunks {
		label := fmt.Sprintf("%s #%d/%d", g.Label, i+1, len(chunks))
		sum, err := s.call(llm.WithPhase(ctx, llm.PhaseMap), prompt.ChunkSummary(label, c, lang, s.cfg.Location), s.cfg.SummaryTemperature, label)
		if err != nil {
			return "", err
		}
		partials = append(partials, sum)
	}
	emit(ctx, Event{Stage: StageMerge, Label: g.Label, Index: idx + 1, Total: total})
	return s.call(llm.WithPhase(ctx, llm.PhaseMerge), prompt.Merge(g.Label, partials, lang), s.cfg.SummaryTemperature, g.Label)
}

func (s *Summarizer) final(ctx context.Context, req Request, entries []types.LogEntry, reduced bool) (string, error) {
	var system, phase string
	temp := s.cfg.ReportTemperature
	switch req.Intent {
	case IntentCues:
		system = prompt.Cues(req.PeriodName, req.Language)
		phase = llm.PhaseCues
		temp = s.cfg.SummaryTemperature
	default:
		system = prompt.Report(req.Type, req.PeriodName, req.Language)
		phase = llm.PhaseDirect
		if reduced {
			phase = llm.PhaseReduce
		}
	}
	return s.call(llm.WithPhase(ctx, phase), prompt.Final(system, entries, req.Language, s.cfg.Location), temp, req.PeriodName)
}

func (s *Summarizer) call(ctx context.Context, msgs []llmclient.Message, temp float64, label string) (string, error) {
	out, err := s.LLM.Complete(ctx, msgs, temp)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", llm.PhaseFrom(ctx), label, err)
	}
	return markdown.StripThinking(out), nil
}
