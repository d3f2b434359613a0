// Package report is the generation service: it validates a request, decides
// whether a stored report can be reused, runs the summarizer over the period's
// logs and persists the result.
package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"lifestream/internal/gateway/repository/archive"
	"lifestream/internal/gateway/repository/logstore"
	"lifestream/internal/gateway/repository/reportstore"
	"lifestream/internal/markdown"
	"lifestream/internal/pipeline"
	"lifestream/internal/types"
)

var (
	ErrValidation     = errors.New("invalid request")
	ErrNoLogs         = errors.New("no logs for period")
	ErrReportNotFound = errors.New("report not found")
	ErrConflict       = errors.New("report id already exists")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Deps are the collaborators of Service. Archive is optional.
type Deps struct {
	Reports    reportstore.Store
	Logs       logstore.Store
	Archive    archive.Store
	Summarizer *pipeline.Summarizer
	Location   *time.Location
	Logger     *log.Logger
}

type Service struct {
	reports    reportstore.Store
	logs       logstore.Store
	archive    archive.Store
	summarizer *pipeline.Summarizer
	loc        *time.Location
	log        *log.Logger
	locks      keyLocks

	now   func() time.Time
	newID func() string
}

func New(d Deps) *Service {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	logger := d.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		reports:    d.Reports,
		logs:       d.Logs,
		archive:    d.Archive,
		summarizer: d.Summarizer,
		loc:        loc,
		log:        logger,
		locks:      keyLocks{m: make(map[types.ReportKey]*keyLock)},
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

type GenerateRequest struct {
	Type        types.ReportType
	PeriodStart string
	PeriodEnd   string
	Language    types.Language
	PeriodName  string
	Force       bool
}

// Result is a stored report plus what was derived from it. Generated is false
// when an existing report was returned without calling the model.
type Result struct {
	Report      types.Report
	Generated   bool
	Cues        string
	ActionItems []string
}

func newResult(r types.Report, generated bool) Result {
	cues, _ := markdown.ExtractSection(r.Content, markdown.CuesAliases)
	items := markdown.ExtractActionItems(r.Content)
	if items == nil {
		items = []string{}
	}
	return Result{Report: r, Generated: generated, Cues: cues, ActionItems: items}
}

// Generate returns the report for the request's key, generating it when none
// is stored or Force is set. Nothing is written when generation fails.
func (s *Service) Generate(ctx context.Context, userID string, req GenerateRequest) (Result, error) {
	if err := s.validatePeriod(userID, req.PeriodStart, req.PeriodEnd); err != nil {
		return Result{}, err
	}
	if !req.Type.Valid() {
		return Result{}, invalid("type %q must be one of DAILY, WEEKLY, MONTHLY, YEARLY", req.Type)
	}
	if req.Type == types.ReportDaily && req.PeriodStart != req.PeriodEnd {
		return Result{}, invalid("DAILY reports need periodStart == periodEnd")
	}
	lang, err := normalizeLanguage(req.Language)
	if err != nil {
		return Result{}, err
	}

	key := types.ReportKey{UserID: userID, Type: req.Type, PeriodStart: req.PeriodStart, PeriodEnd: req.PeriodEnd}
	unlock := s.locks.lock(key)
	defer unlock()

	existing, err := s.reports.FindByKey(ctx, key)
	switch {
	case err == nil:
		if !req.Force {
			return newResult(existing, false), nil
		}
	case errors.Is(err, reportstore.ErrNotFound):
	default:
		return Result{}, fmt.Errorf("find report %s: %w", key, err)
	}

	entries, err := s.listLogs(ctx, userID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return Result{}, err
	}

	content, err := s.summarizer.Generate(ctx, pipeline.Request{
		Intent:      pipeline.IntentReport,
		Type:        req.Type,
		Entries:     entries,
		PeriodName:  PeriodName(req.Type, req.PeriodStart, req.PeriodEnd, req.PeriodName),
		Language:    lang,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
	})
	if err != nil {
		return Result{}, err
	}

	id := existing.ID
	if id == "" {
		id = s.newID()
	}
	stored, err := s.reports.Upsert(ctx, types.Report{
		ID:          id,
		UserID:      userID,
		Type:        req.Type,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Content:     markdown.StripThinking(content),
		CreatedAt:   s.now().UnixMilli(),
	})
	if err != nil {
		return Result{}, fmt.Errorf("save report %s: %w", key, err)
	}
	s.archivePut(ctx, stored)
	return newResult(stored, true), nil
}

type CuesRequest struct {
	PeriodStart string
	PeriodEnd   string
	Language    types.Language
	PeriodName  string
}

// CuesResult is a standalone cues digest. It is not persisted.
type CuesResult struct {
	Content     string
	Cues        string
	Found       bool
	ActionItems []string
}

func (s *Service) GenerateCues(ctx context.Context, userID string, req CuesRequest) (CuesResult, error) {
	if err := s.validatePeriod(userID, req.PeriodStart, req.PeriodEnd); err != nil {
		return CuesResult{}, err
	}
	lang, err := normalizeLanguage(req.Language)
	if err != nil {
		return CuesResult{}, err
	}
	entries, err := s.listLogs(ctx, userID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return CuesResult{}, err
	}
	content, err := s.summarizer.Generate(ctx, pipeline.Request{
		Intent:      pipeline.IntentCues,
		Entries:     entries,
		PeriodName:  PeriodName("", req.PeriodStart, req.PeriodEnd, req.PeriodName),
		Language:    lang,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
	})
	if err != nil {
		return CuesResult{}, err
	}
	content = markdown.StripThinking(content)
	cues, found := markdown.ExtractSection(content, markdown.CuesAliases)
	items := markdown.ExtractActionItems(content)
	if items == nil {
		items = []string{}
	}
	return CuesResult{Content: content, Cues: cues, Found: found, ActionItems: items}, nil
}

type CreateRequest struct {
	Type        types.ReportType
	PeriodStart string
	PeriodEnd   string
	Content     string
}

// Create stores a report written outside the pipeline. When the key is taken
// the stored report is returned with created=false.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (types.Report, bool, error) {
	if err := s.validatePeriod(userID, req.PeriodStart, req.PeriodEnd); err != nil {
		return types.Report{}, false, err
	}
	if !req.Type.Valid() {
		return types.Report{}, false, invalid("type %q must be one of DAILY, WEEKLY, MONTHLY, YEARLY", req.Type)
	}
	if req.Type == types.ReportDaily && req.PeriodStart != req.PeriodEnd {
		return types.Report{}, false, invalid("DAILY reports need periodStart == periodEnd")
	}
	key := types.ReportKey{UserID: userID, Type: req.Type, PeriodStart: req.PeriodStart, PeriodEnd: req.PeriodEnd}
	unlock := s.locks.lock(key)
	defer unlock()

	stored, created, err := s.reports.Create(ctx, types.Report{
		ID:          s.newID(),
		UserID:      userID,
		Type:        req.Type,
		PeriodStart: req.PeriodStart,
		PeriodEnd:   req.PeriodEnd,
		Content:     markdown.StripThinking(req.Content),
		CreatedAt:   s.now().UnixMilli(),
	})
	if errors.Is(err, reportstore.ErrConflict) {
		return types.Report{}, false, ErrConflict
	}
	if err != nil {
		return types.Report{}, false, fmt.Errorf("create report %s: %w", key, err)
	}
	if created {
		s.archivePut(ctx, stored)
	}
	return stored, created, nil
}

// Update replaces a report's content after a manual edit.
func (s *Service) Update(ctx context.Context, userID, id, content string) (types.Report, error) {
	if strings.TrimSpace(userID) == "" {
		return types.Report{}, invalid("user is required")
	}
	if strings.TrimSpace(id) == "" {
		return types.Report{}, invalid("id is required")
	}
	r, err := s.reports.UpdateContent(ctx, userID, id, markdown.StripThinking(content), s.now().UnixMilli())
	if errors.Is(err, reportstore.ErrNotFound) {
		return types.Report{}, ErrReportNotFound
	}
	if err != nil {
		return types.Report{}, fmt.Errorf("update report %s: %w", id, err)
	}
	s.archivePut(ctx, r)
	return r, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	r, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.reports.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, reportstore.ErrNotFound) {
			return ErrReportNotFound
		}
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	if s.archive != nil {
		if err := s.archive.Delete(ctx, r.Key()); err != nil {
			s.log.Printf("archive delete %s failed: %v", archive.ObjectKey(r.Key()), err)
		}
	}
	return nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (types.Report, error) {
	if strings.TrimSpace(userID) == "" {
		return types.Report{}, invalid("user is required")
	}
	if strings.TrimSpace(id) == "" {
		return types.Report{}, invalid("id is required")
	}
	r, err := s.reports.Get(ctx, userID, id)
	if errors.Is(err, reportstore.ErrNotFound) {
		return types.Report{}, ErrReportNotFound
	}
	if err != nil {
		return types.Report{}, fmt.Errorf("get report %s: %w", id, err)
	}
	return r, nil
}

// List returns a user's reports newest first. An empty typ lists every type.
func (s *Service) List(ctx context.Context, userID string, typ types.ReportType) ([]types.Report, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, invalid("user is required")
	}
	if typ != "" && !typ.Valid() {
		return nil, invalid("type %q must be one of DAILY, WEEKLY, MONTHLY, YEARLY", typ)
	}
	out, err := s.reports.List(ctx, userID, typ)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return out, nil
}

// ImportLogs writes journal entries. Entries without an id get a fresh one.
func (s *Service) ImportLogs(ctx context.Context, userID string, entries []types.LogEntry) (int, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, invalid("user is required")
	}
	if len(entries) == 0 {
		return 0, invalid("no entries")
	}
	batch := make([]types.LogEntry, len(entries))
	for i, e := range entries {
		if strings.TrimSpace(e.Content) == "" {
			return 0, invalid("entry %d: content is required", i)
		}
		if e.Timestamp <= 0 {
			return 0, invalid("entry %d: timestamp is required", i)
		}
		if strings.TrimSpace(e.ID) == "" {
			e.ID = s.newID()
		}
		if e.Tags == nil {
			e.Tags = []string{}
		}
		batch[i] = e
	}
	n, err := s.logs.Put(ctx, userID, batch)
	if err != nil {
		return 0, fmt.Errorf("import logs: %w", err)
	}
	return n, nil
}

func (s *Service) validatePeriod(userID, start, end string) error {
	if strings.TrimSpace(userID) == "" {
		return invalid("user is required")
	}
	from, err := types.ParseDate(start, s.loc)
	if err != nil {
		return invalid("periodStart %v", err)
	}
	to, err := types.ParseDate(end, s.loc)
	if err != nil {
		return invalid("periodEnd %v", err)
	}
	if to.Before(from) {
		return invalid("periodEnd %s is before periodStart %s", end, start)
	}
	return nil
}

func (s *Service) listLogs(ctx context.Context, userID, start, end string) ([]types.LogEntry, error) {
	entries, err := s.logs.ListLogs(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrNoLogs
	}
	return entries, nil
}

func (s *Service) archivePut(ctx context.Context, r types.Report) {
	if s.archive == nil {
		return
	}
	if err := s.archive.Put(ctx, r); err != nil {
		s.log.Printf("archive %s failed: %v", archive.ObjectKey(r.Key()), err)
	}
}

func normalizeLanguage(l types.Language) (types.Language, error) {
	if l == "" {
		return types.LanguageEnglish, nil
	}
	parsed, err := types.ParseLanguage(string(l))
	if err != nil {
		return "", invalid("%v", err)
	}
	return parsed, nil
}

// PeriodName is the label shown to the model. A caller-supplied name that
// does not already mention the date range gets it appended.
func PeriodName(typ types.ReportType, start, end, name string) string {
	rangeText := start + " ~ " + end
	if typ == types.ReportDaily || start == end {
		rangeText = start
	}
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return rangeText
	case strings.Contains(name, rangeText):
		return name
	default:
		return name + " (" + rangeText + ")"
	}
}
