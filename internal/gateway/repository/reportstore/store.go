package reportstore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"lifestream/internal/types"
)

var (
	ErrNotFound = errors.New("report not found")
	// ErrConflict means a create collided on id with a report of another key.
	ErrConflict = errors.New("report id already exists")
)

// Store persists finished reports. At most one report exists per ReportKey.
type Store interface {
	FindByKey(ctx context.Context, key types.ReportKey) (types.Report, error)
	Get(ctx context.Context, userID, id string) (types.Report, error)
	// Upsert writes r at its key. When the key already exists the stored id is
	// kept and content/createdAt are replaced.
	Upsert(ctx context.Context, r types.Report) (types.Report, error)
	// Create inserts r unless its key exists, in which case the stored report
	// is returned with created=false.
	Create(ctx context.Context, r types.Report) (stored types.Report, created bool, err error)
	UpdateContent(ctx context.Context, userID, id, content string, createdAt int64) (types.Report, error)
	Delete(ctx context.Context, userID, id string) error
	// List returns a user's reports newest first; an empty typ lists all.
	List(ctx context.Context, userID string, typ types.ReportType) ([]types.Report, error)
}

func validateReport(r types.Report) error {
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("report id is required")
	}
	if !r.Type.Valid() {
		return errors.New("report type is invalid")
	}
	if r.PeriodStart == "" || r.PeriodEnd == "" {
		return errors.New("report period is required")
	}
	return nil
}

type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]types.Report
	byKey map[types.ReportKey]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]types.Report),
		byKey: make(map[types.ReportKey]string),
	}
}

func (s *MemoryStore) FindByKey(_ context.Context, key types.ReportKey) (types.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byKey[key]
	if !ok {
		return types.Report{}, ErrNotFound
	}
	return s.byID[id], nil
}

func (s *MemoryStore) Get(_ context.Context, userID, id string) (types.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[id]
	if !ok || r.UserID != userID {
		return types.Report{}, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) Upsert(_ context.Context, r types.Report) (types.Report, error) {
	if err := validateReport(r); err != nil {
		return types.Report{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := r.Key()
	if id, ok := s.byKey[key]; ok {
		cur := s.byID[id]
		cur.Content = r.Content
		cur.CreatedAt = r.CreatedAt
		s.byID[id] = cur
		return cur, nil
	}
	if _, taken := s.byID[r.ID]; taken {
		return types.Report{}, ErrConflict
	}
	s.byID[r.ID] = r
	s.byKey[key] = r.ID
	return r, nil
}

func (s *MemoryStore) Create(_ context.Context, r types.Report) (types.Report, bool, error) {
	if err := validateReport(r); err != nil {
		return types.Report{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byKey[r.Key()]; ok {
		return s.byID[id], false, nil
	}
	if _, taken := s.byID[r.ID]; taken {
		return types.Report{}, false, ErrConflict
	}
	s.byID[r.ID] = r
	s.byKey[r.Key()] = r.ID
	return r, true, nil
}

func (s *MemoryStore) UpdateContent(_ context.Context, userID, id, content string, createdAt int64) (types.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok || r.UserID != userID {
		return types.Report{}, ErrNotFound
	}
	r.Content = content
	r.CreatedAt = createdAt
	s.byID[id] = r
	return r, nil
}

func (s *MemoryStore) Delete(_ context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok || r.UserID != userID {
		return ErrNotFound
	}
	delete(s.byID, id)
	delete(s.byKey, r.Key())
	return nil
}

func (s *MemoryStore) List(_ context.Context, userID string, typ types.ReportType) ([]types.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Report, 0, 16)
	for _, r := range s.byID {
		if r.UserID != userID || (typ != "" && r.Type != typ) {
			continue
		}
		out = append(out, r)
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(rs []types.Report) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].CreatedAt != rs[j].CreatedAt {
			return rs[i].CreatedAt > rs[j].CreatedAt
		}
		return rs[i].ID < rs[j].ID
	})
}
