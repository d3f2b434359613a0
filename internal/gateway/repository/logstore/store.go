package logstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"lifestream/internal/types"
)

// Store is the journal-entry collaborator the generation service reads from.
type Store interface {
	// ListLogs returns a user's entries whose local day falls in
	// [startDay, endDay], timestamp-ascending.
	ListLogs(ctx context.Context, userID, startDay, endDay string) ([]types.LogEntry, error)
	// Put inserts or replaces entries by id and returns how many were written.
	Put(ctx context.Context, userID string, entries []types.LogEntry) (int, error)
}

func validate(userID string, e types.LogEntry) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("log id is required")
	}
	if strings.TrimSpace(e.Content) == "" {
		return fmt.Errorf("log %s: content is required", e.ID)
	}
	return nil
}

type MemoryStore struct {
	mu   sync.RWMutex
	loc  *time.Location
	data map[string]map[string]types.LogEntry
}

// NewMemoryStore keeps entries in process. loc decides each entry's local day.
func NewMemoryStore(loc *time.Location) *MemoryStore {
	if loc == nil {
		loc = time.Local
	}
	return &MemoryStore{loc: loc, data: make(map[string]map[string]types.LogEntry)}
}

func (s *MemoryStore) ListLogs(_ context.Context, userID, startDay, endDay string) ([]types.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []types.LogEntry
	for _, e := range s.data[userID] {
		day := types.DayKey(e.Timestamp, s.loc)
		if day < startDay || day > endDay {
			continue
		}
		out = append(out, cloneEntry(e))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Put(_ context.Context, userID string, entries []types.LogEntry) (int, error) {
	for _, e := range entries {
		if err := validate(userID, e); err != nil {
			return 0, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.data[userID]
	if !ok {
		bucket = make(map[string]types.LogEntry)
		s.data[userID] = bucket
	}
	for _, e := range entries {
		bucket[e.ID] = cloneEntry(e)
	}
	return len(entries), nil
}

func cloneEntry(e types.LogEntry) types.LogEntry {
	e.Tags = append([]string{}, e.Tags...)
	return e
}
