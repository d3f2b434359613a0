// Package archive keeps a Markdown copy of every finished report as an object,
// one object per report key.
package archive

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"lifestream/internal/types"
)

// Store defines operations for archiving report Markdown.
type Store interface {
	Put(ctx context.Context, r types.Report) error
	Get(ctx context.Context, key types.ReportKey) ([]byte, error)
	List(ctx context.Context, userID string) ([]string, error)
	Delete(ctx context.Context, key types.ReportKey) error
}

var ErrNotFound = errors.New("archived report not found")

// ObjectKey is reports/<user>/<TYPE>/<start>_<end>.md.
func ObjectKey(key types.ReportKey) string {
	return userPrefix(key.UserID) + string(key.Type) + "/" + key.PeriodStart + "_" + key.PeriodEnd + ".md"
}

func userPrefix(userID string) string {
	return "reports/" + strings.Trim(strings.TrimSpace(userID), "/") + "/"
}

func validateKey(key types.ReportKey) error {
	if strings.TrimSpace(key.UserID) == "" {
		return fmt.Errorf("user_id is required")
	}
	if !key.Type.Valid() {
		return fmt.Errorf("report type is invalid")
	}
	if key.PeriodStart == "" || key.PeriodEnd == "" {
		return fmt.Errorf("period is required")
	}
	return nil
}

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, r types.Report) error {
	if err := validateKey(r.Key()); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[ObjectKey(r.Key())] = []byte(r.Content)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, key types.ReportKey) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[ObjectKey(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (s *MemoryStore) List(_ context.Context, userID string) ([]string, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	prefix := userPrefix(userID)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, 16)
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) Delete(_ context.Context, key types.ReportKey) error {
	if err := validateKey(key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, ObjectKey(key))
	return nil
}
