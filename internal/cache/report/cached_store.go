// Package report wraps a report store with a read-through cache keyed by
// report key.
package report

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"lifestream/internal/gateway/repository/reportstore"
	"lifestream/internal/types"
)

type Store = reportstore.Store

type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
}

func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:        5 * time.Minute,
		MaxEntries: 1024,
	}
}

type MetricsSnapshot struct {
	Hits           uint64
	Misses         uint64
	OriginReads    uint64
	OriginWrites   uint64
	OriginReadErr  uint64
	OriginWriteErr uint64
}

type Metrics struct {
	hits           atomic.Uint64
	misses         atomic.Uint64
	originReads    atomic.Uint64
	originWrites   atomic.Uint64
	originReadErr  atomic.Uint64
	originWriteErr atomic.Uint64
}

func (m *Metrics) snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		Hits:           m.hits.Load(),
		Misses:         m.misses.Load(),
		OriginReads:    m.originReads.Load(),
		OriginWrites:   m.originWrites.Load(),
		OriginReadErr:  m.originReadErr.Load(),
		OriginWriteErr: m.originWriteErr.Load(),
	}
}

// CachedStore serves FindByKey from memory. Writes go to origin first and
// then refresh or drop the cached entry. Misses are not cached.
type CachedStore struct {
	origin  Store
	byKey   *expirable.LRU[types.ReportKey, types.Report]
	metrics Metrics
}

var _ Store = (*CachedStore)(nil)

func NewCachedStore(origin Store, cfg CacheConfig) *CachedStore {
	def := DefaultCacheConfig()
	if cfg.TTL <= 0 {
		cfg.TTL = def.TTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = def.MaxEntries
	}
	return &CachedStore{
		origin: origin,
		byKey:  expirable.NewLRU[types.ReportKey, types.Report](cfg.MaxEntries, nil, cfg.TTL),
	}
}

func (s *CachedStore) Metrics() MetricsSnapshot {
	return s.metrics.snapshot()
}

func (s *CachedStore) FindByKey(ctx context.Context, key types.ReportKey) (types.Report, error) {
	if r, ok := s.byKey.Get(key); ok {
		s.metrics.hits.Add(1)
		return r, nil
	}
	s.metrics.misses.Add(1)
	s.metrics.originReads.Add(1)

	r, err := s.origin.FindByKey(ctx, key)
	if err != nil {
		if !errors.Is(err, reportstore.ErrNotFound) {
			s.metrics.originReadErr.Add(1)
		}
		return types.Report{}, err
	}
	s.byKey.Add(key, r)
	return r, nil
}

func (s *CachedStore) Get(ctx context.Context, userID, id string) (types.Report, error) {
	s.metrics.originReads.Add(1)
	r, err := s.origin.Get(ctx, userID, id)
	if err != nil {
		return types.Report{}, err
	}
	s.byKey.Add(r.Key(), r)
	return r, nil
}

func (s *CachedStore) Upsert(ctx context.Context, r types.Report) (types.Report, error) {
	s.metrics.originWrites.Add(1)
	out, err := s.origin.Upsert(ctx, r)
	if err != nil {
		s.metrics.originWriteErr.Add(1)
		s.byKey.Remove(r.Key())
		return types.Report{}, err
	}
	s.byKey.Add(out.Key(), out)
	return out, nil
}

func (s *CachedStore) Create(ctx context.Context, r types.Report) (types.Report, bool, error) {
	s.metrics.originWrites.Add(1)
	out, created, err := s.origin.Create(ctx, r)
	if err != nil {
		s.metrics.originWriteErr.Add(1)
		return types.Report{}, false, err
	}
	s.byKey.Add(out.Key(), out)
	return out, created, nil
}

func (s *CachedStore) UpdateContent(ctx context.Context, userID, id, content string, createdAt int64) (types.Report, error) {
	s.metrics.originWrites.Add(1)
	out, err := s.origin.UpdateContent(ctx, userID, id, content, createdAt)
	if err != nil {
		s.metrics.originWriteErr.Add(1)
		s.dropID(userID, id)
		return types.Report{}, err
	}
	s.byKey.Add(out.Key(), out)
	return out, nil
}

func (s *CachedStore) Delete(ctx context.Context, userID, id string) error {
	s.metrics.originWrites.Add(1)
	s.dropID(userID, id)
	if err := s.origin.Delete(ctx, userID, id); err != nil {
		s.metrics.originWriteErr.Add(1)
		return err
	}
	// a read that missed while the delete was in flight may have re-cached it
	s.dropID(userID, id)
	return nil
}

func (s *CachedStore) List(ctx context.Context, userID string, typ types.ReportType) ([]types.Report, error) {
	s.metrics.originReads.Add(1)
	return s.origin.List(ctx, userID, typ)
}

func (s *CachedStore) dropID(userID, id string) {
	for _, k := range s.byKey.Keys() {
		if k.UserID != userID {
			continue
		}
		if r, ok := s.byKey.Peek(k); ok && r.ID == id {
			s.byKey.Remove(k)
		}
	}
}
