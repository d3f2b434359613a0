package report

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"lifestream/internal/gateway/repository/reportstore"
	"lifestream/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingOrigin struct {
	*reportstore.MemoryStore

	mu        sync.Mutex
	findCalls int
	failWrite bool
	onDelete  func()
}

func newCountingOrigin() *countingOrigin {
	return &countingOrigin{MemoryStore: reportstore.NewMemoryStore()}
}

func (s *countingOrigin) FindByKey(ctx context.Context, key types.ReportKey) (types.Report, error) {
	s.mu.Lock()
	s.findCalls++
	s.mu.Unlock()
	return s.MemoryStore.FindByKey(ctx, key)
}

func (s *countingOrigin) Upsert(ctx context.Context, r types.Report) (types.Report, error) {
	if s.failWrite {
		return types.Report{}, errors.New("write failed")
	}
	return s.MemoryStore.Upsert(ctx, r)
}

func (s *countingOrigin) Delete(ctx context.Context, userID, id string) error {
	if s.onDelete != nil {
		s.onDelete()
	}
	return s.MemoryStore.Delete(ctx, userID, id)
}

func (s *countingOrigin) finds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findCalls
}

func daily(id, day, content string) types.Report {
	return types.Report{ID: id, UserID: "u", Type: types.ReportDaily, PeriodStart: day, PeriodEnd: day, Content: content, CreatedAt: 1}
}

func TestFindByKeyReadsThrough(t *testing.T) {
	ctx := context.Background()
	origin := newCountingOrigin()
	_, err := origin.MemoryStore.Upsert(ctx, daily("r1", "2024-03-01", "body"))
	require.NoError(t, err)

	s := NewCachedStore(origin, DefaultCacheConfig())
	key := daily("", "2024-03-01", "").Key()

	first, err := s.FindByKey(ctx, key)
	require.NoError(t, err)
	second, err := s.FindByKey(ctx, key)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, origin.finds())
	m := s.Metrics()
	assert.Equal(t, uint64(1), m.Hits)
	assert.Equal(t, uint64(1), m.Misses)
}

func TestMissIsNotCached(t *testing.T) {
	ctx := context.Background()
	origin := newCountingOrigin()
	s := NewCachedStore(origin, DefaultCacheConfig())
	key := daily("", "2024-03-02", "").Key()

	_, err := s.FindByKey(ctx, key)
	assert.ErrorIs(t, err, reportstore.ErrNotFound)
	_, err = s.Upsert(ctx, daily("r2", "2024-03-02", "later"))
	require.NoError(t, err)

	got, err := s.FindByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, "later", got.Content)
	assert.Equal(t, 1, origin.finds())
}

func TestUpdateAndDeleteRefreshCache(t *testing.T) {
	ctx := context.Background()
	origin := newCountingOrigin()
	s := NewCachedStore(origin, DefaultCacheConfig())
	r, err := s.Upsert(ctx, daily("r3", "2024-03-03", "v1"))
	require.NoError(t, err)

	_, err = s.UpdateContent(ctx, "u", r.ID, "v2", 9)
	require.NoError(t, err)
	got, err := s.FindByKey(ctx, r.Key())
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Content)
	assert.Equal(t, 0, origin.finds())

	require.NoError(t, s.Delete(ctx, "u", r.ID))
	_, err = s.FindByKey(ctx, r.Key())
	assert.ErrorIs(t, err, reportstore.ErrNotFound)
	assert.Equal(t, 1, origin.finds())
}

func TestDeleteEvictsReadDuringDelete(t *testing.T) {
	ctx := context.Background()
	origin := newCountingOrigin()
	s := NewCachedStore(origin, DefaultCacheConfig())
	r, err := s.Upsert(ctx, daily("r6", "2024-03-06", "v"))
	require.NoError(t, err)

	origin.onDelete = func() {
		_, err := s.FindByKey(ctx, r.Key())
		require.NoError(t, err)
	}
	require.NoError(t, s.Delete(ctx, "u", r.ID))

	_, err = s.FindByKey(ctx, r.Key())
	assert.ErrorIs(t, err, reportstore.ErrNotFound)
	assert.Equal(t, 2, origin.finds())
}

func TestFailedWriteDropsEntry(t *testing.T) {
	ctx := context.Background()
	origin := newCountingOrigin()
	s := NewCachedStore(origin, DefaultCacheConfig())
	r, err := s.Upsert(ctx, daily("r4", "2024-03-04", "v1"))
	require.NoError(t, err)

	origin.failWrite = true
	_, err = s.Upsert(ctx, daily("r4", "2024-03-04", "v2"))
	require.Error(t, err)
	assert.Equal(t, uint64(1), s.Metrics().OriginWriteErr)

	_, err = s.FindByKey(ctx, r.Key())
	require.NoError(t, err)
	assert.Equal(t, 1, origin.finds())
}

func TestEntriesExpire(t *testing.T) {
	ctx := context.Background()
	origin := newCountingOrigin()
	s := NewCachedStore(origin, CacheConfig{TTL: 20 * time.Millisecond, MaxEntries: 4})
	r, err := s.Upsert(ctx, daily("r5", "2024-03-05", "v"))
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)
	_, err = s.FindByKey(ctx, r.Key())
	require.NoError(t, err)
	assert.Equal(t, 1, origin.finds())
}
