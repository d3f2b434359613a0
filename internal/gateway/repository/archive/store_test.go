package archive

import (
	"context"
	"testing"

	"lifestream/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectKey(t *testing.T) {
	key := types.ReportKey{UserID: "alice", Type: types.ReportMonthly, PeriodStart: "2024-03-01", PeriodEnd: "2024-03-31"}
	assert.Equal(t, "reports/alice/MONTHLY/2024-03-01_2024-03-31.md", ObjectKey(key))
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	r := types.Report{ID: "1", UserID: "alice", Type: types.ReportDaily, PeriodStart: "2024-03-01", PeriodEnd: "2024-03-01", Content: "# hi"}
	require.NoError(t, s.Put(ctx, r))
	require.NoError(t, s.Put(ctx, types.Report{ID: "2", UserID: "bob", Type: types.ReportDaily, PeriodStart: "2024-03-01", PeriodEnd: "2024-03-01"}))

	got, err := s.Get(ctx, r.Key())
	require.NoError(t, err)
	assert.Equal(t, "# hi", string(got))

	keys, err := s.List(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"reports/alice/DAILY/2024-03-01_2024-03-01.md"}, keys)

	require.NoError(t, s.Delete(ctx, r.Key()))
	_, err = s.Get(ctx, r.Key())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutRequiresKey(t *testing.T) {
	err := NewMemoryStore().Put(context.Background(), types.Report{ID: "x", Type: types.ReportDaily})
	assert.Error(t, err)
}

func TestNewS3StoreValidatesConfig(t *testing.T) {
	_, err := NewS3Store(S3Config{Endpoint: "localhost:9000", Bucket: "b"})
	assert.Error(t, err)
	_, err = NewS3Store(S3Config{AccessKey: "a", SecretKey: "s", Bucket: "b"})
	assert.Error(t, err)
	s, err := NewS3Store(S3Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "reports"})
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", s.region)
}
