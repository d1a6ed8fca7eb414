package dashboard

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	calls   int
	summary Summary
}

func (f *fakeRepo) Summary(ctx context.Context, monthStart, monthEnd time.Time) (Summary, error) {
	f.calls++
	return f.summary, nil
}

func testClock() time.Time {
	return time.Date(2024, 8, 15, 9, 0, 0, 0, time.UTC)
}

func newCachedService(t *testing.T, repo Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewService(repo, NewCache(client, time.Minute))
	svc.WithNow(testClock)
	return svc
}

func TestGetSummaryCachesResult(t *testing.T) {
	repo := &fakeRepo{summary: Summary{TotalModal: 150_000_000, UnitsReady: 3, SalesCount: 2}}
	svc := newCachedService(t, repo)

	first, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	require.Equal(t, "2024-08", first.Month)
	require.Equal(t, int64(150_000_000), first.TotalModal)
	require.Equal(t, 1, repo.calls)

	second, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	require.Equal(t, first.TotalModal, second.TotalModal)
	require.Equal(t, 1, repo.calls)
}

func TestRefreshInvalidatesCache(t *testing.T) {
	repo := &fakeRepo{summary: Summary{UnitsReady: 5}}
	svc := newCachedService(t, repo)

	_, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	require.NoError(t, svc.Refresh(context.Background()))

	_, err = svc.GetSummary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, repo.calls)
}

func TestNilCacheFallsThrough(t *testing.T) {
	repo := &fakeRepo{summary: Summary{UnitsSold: 7}}
	svc := NewService(repo, nil)
	svc.WithNow(testClock)

	summary, err := svc.GetSummary(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, summary.UnitsSold)
	require.Equal(t, 1, repo.calls)
}
