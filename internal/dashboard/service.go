package dashboard

import (
	"context"
	"fmt"
	"time"
)

// Service serves the summary cards, caching the computed figures so the
// landing page does not hammer the aggregates on every load.
type Service struct {
	repo  Repository
	cache *Cache
	now   func() time.Time
}

func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func summaryKey(month time.Time) string {
	return fmt.Sprintf("dashboard:summary:%s", month.Format("2006-01"))
}

// GetSummary returns the current month's summary, from cache when fresh.
func (s *Service) GetSummary(ctx context.Context) (Summary, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	var summary Summary
	err := s.cache.FetchJSON(ctx, summaryKey(monthStart), &summary, func(ctx context.Context) (interface{}, error) {
		fresh, err := s.repo.Summary(ctx, monthStart, monthEnd)
		if err != nil {
			return nil, err
		}
		fresh.Month = monthStart.Format("2006-01")
		fresh.GeneratedAt = now
		return fresh, nil
	})
	if err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// Refresh drops the cached summary for the current month.
func (s *Service) Refresh(ctx context.Context) error {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return s.cache.Invalidate(ctx, summaryKey(monthStart))
}
