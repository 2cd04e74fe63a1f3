package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
)

const dashboardStatsKey = "dashboard:stats"

// StatsCache keeps the aggregated dashboard numbers warm between requests.
// The dashboard is the landing page for every admin session, so the
// underlying counts are only recomputed once per TTL.
type StatsCache struct {
	client RedisClient
	ttl    time.Duration
}

func NewStatsCache(client RedisClient, ttl time.Duration) *StatsCache {
	return &StatsCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *StatsCache) Store(ctx context.Context, stats *model.DashboardStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, dashboardStatsKey, data, c.ttl)
}

func (c *StatsCache) Get(ctx context.Context) (*model.DashboardStats, error) {
	data, err := c.client.Get(ctx, dashboardStatsKey)
	if err != nil {
		return nil, err
	}

	var stats model.DashboardStats
	if err := json.Unmarshal([]byte(data), &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Invalidate drops the cached snapshot, called after writes that change
// the counts (imports, assignments, membership changes).
func (c *StatsCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, dashboardStatsKey)
}
