package usecase

import (
	"context"
	"time"

	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
)

// DashboardCache is the cache collaborator for aggregated dashboard stats.
// Satisfied by the redis stats cache; use cases only invalidate it after
// writes and read through it on the dashboard path.
type DashboardCache interface {
	Get(ctx context.Context) (*model.DashboardStats, error)
	Store(ctx context.Context, stats *model.DashboardStats) error
	Invalidate(ctx context.Context) error
}

// LoginRateLimiter throttles authentication attempts per key.
type LoginRateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	Reset(ctx context.Context, key string) error
}
