package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/repository"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/logging"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/metrics"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

const expiringWindow = 30 * 24 * time.Hour

type StatsUseCase interface {
	// Dashboard returns the aggregated snapshot, served from cache when a
	// fresh one is available.
	Dashboard(ctx context.Context) (*model.DashboardStats, error)
}

type statsUC struct {
	users       repository.UserRepository
	memberships repository.MembershipRepository
	codes       repository.AccessCodeRepository
	cache       DashboardCache
	log         *zerolog.Logger
}

func NewStatsUseCase(
	users repository.UserRepository,
	memberships repository.MembershipRepository,
	codes repository.AccessCodeRepository,
	cache DashboardCache,
	logger *zerolog.Logger,
) *statsUC {
	return &statsUC{users: users, memberships: memberships, codes: codes, cache: cache, log: logger}
}

func (uc *statsUC) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	defer logging.TraceDuration(uc.log, "Dashboard")()

	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	now := time.Now()
	userCounts, err := uc.users.CountByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}
	ms, err := uc.memberships.Stats(ctx, nil, now, now.Year())
	if err != nil {
		return nil, err
	}
	total, assigned, used, err := uc.codes.Counts(ctx, nil)
	if err != nil {
		return nil, err
	}

	stats := &model.DashboardStats{
		ActiveUsers:  userCounts[model.StatusActive],
		PendingUsers: userCounts[model.StatusPending],
		ExpiredUsers: userCounts[model.StatusExpired],

		TotalMemberships:    ms.Total,
		ActiveMemberships:   ms.Active,
		ExpiringMemberships: ms.Expiring,
		ExpiredMemberships:  ms.Expired,
		MembershipsByMonth:  ms.ByMonth,

		TotalCodes:     total,
		AssignedCodes:  assigned,
		UsedCodes:      used,
		AvailableCodes: total - assigned,

		GeneratedAt: now,
	}
	for _, n := range userCounts {
		stats.TotalUsers += n
	}

	metrics.SetCodePool(total, assigned, used)
	metrics.SetMembershipsTotal(ms.Active, ms.Expiring, ms.Expired)

	if uc.cache != nil {
		if err := uc.cache.Store(ctx, stats); err != nil {
			uc.log.Warn().Err(err).Msg("stats cache store failed")
		}
	}
	return stats, nil
}
