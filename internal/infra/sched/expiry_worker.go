package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shadow6402/ASTT-Esport/internal/infra/metrics"
	"github.com/Shadow6402/ASTT-Esport/internal/usecase"
)

// ExpiryWorker periodically deactivates lapsed memberships via the use case.
type ExpiryWorker struct {
	interval     time.Duration
	membershipUC usecase.MembershipUseCase
	log          *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, membershipUC usecase.MembershipUseCase, logger *zerolog.Logger) *ExpiryWorker {
	compLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval:     interval,
		membershipUC: membershipUC,
		log:          &compLog,
	}
}

func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Msg("Starting expiry worker")
	// Sweep once on startup, then on every tick.
	w.sweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *ExpiryWorker) sweep(ctx context.Context) {
	n, err := w.membershipUC.ExpireLapsed(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("expiry sweep failed")
		return
	}
	if n > 0 {
		metrics.IncMembershipsExpired(n)
		w.log.Info().Int("count", n).Msg("lapsed memberships deactivated")
	}
}
