package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/repository"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/logging"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/metrics"
)

// Compile-time check
var _ AssignUseCase = (*assignUC)(nil)

type AssignUseCase interface {
	// Assign claims exactly `count` unassigned codes from the batch for the
	// user, oldest first. The claim is all-or-nothing: when the pool holds
	// fewer than `count` eligible codes nothing is assigned and
	// domain.ErrInsufficientPool is returned.
	Assign(ctx context.Context, batchID, userID string, count int) ([]*model.AccessCode, error)
}

type assignUC struct {
	users   repository.UserRepository
	batches repository.CodeBatchRepository
	codes   repository.AccessCodeRepository
	tm      repository.TransactionManager
	cache   DashboardCache
	log     *zerolog.Logger
}

func NewAssignUseCase(
	users repository.UserRepository,
	batches repository.CodeBatchRepository,
	codes repository.AccessCodeRepository,
	tm repository.TransactionManager,
	cache DashboardCache,
	logger *zerolog.Logger,
) *assignUC {
	return &assignUC{users: users, batches: batches, codes: codes, tm: tm, cache: cache, log: logger}
}

func (uc *assignUC) Assign(ctx context.Context, batchID, userID string, count int) ([]*model.AccessCode, error) {
	defer logging.TraceDuration(uc.log, "Assign")()

	if count <= 0 {
		return nil, domain.ErrInvalidCount
	}
	user, err := uc.users.FindByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	var claimed []*model.AccessCode
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		// Serialize with concurrent claims and batch deletion.
		if err := uc.batches.Lock(ctx, tx, batchID); err != nil {
			return err
		}
		batch, err := uc.batches.FindByID(ctx, tx, batchID)
		if err != nil {
			return err
		}
		if batch.Available() < count {
			return domain.ErrInsufficientPool
		}

		claimed, err = uc.codes.ClaimUnassigned(ctx, tx, batchID, user.ID, count, time.Now())
		if err != nil {
			return err
		}
		if len(claimed) < count {
			// The counter said enough but the rows disagreed (used codes
			// inside the window). Roll everything back.
			return domain.ErrInsufficientPool
		}
		return uc.batches.AdjustAssigned(ctx, tx, batchID, len(claimed))
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCodesAssigned(len(claimed))
	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			uc.log.Warn().Err(err).Msg("stats cache invalidation failed")
		}
	}

	uc.log.Info().
		Str("batch_id", batchID).
		Str("user_id", userID).
		Int("count", len(claimed)).
		Msg("codes assigned")
	return claimed, nil
}
