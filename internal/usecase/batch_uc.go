package usecase

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/repository"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/logging"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/metrics"
)

// Compile-time check
var _ BatchUseCase = (*batchUC)(nil)

type BatchUseCase interface {
	Get(ctx context.Context, batchID string) (*model.CodeBatch, error)
	List(ctx context.Context) ([]*model.CodeBatch, error)
	// Delete removes the batch and all its codes, assigned or not. The
	// deletion takes the batch lock so it cannot interleave with a claim.
	Delete(ctx context.Context, batchID string) (removedCodes int, err error)
}

type batchUC struct {
	batches repository.CodeBatchRepository
	codes   repository.AccessCodeRepository
	tm      repository.TransactionManager
	cache   DashboardCache
	log     *zerolog.Logger
}

func NewBatchUseCase(
	batches repository.CodeBatchRepository,
	codes repository.AccessCodeRepository,
	tm repository.TransactionManager,
	cache DashboardCache,
	logger *zerolog.Logger,
) *batchUC {
	return &batchUC{batches: batches, codes: codes, tm: tm, cache: cache, log: logger}
}

func (uc *batchUC) Get(ctx context.Context, batchID string) (*model.CodeBatch, error) {
	return uc.batches.FindByID(ctx, nil, batchID)
}

func (uc *batchUC) List(ctx context.Context) ([]*model.CodeBatch, error) {
	return uc.batches.ListAll(ctx, nil)
}

func (uc *batchUC) Delete(ctx context.Context, batchID string) (int, error) {
	defer logging.TraceDuration(uc.log, "DeleteBatch")()

	var removed int
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.batches.Lock(ctx, tx, batchID); err != nil {
			return err
		}
		if _, err := uc.batches.FindByID(ctx, tx, batchID); err != nil {
			return err
		}
		var err error
		removed, err = uc.codes.DeleteByBatch(ctx, tx, batchID)
		if err != nil {
			return err
		}
		return uc.batches.Delete(ctx, tx, batchID)
	})
	if err != nil {
		return 0, err
	}

	metrics.IncBatchesDeleted()
	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			uc.log.Warn().Err(err).Msg("stats cache invalidation failed")
		}
	}

	uc.log.Info().Str("batch_id", batchID).Int("removed_codes", removed).Msg("code batch deleted")
	return removed, nil
}
