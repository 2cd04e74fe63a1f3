package usecase

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/repository"
)

// Compile-time check
var _ CodeUseCase = (*codeUC)(nil)

// CodeUpdate is a partial update of one access code. Nil fields are left
// untouched. AssignTo distinguishes "do not change" (nil) from "unassign"
// (pointer to empty string).
type CodeUpdate struct {
	IsUsed   *bool
	AssignTo *string
}

type CodeUseCase interface {
	Get(ctx context.Context, codeID string) (*model.AccessCode, error)
	ListByBatch(ctx context.Context, batchID string) ([]*model.AccessCode, error)
	// ListByUser returns the user's unexpired codes, newest assignment first.
	ListByUser(ctx context.Context, userID string) ([]*model.AccessCode, error)
	// Update edits one code while keeping the batch counter in step with
	// the assignment change.
	Update(ctx context.Context, codeID string, upd CodeUpdate) (*model.AccessCode, error)
	// Unassign returns a code to the pool.
	Unassign(ctx context.Context, codeID string) (*model.AccessCode, error)
}

type codeUC struct {
	users   repository.UserRepository
	batches repository.CodeBatchRepository
	codes   repository.AccessCodeRepository
	tm      repository.TransactionManager
	cache   DashboardCache
	log     *zerolog.Logger
}

func NewCodeUseCase(
	users repository.UserRepository,
	batches repository.CodeBatchRepository,
	codes repository.AccessCodeRepository,
	tm repository.TransactionManager,
	cache DashboardCache,
	logger *zerolog.Logger,
) *codeUC {
	return &codeUC{users: users, batches: batches, codes: codes, tm: tm, cache: cache, log: logger}
}

func (uc *codeUC) Get(ctx context.Context, codeID string) (*model.AccessCode, error) {
	return uc.codes.FindByID(ctx, nil, codeID)
}

func (uc *codeUC) ListByBatch(ctx context.Context, batchID string) ([]*model.AccessCode, error) {
	if _, err := uc.batches.FindByID(ctx, nil, batchID); err != nil {
		return nil, err
	}
	return uc.codes.ListByBatch(ctx, nil, batchID)
}

func (uc *codeUC) ListByUser(ctx context.Context, userID string) ([]*model.AccessCode, error) {
	if _, err := uc.users.FindByID(ctx, nil, userID); err != nil {
		return nil, err
	}
	return uc.codes.ListByUser(ctx, nil, userID, time.Now())
}

func (uc *codeUC) Update(ctx context.Context, codeID string, upd CodeUpdate) (*model.AccessCode, error) {
	var updated *model.AccessCode
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		code, err := uc.codes.FindByID(ctx, tx, codeID)
		if err != nil {
			return err
		}
		if err := uc.batches.Lock(ctx, tx, code.BatchID); err != nil {
			return err
		}

		delta := 0
		if upd.AssignTo != nil {
			target := *upd.AssignTo
			switch {
			case target == "" && code.IsAssigned():
				code.Unassign()
				delta = -1
			case target != "" && !code.IsAssigned():
				if _, err := uc.users.FindByID(ctx, tx, target); err != nil {
					return err
				}
				if err := code.Assign(target, time.Now()); err != nil {
					return err
				}
				delta = 1
			case target != "" && code.IsAssigned():
				// Reassignment moves the code between users; the batch
				// counter does not move.
				if _, err := uc.users.FindByID(ctx, tx, target); err != nil {
					return err
				}
				now := time.Now()
				code.AssignedTo = &target
				code.AssignedAt = &now
			}
		}
		if upd.IsUsed != nil {
			code.IsUsed = *upd.IsUsed
		}

		if err := uc.codes.Save(ctx, tx, code); err != nil {
			return err
		}
		if delta != 0 {
			if err := uc.batches.AdjustAssigned(ctx, tx, code.BatchID, delta); err != nil {
				return err
			}
		}
		updated = code
		return nil
	})
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			uc.log.Warn().Err(err).Msg("stats cache invalidation failed")
		}
	}
	return updated, nil
}

func (uc *codeUC) Unassign(ctx context.Context, codeID string) (*model.AccessCode, error) {
	empty := ""
	code, err := uc.Update(ctx, codeID, CodeUpdate{AssignTo: &empty})
	if err != nil {
		return nil, err
	}
	if code.IsAssigned() {
		return nil, domain.ErrOperationFailed
	}
	return code, nil
}
