package repository

import (
	"context"
	"time"

	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
)

// AccessCodeRepository is the port for the access-code store. It owns code
// uniqueness and the conditional claim primitive used by the assigner.
type AccessCodeRepository interface {
	// BulkInsert persists freshly imported codes.
	BulkInsert(ctx context.Context, tx Tx, codes []*model.AccessCode) error
	// Save updates a single code (isUsed / assignment fields).
	Save(ctx context.Context, tx Tx, code *model.AccessCode) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.AccessCode, error)
	// ExistsByCode reports whether a code value is present in any batch.
	ExistsByCode(ctx context.Context, tx Tx, code string) (bool, error)
	ListByBatch(ctx context.Context, tx Tx, batchID string) ([]*model.AccessCode, error)
	// ListByUser returns unexpired codes assigned to the user, most recently
	// assigned first.
	ListByUser(ctx context.Context, tx Tx, userID string, now time.Time) ([]*model.AccessCode, error)
	// ClaimUnassigned atomically claims up to `count` eligible codes
	// (assigned_to IS NULL AND is_used = FALSE) from the batch for the user,
	// in insertion order. It returns the claimed codes; the caller must roll
	// back the surrounding transaction when fewer than `count` were claimed.
	ClaimUnassigned(ctx context.Context, tx Tx, batchID, userID string, count int, at time.Time) ([]*model.AccessCode, error)
	// UnassignByUser releases every assignment held by the user (clearing
	// assigned_to and assigned_at together) and reports how many codes went
	// back to the pool per batch, so the caller can settle the batch
	// counters in the same transaction.
	UnassignByUser(ctx context.Context, tx Tx, userID string) (map[string]int, error)
	// DeleteByBatch removes every code of a batch and returns how many went.
	DeleteByBatch(ctx context.Context, tx Tx, batchID string) (int, error)
	// MarkEmailSent flags codes whose delivery mail went out.
	MarkEmailSent(ctx context.Context, tx Tx, codeIDs []string, at time.Time) error
	// Counts returns total / assigned / used code counts across all batches.
	Counts(ctx context.Context, tx Tx) (total, assigned, used int, err error)
}
