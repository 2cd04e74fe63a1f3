package repository

import (
	"context"

	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
)

// CodeBatchRepository is the port for import batches and their counters.
type CodeBatchRepository interface {
	Save(ctx context.Context, tx Tx, batch *model.CodeBatch) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.CodeBatch, error)
	// ListAll returns batches newest import first.
	ListAll(ctx context.Context, tx Tx) ([]*model.CodeBatch, error)
	// SetTotal corrects total_codes after import filtering.
	SetTotal(ctx context.Context, tx Tx, id string, total int) error
	// AdjustAssigned shifts assigned_codes by delta (positive on claims,
	// negative on unassignment). Never recomputed from a scan.
	AdjustAssigned(ctx context.Context, tx Tx, id string, delta int) error
	Delete(ctx context.Context, tx Tx, id string) error
	// CountImportedBy reports how many batches name the user as importer.
	CountImportedBy(ctx context.Context, tx Tx, userID string) (int, error)
	// Lock serializes writers on one batch for the lifetime of tx. Claims
	// and batch deletion both take it first.
	Lock(ctx context.Context, tx Tx, id string) error
}
