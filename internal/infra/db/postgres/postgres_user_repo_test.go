//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v4"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/repository"
)

// Deleting a user who still holds assigned codes must release the codes and
// settle the batch counter in one transaction; a bare row delete would trip
// the assigned_at_with_assignee constraint.
func TestUserRepo_DeleteWithAssignedCodes(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	admin := mustUser(t, "admin@astt.fr")
	member := mustUser(t, "member@astt.fr")
	b := mustBatch(t, admin, 3)

	users := NewUserRepo(testPool)
	codes := NewAccessCodeRepo(testPool)
	batches := NewCodeBatchRepo(testPool)
	tm := NewTxManager(testPool)

	err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := batches.Lock(ctx, tx, b.ID); err != nil {
			return err
		}
		claimed, err := codes.ClaimUnassigned(ctx, tx, b.ID, member.ID, 2, time.Now())
		if err != nil {
			return err
		}
		if len(claimed) != 2 {
			t.Fatalf("expected 2 claimed, got %d", len(claimed))
		}
		return batches.AdjustAssigned(ctx, tx, b.ID, 2)
	})
	if err != nil {
		t.Fatalf("claim: %v", err)
	}

	err = tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		released, err := codes.UnassignByUser(ctx, tx, member.ID)
		if err != nil {
			return err
		}
		if released[b.ID] != 2 {
			t.Fatalf("expected 2 released from batch, got %d", released[b.ID])
		}
		for batchID, n := range released {
			if err := batches.Lock(ctx, tx, batchID); err != nil {
				return err
			}
			if err := batches.AdjustAssigned(ctx, tx, batchID, -n); err != nil {
				return err
			}
		}
		return users.Delete(ctx, tx, member.ID)
	})
	if err != nil {
		t.Fatalf("delete user: %v", err)
	}

	if _, err := users.FindByID(ctx, nil, member.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected deleted user, got %v", err)
	}
	got, err := batches.FindByID(ctx, nil, b.ID)
	if err != nil {
		t.Fatalf("find batch: %v", err)
	}
	if got.AssignedCodes != 0 {
		t.Fatalf("expected assigned_codes = 0, got %d", got.AssignedCodes)
	}
	all, err := codes.ListByBatch(ctx, nil, b.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, c := range all {
		if c.AssignedTo != nil || c.AssignedAt != nil {
			t.Fatalf("code %s still assigned after user delete", c.Code)
		}
	}
}

func TestCodeBatchRepo_CountImportedBy(t *testing.T) {
	cleanup(t)
	ctx := context.Background()
	admin := mustUser(t, "admin@astt.fr")
	other := mustUser(t, "other@astt.fr")
	mustBatch(t, admin, 1)
	mustBatch(t, admin, 1)

	batches := NewCodeBatchRepo(testPool)
	n, err := batches.CountImportedBy(ctx, nil, admin.ID)
	if err != nil || n != 2 {
		t.Fatalf("CountImportedBy(admin) = %d, %v; want 2, nil", n, err)
	}
	n, err = batches.CountImportedBy(ctx, nil, other.ID)
	if err != nil || n != 0 {
		t.Fatalf("CountImportedBy(other) = %d, %v; want 0, nil", n, err)
	}
}
