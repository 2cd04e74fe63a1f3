package postgres

import (
	"context"
	"errors"
	"hash/fnv"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/repository"
)

var _ repository.CodeBatchRepository = (*codeBatchRepo)(nil)

type codeBatchRepo struct {
	pool *pgxpool.Pool
}

func NewCodeBatchRepo(pool *pgxpool.Pool) repository.CodeBatchRepository {
	return &codeBatchRepo{pool: pool}
}

const codeBatchColumns = `id, name, description, imported_by, imported_at, total_codes, assigned_codes, expiry_date, source_file, is_active`

func scanCodeBatch(row pgx.Row) (*model.CodeBatch, error) {
	var b model.CodeBatch
	err := row.Scan(&b.ID, &b.Name, &b.Description, &b.ImportedBy, &b.ImportedAt, &b.TotalCodes, &b.AssignedCodes, &b.ExpiryDate, &b.SourceFile, &b.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &b, nil
}

func (r *codeBatchRepo) Save(ctx context.Context, tx repository.Tx, b *model.CodeBatch) error {
	const q = `
INSERT INTO code_batches (id, name, description, imported_by, imported_at, total_codes, assigned_codes, expiry_date, source_file, is_active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  name = $2, description = $3, total_codes = $6, assigned_codes = $7, expiry_date = $8, source_file = $9, is_active = $10;`
	_, err := execSQL(ctx, r.pool, tx, q,
		b.ID, b.Name, b.Description, b.ImportedBy, b.ImportedAt, b.TotalCodes, b.AssignedCodes, b.ExpiryDate, b.SourceFile, b.IsActive)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *codeBatchRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.CodeBatch, error) {
	q := `SELECT ` + codeBatchColumns + ` FROM code_batches WHERE id = $1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanCodeBatch(row)
}

func (r *codeBatchRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.CodeBatch, error) {
	const q = `SELECT ` + codeBatchColumns + ` FROM code_batches ORDER BY imported_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.CodeBatch
	for rows.Next() {
		b, err := scanCodeBatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, domain.ErrOperationFailed
	}
	return out, nil
}

func (r *codeBatchRepo) SetTotal(ctx context.Context, tx repository.Tx, id string, total int) error {
	const q = `UPDATE code_batches SET total_codes = $2 WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, total)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *codeBatchRepo) AdjustAssigned(ctx context.Context, tx repository.Tx, id string, delta int) error {
	const q = `UPDATE code_batches SET assigned_codes = assigned_codes + $2 WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id, delta)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *codeBatchRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM code_batches WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *codeBatchRepo) CountImportedBy(ctx context.Context, tx repository.Tx, userID string) (int, error) {
	const q = `SELECT count(*) FROM code_batches WHERE imported_by = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

// Lock takes a transaction-scoped advisory lock keyed by the batch id.
// Claims and deletion both go through it, so a delete waits out an in-flight
// assignment on the same batch and vice versa. Released at commit/rollback.
func (r *codeBatchRepo) Lock(ctx context.Context, tx repository.Tx, id string) error {
	if _, ok := tx.(pgx.Tx); !ok {
		return domain.ErrInvalidExecContext
	}
	_, err := execSQL(ctx, r.pool, tx, "SELECT pg_advisory_xact_lock($1)", hashToInt64(id))
	return err
}

func hashToInt64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64() & ((1 << 63) - 1))
}
