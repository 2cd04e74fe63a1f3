package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.AccessCodeRepository = (*accessCodeRepo)(nil)

type accessCodeRepo struct {
	pool *pgxpool.Pool
}

func NewAccessCodeRepo(pool *pgxpool.Pool) repository.AccessCodeRepository {
	return &accessCodeRepo{pool: pool}
}

const accessCodeColumns = `id, code, batch_id, is_used, assigned_to, assigned_at, expires_at, email_sent, email_sent_at, created_at`

func scanAccessCode(row pgx.Row) (*model.AccessCode, error) {
	var c model.AccessCode
	err := row.Scan(&c.ID, &c.Code, &c.BatchID, &c.IsUsed, &c.AssignedTo, &c.AssignedAt, &c.ExpiresAt, &c.EmailSent, &c.EmailSentAt, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}

func (r *accessCodeRepo) BulkInsert(ctx context.Context, tx repository.Tx, codes []*model.AccessCode) error {
	if len(codes) == 0 {
		return nil
	}
	const q = `
INSERT INTO access_codes (id, code, batch_id, is_used, assigned_to, assigned_at, expires_at, email_sent, email_sent_at, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10);`

	for _, c := range codes {
		_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Code, c.BatchID, c.IsUsed, c.AssignedTo, c.AssignedAt, c.ExpiresAt, c.EmailSent, c.EmailSentAt, c.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicateCode
			}
			if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
				return err
			}
			return domain.ErrOperationFailed
		}
	}
	return nil
}

func (r *accessCodeRepo) Save(ctx context.Context, tx repository.Tx, c *model.AccessCode) error {
	const q = `
UPDATE access_codes
   SET is_used = $2, assigned_to = $3, assigned_at = $4, email_sent = $5, email_sent_at = $6
 WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, c.ID, c.IsUsed, c.AssignedTo, c.AssignedAt, c.EmailSent, c.EmailSentAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *accessCodeRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.AccessCode, error) {
	q := `SELECT ` + accessCodeColumns + ` FROM access_codes WHERE id = $1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanAccessCode(row)
}

func (r *accessCodeRepo) ExistsByCode(ctx context.Context, tx repository.Tx, code string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM access_codes WHERE code = $1);`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}

func (r *accessCodeRepo) ListByBatch(ctx context.Context, tx repository.Tx, batchID string) ([]*model.AccessCode, error) {
	const q = `SELECT ` + accessCodeColumns + ` FROM access_codes WHERE batch_id = $1 ORDER BY created_at, id;`
	return r.list(ctx, tx, q, batchID)
}

func (r *accessCodeRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string, now time.Time) ([]*model.AccessCode, error) {
	const q = `
SELECT ` + accessCodeColumns + `
  FROM access_codes
 WHERE assigned_to = $1 AND expires_at >= $2
 ORDER BY assigned_at DESC;`
	return r.list(ctx, tx, q, userID, now)
}

// ClaimUnassigned performs the conditional per-code claim. The subselect
// locks eligible rows in insertion order and the outer UPDATE re-checks
// assigned_to IS NULL, so two racing claims can never take the same code.
func (r *accessCodeRepo) ClaimUnassigned(ctx context.Context, tx repository.Tx, batchID, userID string, count int, at time.Time) ([]*model.AccessCode, error) {
	const q = `
UPDATE access_codes
   SET assigned_to = $2, assigned_at = $3
 WHERE id IN (
         SELECT id FROM access_codes
          WHERE batch_id = $1 AND assigned_to IS NULL AND is_used = FALSE
          ORDER BY created_at, id
          LIMIT $4
          FOR UPDATE
       )
   AND assigned_to IS NULL
RETURNING ` + accessCodeColumns + `;`

	rows, err := queryRows(ctx, r.pool, tx, q, batchID, userID, at, count)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var claimed []*model.AccessCode
	for rows.Next() {
		c, err := scanAccessCode(rows)
		if err != nil {
			return nil, err
		}
		claimed = append(claimed, c)
	}
	if rows.Err() != nil {
		return nil, domain.ErrOperationFailed
	}
	return claimed, nil
}

func (r *accessCodeRepo) UnassignByUser(ctx context.Context, tx repository.Tx, userID string) (map[string]int, error) {
	const q = `
UPDATE access_codes
   SET assigned_to = NULL, assigned_at = NULL
 WHERE assigned_to = $1
RETURNING batch_id;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	released := make(map[string]int)
	for rows.Next() {
		var batchID string
		if err := rows.Scan(&batchID); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		released[batchID]++
	}
	if rows.Err() != nil {
		return nil, domain.ErrOperationFailed
	}
	return released, nil
}

func (r *accessCodeRepo) DeleteByBatch(ctx context.Context, tx repository.Tx, batchID string) (int, error) {
	const q = `DELETE FROM access_codes WHERE batch_id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, batchID)
	if err != nil {
		return 0, domain.ErrOperationFailed
	}
	return int(tag.RowsAffected()), nil
}

func (r *accessCodeRepo) MarkEmailSent(ctx context.Context, tx repository.Tx, codeIDs []string, at time.Time) error {
	if len(codeIDs) == 0 {
		return nil
	}
	const q = `UPDATE access_codes SET email_sent = TRUE, email_sent_at = $2 WHERE id = ANY($1);`
	if _, err := execSQL(ctx, r.pool, tx, q, codeIDs, at); err != nil {
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *accessCodeRepo) Counts(ctx context.Context, tx repository.Tx) (int, int, int, error) {
	const q = `
SELECT count(*),
       count(*) FILTER (WHERE assigned_to IS NOT NULL),
       count(*) FILTER (WHERE is_used)
  FROM access_codes;`
	row, err := pickRow(ctx, r.pool, tx, q)
	if err != nil {
		return 0, 0, 0, err
	}
	var total, assigned, used int
	if err := row.Scan(&total, &assigned, &used); err != nil {
		return 0, 0, 0, domain.ErrReadDatabaseRow
	}
	return total, assigned, used, nil
}

func (r *accessCodeRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.AccessCode, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.AccessCode
	for rows.Next() {
		c, err := scanAccessCode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if rows.Err() != nil {
		return nil, domain.ErrOperationFailed
	}
	return out, nil
}
