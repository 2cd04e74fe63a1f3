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

var _ repository.MembershipRepository = (*membershipRepo)(nil)

type membershipRepo struct {
	pool *pgxpool.Pool
}

func NewMembershipRepo(pool *pgxpool.Pool) repository.MembershipRepository {
	return &membershipRepo{pool: pool}
}

const membershipColumns = `id, user_id, membership_type, start_date, end_date, payment_status, payment_method, payment_amount, paid_at, is_active, renewal_reminded, renewal_reminded_at, notes, created_at, updated_at`

func scanMembership(row pgx.Row) (*model.Membership, error) {
	var m model.Membership
	err := row.Scan(&m.ID, &m.UserID, &m.MembershipType, &m.StartDate, &m.EndDate, &m.PaymentStatus, &m.PaymentMethod, &m.PaymentAmount, &m.PaidAt, &m.IsActive, &m.RenewalReminded, &m.RenewalRemindedAt, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &m, nil
}

func (r *membershipRepo) Save(ctx context.Context, tx repository.Tx, m *model.Membership) error {
	const q = `
INSERT INTO memberships (id, user_id, membership_type, start_date, end_date, payment_status, payment_method, payment_amount, paid_at, is_active, renewal_reminded, renewal_reminded_at, notes, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
ON CONFLICT (id) DO UPDATE SET
  membership_type = $3, start_date = $4, end_date = $5, payment_status = $6,
  payment_method = $7, payment_amount = $8, paid_at = $9, is_active = $10,
  renewal_reminded = $11, renewal_reminded_at = $12, notes = $13, updated_at = $15;`
	_, err := execSQL(ctx, r.pool, tx, q,
		m.ID, m.UserID, m.MembershipType, m.StartDate, m.EndDate, m.PaymentStatus, m.PaymentMethod, m.PaymentAmount, m.PaidAt, m.IsActive, m.RenewalReminded, m.RenewalRemindedAt, m.Notes, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *membershipRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Membership, error) {
	const q = `SELECT ` + membershipColumns + ` FROM memberships WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanMembership(row)
}

func (r *membershipRepo) FindActiveByUser(ctx context.Context, tx repository.Tx, userID string, now time.Time) (*model.Membership, error) {
	const q = `
SELECT ` + membershipColumns + `
  FROM memberships
 WHERE user_id = $1 AND is_active AND end_date >= $2
 ORDER BY end_date DESC
 LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, now)
	if err != nil {
		return nil, err
	}
	return scanMembership(row)
}

func (r *membershipRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Membership, error) {
	const q = `SELECT ` + membershipColumns + ` FROM memberships ORDER BY created_at DESC;`
	return r.list(ctx, tx, q)
}

func (r *membershipRepo) ListActive(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Membership, error) {
	const q = `SELECT ` + membershipColumns + ` FROM memberships WHERE is_active AND end_date >= $1 ORDER BY end_date;`
	return r.list(ctx, tx, q, now)
}

func (r *membershipRepo) ListExpiring(ctx context.Context, tx repository.Tx, now time.Time, window time.Duration) ([]*model.Membership, error) {
	const q = `
SELECT ` + membershipColumns + `
  FROM memberships
 WHERE is_active AND end_date > $1 AND end_date <= $2
 ORDER BY end_date;`
	return r.list(ctx, tx, q, now, now.Add(window))
}

func (r *membershipRepo) ListExpired(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.Membership, error) {
	const q = `SELECT ` + membershipColumns + ` FROM memberships WHERE end_date < $1 ORDER BY end_date DESC;`
	return r.list(ctx, tx, q, now)
}

func (r *membershipRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Membership, error) {
	const q = `SELECT ` + membershipColumns + ` FROM memberships WHERE user_id = $1 ORDER BY created_at DESC;`
	return r.list(ctx, tx, q, userID)
}

func (r *membershipRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM memberships WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *membershipRepo) DeactivateExpired(ctx context.Context, tx repository.Tx, now time.Time) ([]string, error) {
	const q = `
UPDATE memberships
   SET is_active = FALSE, updated_at = $1
 WHERE is_active AND end_date < $1
RETURNING user_id;`
	rows, err := queryRows(ctx, r.pool, tx, q, now)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		userIDs = append(userIDs, id)
	}
	if rows.Err() != nil {
		return nil, domain.ErrOperationFailed
	}
	return userIDs, nil
}

func (r *membershipRepo) Stats(ctx context.Context, tx repository.Tx, now time.Time, year int) (*repository.MembershipStats, error) {
	const q = `
SELECT count(*),
       count(*) FILTER (WHERE is_active AND end_date >= $1),
       count(*) FILTER (WHERE is_active AND end_date > $1 AND end_date <= $2),
       count(*) FILTER (WHERE end_date < $1)
  FROM memberships;`
	row, err := pickRow(ctx, r.pool, tx, q, now, now.AddDate(0, 0, 30))
	if err != nil {
		return nil, err
	}
	var s repository.MembershipStats
	if err := row.Scan(&s.Total, &s.Active, &s.Expiring, &s.Expired); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}

	const qm = `
SELECT extract(month FROM created_at)::int, count(*)
  FROM memberships
 WHERE extract(year FROM created_at)::int = $1
 GROUP BY 1;`
	rows, err := queryRows(ctx, r.pool, tx, qm, year)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()
	for rows.Next() {
		var month, n int
		if err := rows.Scan(&month, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		if month >= 1 && month <= 12 {
			s.ByMonth[month-1] = n
		}
	}
	if rows.Err() != nil {
		return nil, domain.ErrOperationFailed
	}
	return &s, nil
}

func (r *membershipRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Membership, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if rows.Err() != nil {
		return nil, domain.ErrOperationFailed
	}
	return out, nil
}
