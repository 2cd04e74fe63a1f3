package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepo{pool: pool}
}

const userColumns = `id, first_name, last_name, email, password_hash, role, status, phone_number, created_at, last_login`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role, &u.Status, &u.PhoneNumber, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &u, nil
}

func (r *userRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (id, first_name, last_name, email, password_hash, role, status, phone_number, created_at, last_login)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  first_name = $2, last_name = $3, email = $4, password_hash = $5,
  role = $6, status = $7, phone_number = $8, last_login = $10;`
	_, err := execSQL(ctx, r.pool, tx, q,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Role, u.Status, u.PhoneNumber, u.CreatedAt, u.LastLogin)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1;`
	row, err := pickRow(ctx, r.pool, tx, q, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY last_name, first_name OFFSET $1 LIMIT $2;`
	return r.list(ctx, tx, q, offset, limit)
}

func (r *userRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1;`
	return r.list(ctx, tx, q, limit)
}

func (r *userRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM users WHERE id = $1;`
	tag, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		return domain.ErrOperationFailed
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *userRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.UserStatus]int, error) {
	const q = `SELECT status, count(*) FROM users GROUP BY status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	out := make(map[model.UserStatus]int)
	for rows.Next() {
		var status model.UserStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out[status] = n
	}
	if rows.Err() != nil {
		return nil, domain.ErrOperationFailed
	}
	return out, nil
}

func (r *userRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.User, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if rows.Err() != nil {
		return nil, domain.ErrOperationFailed
	}
	return out, nil
}
