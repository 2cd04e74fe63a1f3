package repository

import (
	"context"

	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
)

// UserRepository is the port for user accounts.
type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.User, error)
	// ListRecent returns the newest registrations first.
	ListRecent(ctx context.Context, tx Tx, limit int) ([]*model.User, error)
	Delete(ctx context.Context, tx Tx, id string) error
	CountByStatus(ctx context.Context, tx Tx) (map[model.UserStatus]int, error)
}
