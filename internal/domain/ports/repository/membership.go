package repository

import (
	"context"
	"time"

	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
)

// MembershipStats aggregates membership counts for the dashboard.
type MembershipStats struct {
	Total    int
	Active   int
	Expiring int
	Expired  int
	ByMonth  [12]int // creations per month of the given year
}

// MembershipRepository is the port for paid memberships.
type MembershipRepository interface {
	Save(ctx context.Context, tx Tx, m *model.Membership) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Membership, error)
	// FindActiveByUser returns the user's membership that is active and not
	// yet past its end date, or ErrNotFound.
	FindActiveByUser(ctx context.Context, tx Tx, userID string, now time.Time) (*model.Membership, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Membership, error)
	ListActive(ctx context.Context, tx Tx, now time.Time) ([]*model.Membership, error)
	// ListExpiring returns active memberships ending inside (now, now+window].
	ListExpiring(ctx context.Context, tx Tx, now time.Time, window time.Duration) ([]*model.Membership, error)
	ListExpired(ctx context.Context, tx Tx, now time.Time) ([]*model.Membership, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Membership, error)
	Delete(ctx context.Context, tx Tx, id string) error
	// DeactivateExpired flips is_active off for lapsed memberships and
	// returns the affected user ids.
	DeactivateExpired(ctx context.Context, tx Tx, now time.Time) ([]string, error)
	Stats(ctx context.Context, tx Tx, now time.Time, year int) (*MembershipStats, error)
}
