package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/repository"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/logging"
)

// Compile-time check
var _ MembershipUseCase = (*membershipUC)(nil)

// MembershipRequest carries the fields of a new membership.
type MembershipRequest struct {
	UserID         string
	MembershipType model.MembershipType
	StartDate      time.Time
	EndDate        time.Time
	PaymentAmount  int64
	PaymentMethod  string
	Notes          string
}

// MembershipUpdate is a partial update. Nil fields are left untouched.
type MembershipUpdate struct {
	EndDate       *time.Time
	PaymentStatus *model.PaymentStatus
	PaymentMethod *string
	Notes         *string
	IsActive      *bool
}

type MembershipUseCase interface {
	// Create opens a membership for a user. A user holds at most one
	// active membership at a time.
	Create(ctx context.Context, req MembershipRequest) (*model.Membership, error)
	Get(ctx context.Context, id string) (*model.Membership, error)
	ListAll(ctx context.Context) ([]*model.Membership, error)
	ListActive(ctx context.Context) ([]*model.Membership, error)
	ListExpiring(ctx context.Context, window time.Duration) ([]*model.Membership, error)
	ListExpired(ctx context.Context) ([]*model.Membership, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Membership, error)
	// Renew extends the membership by one period of its type.
	Renew(ctx context.Context, id string) (*model.Membership, error)
	// RecordPayment marks the membership paid and activates its user.
	RecordPayment(ctx context.Context, id, method string) (*model.Membership, error)
	Update(ctx context.Context, id string, upd MembershipUpdate) (*model.Membership, error)
	Delete(ctx context.Context, id string) error
	// ExpireLapsed deactivates memberships past their end date and flips
	// holders without another active membership to expired.
	ExpireLapsed(ctx context.Context) (int, error)
}

type membershipUC struct {
	memberships repository.MembershipRepository
	users       repository.UserRepository
	cache       DashboardCache
	log         *zerolog.Logger
}

func NewMembershipUseCase(
	memberships repository.MembershipRepository,
	users repository.UserRepository,
	cache DashboardCache,
	logger *zerolog.Logger,
) *membershipUC {
	return &membershipUC{memberships: memberships, users: users, cache: cache, log: logger}
}

func (uc *membershipUC) Create(ctx context.Context, req MembershipRequest) (*model.Membership, error) {
	defer logging.TraceDuration(uc.log, "CreateMembership")()

	user, err := uc.users.FindByID(ctx, nil, req.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if _, err := uc.memberships.FindActiveByUser(ctx, nil, user.ID, now); err == nil {
		return nil, domain.ErrActiveMembershipExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	m, err := model.NewMembership(req.UserID, req.MembershipType, req.StartDate, req.EndDate, req.PaymentAmount)
	if err != nil {
		return nil, err
	}
	m.PaymentMethod = req.PaymentMethod
	m.Notes = req.Notes

	if err := uc.memberships.Save(ctx, nil, m); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	uc.log.Info().Str("membership_id", m.ID).Str("user_id", m.UserID).Msg("membership created")
	return m, nil
}

func (uc *membershipUC) Get(ctx context.Context, id string) (*model.Membership, error) {
	return uc.memberships.FindByID(ctx, nil, id)
}

func (uc *membershipUC) ListAll(ctx context.Context) ([]*model.Membership, error) {
	return uc.memberships.ListAll(ctx, nil)
}

func (uc *membershipUC) ListActive(ctx context.Context) ([]*model.Membership, error) {
	return uc.memberships.ListActive(ctx, nil, time.Now())
}

func (uc *membershipUC) ListExpiring(ctx context.Context, window time.Duration) ([]*model.Membership, error) {
	return uc.memberships.ListExpiring(ctx, nil, time.Now(), window)
}

func (uc *membershipUC) ListExpired(ctx context.Context) ([]*model.Membership, error) {
	return uc.memberships.ListExpired(ctx, nil, time.Now())
}

func (uc *membershipUC) ListByUser(ctx context.Context, userID string) ([]*model.Membership, error) {
	if _, err := uc.users.FindByID(ctx, nil, userID); err != nil {
		return nil, err
	}
	return uc.memberships.ListByUser(ctx, nil, userID)
}

func (uc *membershipUC) Renew(ctx context.Context, id string) (*model.Membership, error) {
	m, err := uc.memberships.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	m.Renew(time.Now())
	if err := uc.memberships.Save(ctx, nil, m); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	uc.log.Info().Str("membership_id", m.ID).Time("end_date", m.EndDate).Msg("membership renewed")
	return m, nil
}

func (uc *membershipUC) RecordPayment(ctx context.Context, id, method string) (*model.Membership, error) {
	m, err := uc.memberships.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	m.PaymentStatus = model.PaymentPaid
	m.PaymentMethod = method
	m.PaidAt = &now
	m.UpdatedAt = now
	if err := uc.memberships.Save(ctx, nil, m); err != nil {
		return nil, err
	}

	// A paid membership activates its holder.
	user, err := uc.users.FindByID(ctx, nil, m.UserID)
	if err == nil && user.Status != model.StatusActive {
		user.Status = model.StatusActive
		if err := uc.users.Save(ctx, nil, user); err != nil {
			uc.log.Warn().Err(err).Str("user_id", user.ID).Msg("user activation failed")
		}
	}

	uc.invalidate(ctx)
	return m, nil
}

func (uc *membershipUC) Update(ctx context.Context, id string, upd MembershipUpdate) (*model.Membership, error) {
	m, err := uc.memberships.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if upd.EndDate != nil {
		if !upd.EndDate.After(m.StartDate) {
			return nil, domain.ErrInvalidArgument
		}
		m.EndDate = *upd.EndDate
	}
	if upd.PaymentStatus != nil {
		m.PaymentStatus = *upd.PaymentStatus
	}
	if upd.PaymentMethod != nil {
		m.PaymentMethod = *upd.PaymentMethod
	}
	if upd.Notes != nil {
		m.Notes = *upd.Notes
	}
	if upd.IsActive != nil {
		m.IsActive = *upd.IsActive
	}
	m.UpdatedAt = time.Now()
	if err := uc.memberships.Save(ctx, nil, m); err != nil {
		return nil, err
	}
	uc.invalidate(ctx)
	return m, nil
}

func (uc *membershipUC) Delete(ctx context.Context, id string) error {
	if err := uc.memberships.Delete(ctx, nil, id); err != nil {
		return err
	}
	uc.invalidate(ctx)
	return nil
}

func (uc *membershipUC) ExpireLapsed(ctx context.Context) (int, error) {
	now := time.Now()
	userIDs, err := uc.memberships.DeactivateExpired(ctx, nil, now)
	if err != nil {
		return 0, err
	}

	for _, userID := range userIDs {
		// A user may hold another, still-running membership (manual fix-ups).
		if _, err := uc.memberships.FindActiveByUser(ctx, nil, userID, now); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			uc.log.Warn().Err(err).Str("user_id", userID).Msg("active membership lookup failed")
			continue
		}
		user, err := uc.users.FindByID(ctx, nil, userID)
		if err != nil {
			uc.log.Warn().Err(err).Str("user_id", userID).Msg("user lookup failed")
			continue
		}
		if user.Status != model.StatusExpired {
			user.Status = model.StatusExpired
			if err := uc.users.Save(ctx, nil, user); err != nil {
				uc.log.Warn().Err(err).Str("user_id", userID).Msg("user expiry flag failed")
			}
		}
	}

	if len(userIDs) > 0 {
		uc.invalidate(ctx)
	}
	return len(userIDs), nil
}

func (uc *membershipUC) invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("stats cache invalidation failed")
	}
}
