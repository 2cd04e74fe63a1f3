package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Shadow6402/ASTT-Esport/internal/domain"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/repository"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/logging"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

const (
	loginAttemptLimit  = 5
	loginAttemptWindow = 15 * time.Minute
)

// UserUpdate is a partial update of a user profile. Nil fields are left
// untouched.
type UserUpdate struct {
	FirstName   *string
	LastName    *string
	Email       *string
	PhoneNumber *string
	Role        *model.UserRole
	Status      *model.UserStatus
}

type UserUseCase interface {
	Register(ctx context.Context, firstName, lastName, email, password, phone string) (*model.User, error)
	// Authenticate verifies credentials and records the login. Repeated
	// failures for one email are rate limited.
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	List(ctx context.Context, offset, limit int) ([]*model.User, error)
	ListRecent(ctx context.Context, limit int) ([]*model.User, error)
	Update(ctx context.Context, userID string, upd UserUpdate) (*model.User, error)
	ChangePassword(ctx context.Context, userID, current, next string) error
	Delete(ctx context.Context, userID string) error
}

type userUC struct {
	users   repository.UserRepository
	codes   repository.AccessCodeRepository
	batches repository.CodeBatchRepository
	tm      repository.TransactionManager
	limiter LoginRateLimiter
	log     *zerolog.Logger
}

func NewUserUseCase(
	users repository.UserRepository,
	codes repository.AccessCodeRepository,
	batches repository.CodeBatchRepository,
	tm repository.TransactionManager,
	limiter LoginRateLimiter,
	logger *zerolog.Logger,
) *userUC {
	return &userUC{users: users, codes: codes, batches: batches, tm: tm, limiter: limiter, log: logger}
}

func (uc *userUC) Register(ctx context.Context, firstName, lastName, email, password, phone string) (*model.User, error) {
	defer logging.TraceDuration(uc.log, "Register")()

	if len(password) < 8 {
		return nil, domain.ErrInvalidArgument
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := model.NewUser("", firstName, lastName, email, string(hash))
	if err != nil {
		return nil, err
	}
	user.PhoneNumber = phone

	if err := uc.users.Save(ctx, nil, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (uc *userUC) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if uc.limiter != nil {
		ok, err := uc.limiter.Allow(ctx, "rate_limit:login:"+email, loginAttemptLimit, loginAttemptWindow)
		if err != nil {
			// Redis being down must not lock everyone out.
			uc.log.Warn().Err(err).Msg("login rate limiter unavailable")
		} else if !ok {
			return nil, domain.ErrRateLimited
		}
	}

	user, err := uc.users.FindByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrUnauthorized
	}

	user.Touch()
	if err := uc.users.Save(ctx, nil, user); err != nil {
		return nil, err
	}
	if uc.limiter != nil {
		if err := uc.limiter.Reset(ctx, "rate_limit:login:"+email); err != nil {
			uc.log.Warn().Err(err).Msg("login rate limiter reset failed")
		}
	}
	return user, nil
}

func (uc *userUC) Get(ctx context.Context, userID string) (*model.User, error) {
	return uc.users.FindByID(ctx, nil, userID)
}

func (uc *userUC) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return uc.users.List(ctx, nil, offset, limit)
}

func (uc *userUC) ListRecent(ctx context.Context, limit int) ([]*model.User, error) {
	if limit <= 0 || limit > 50 {
		limit = 5
	}
	return uc.users.ListRecent(ctx, nil, limit)
}

func (uc *userUC) Update(ctx context.Context, userID string, upd UserUpdate) (*model.User, error) {
	user, err := uc.users.FindByID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if upd.FirstName != nil {
		user.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = *upd.LastName
	}
	if upd.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*upd.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, domain.ErrInvalidArgument
		}
		user.Email = email
	}
	if upd.PhoneNumber != nil {
		user.PhoneNumber = *upd.PhoneNumber
	}
	if upd.Role != nil {
		user.Role = *upd.Role
	}
	if upd.Status != nil {
		user.Status = *upd.Status
	}
	if err := uc.users.Save(ctx, nil, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (uc *userUC) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := uc.users.FindByID(ctx, nil, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return domain.ErrUnauthorized
	}
	if len(next) < 8 {
		return domain.ErrInvalidArgument
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return uc.users.Save(ctx, nil, user)
}

// Delete removes a user. Codes the user held go back to their pools and the
// batch counters are settled in the same transaction. A user still named as
// importer of existing batches cannot be deleted (the batches go first).
func (uc *userUC) Delete(ctx context.Context, userID string) error {
	defer logging.TraceDuration(uc.log, "DeleteUser")()

	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		imported, err := uc.batches.CountImportedBy(ctx, tx, userID)
		if err != nil {
			return err
		}
		if imported > 0 {
			return domain.ErrBatchesImported
		}

		released, err := uc.codes.UnassignByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		batchIDs := make([]string, 0, len(released))
		for id := range released {
			batchIDs = append(batchIDs, id)
		}
		sort.Strings(batchIDs)
		for _, batchID := range batchIDs {
			if err := uc.batches.Lock(ctx, tx, batchID); err != nil {
				return err
			}
			if err := uc.batches.AdjustAssigned(ctx, tx, batchID, -released[batchID]); err != nil {
				return err
			}
		}
		return uc.users.Delete(ctx, tx, userID)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("user_id", userID).Msg("user deleted")
	return nil
}
