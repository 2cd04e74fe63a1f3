package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/adapter"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/repository"
	"github.com/Shadow6402/ASTT-Esport/internal/infra/metrics"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

type NotificationUseCase interface {
	// DeliverAccessCodes mails freshly assigned codes to their new owner and
	// flags them as delivered. Mail failure leaves the assignment intact;
	// the admin can resend from the batch view.
	DeliverAccessCodes(ctx context.Context, userID, batchID string, codes []*model.AccessCode) error
	// NotifyExpiring mails a renewal reminder for every membership lapsing
	// inside the window that has not been reminded yet. Returns how many
	// reminders went out.
	NotifyExpiring(ctx context.Context, window time.Duration) (int, error)
}

type notificationUC struct {
	users       repository.UserRepository
	batches     repository.CodeBatchRepository
	codes       repository.AccessCodeRepository
	memberships repository.MembershipRepository
	mailer      adapter.Mailer
	log         *zerolog.Logger
}

func NewNotificationUseCase(
	users repository.UserRepository,
	batches repository.CodeBatchRepository,
	codes repository.AccessCodeRepository,
	memberships repository.MembershipRepository,
	mailer adapter.Mailer,
	logger *zerolog.Logger,
) *notificationUC {
	return &notificationUC{
		users:       users,
		batches:     batches,
		codes:       codes,
		memberships: memberships,
		mailer:      mailer,
		log:         logger,
	}
}

func (uc *notificationUC) DeliverAccessCodes(ctx context.Context, userID, batchID string, codes []*model.AccessCode) error {
	if len(codes) == 0 {
		return nil
	}
	user, err := uc.users.FindByID(ctx, nil, userID)
	if err != nil {
		return err
	}
	batch, err := uc.batches.FindByID(ctx, nil, batchID)
	if err != nil {
		return err
	}

	if err := uc.mailer.SendAccessCodes(ctx, user, codes, batch); err != nil {
		return err
	}

	ids := make([]string, len(codes))
	for i, c := range codes {
		ids[i] = c.ID
	}
	if err := uc.codes.MarkEmailSent(ctx, nil, ids, time.Now()); err != nil {
		uc.log.Warn().Err(err).Str("batch_id", batchID).Msg("mark email sent failed")
	}
	return nil
}

func (uc *notificationUC) NotifyExpiring(ctx context.Context, window time.Duration) (int, error) {
	expiring, err := uc.memberships.ListExpiring(ctx, nil, time.Now(), window)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, m := range expiring {
		if m.RenewalReminded {
			continue
		}
		user, err := uc.users.FindByID(ctx, nil, m.UserID)
		if err != nil {
			uc.log.Warn().Err(err).Str("membership_id", m.ID).Msg("reminder skipped, user lookup failed")
			continue
		}
		if err := uc.mailer.SendExpirationNotice(ctx, user, m); err != nil {
			uc.log.Warn().Err(err).Str("membership_id", m.ID).Msg("reminder mail failed")
			continue
		}

		now := time.Now()
		m.RenewalReminded = true
		m.RenewalRemindedAt = &now
		m.UpdatedAt = now
		if err := uc.memberships.Save(ctx, nil, m); err != nil {
			uc.log.Warn().Err(err).Str("membership_id", m.ID).Msg("reminder flag save failed")
			continue
		}
		sent++
	}

	metrics.IncMembershipReminders(sent)
	return sent, nil
}
