package mailer

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*NoopMailer)(nil)

// NoopMailer logs instead of sending. Used in dev mode and when SMTP is
// disabled in config.
type NoopMailer struct {
	log *zerolog.Logger
}

func NewNoopMailer(log *zerolog.Logger) *NoopMailer {
	return &NoopMailer{log: log}
}

func (m *NoopMailer) SendAccessCodes(_ context.Context, user *model.User, codes []*model.AccessCode, batch *model.CodeBatch) error {
	m.log.Info().
		Str("to", user.Email).
		Str("batch_id", batch.ID).
		Int("codes", len(codes)).
		Msg("mail disabled, skipping access-code mail")
	return nil
}

func (m *NoopMailer) SendExpirationNotice(_ context.Context, user *model.User, membership *model.Membership) error {
	m.log.Info().
		Str("to", user.Email).
		Str("membership_id", membership.ID).
		Msg("mail disabled, skipping expiration notice")
	return nil
}
