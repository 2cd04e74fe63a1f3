package mailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/Shadow6402/ASTT-Esport/internal/config"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
	"github.com/Shadow6402/ASTT-Esport/internal/domain/ports/adapter"
)

var _ adapter.Mailer = (*SMTPMailer)(nil)

// SMTPMailer delivers member notifications over a plain SMTP relay.
type SMTPMailer struct {
	client *mail.Client
	from   string
	log    *zerolog.Logger
}

func NewSMTPMailer(cfg *config.SMTPConfig, log *zerolog.Logger) (*SMTPMailer, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPMailer{client: client, from: cfg.From, log: log}, nil
}

func (m *SMTPMailer) SendAccessCodes(ctx context.Context, user *model.User, codes []*model.AccessCode, batch *model.CodeBatch) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Bonjour %s,\n\n", user.FirstName)
	fmt.Fprintf(&b, "Voici vos codes d'accès pour %s :\n\n", batch.Name)
	for _, c := range codes {
		fmt.Fprintf(&b, "    %s\n", c.Code)
	}
	fmt.Fprintf(&b, "\nCes codes expirent le %s.\n\n", batch.ExpiryDate.Format("02/01/2006"))
	b.WriteString("Sportivement,\nL'équipe ASTT Esport\n")

	subject := fmt.Sprintf("Vos codes d'accès - %s", batch.Name)
	return m.send(ctx, user.Email, subject, b.String())
}

func (m *SMTPMailer) SendExpirationNotice(ctx context.Context, user *model.User, membership *model.Membership) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Bonjour %s,\n\n", user.FirstName)
	fmt.Fprintf(&b, "Votre adhésion (%s) arrive à échéance le %s.\n",
		membership.MembershipType, membership.EndDate.Format("02/01/2006"))
	b.WriteString("Pensez à la renouveler pour conserver votre accès aux entraînements.\n\n")
	b.WriteString("Sportivement,\nL'équipe ASTT Esport\n")

	return m.send(ctx, user.Email, "Votre adhésion expire bientôt", b.String())
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		m.log.Error().Err(err).Str("to", to).Str("subject", subject).Msg("send mail failed")
		return fmt.Errorf("send mail: %w", err)
	}
	m.log.Debug().Str("to", to).Str("subject", subject).Msg("mail sent")
	return nil
}
