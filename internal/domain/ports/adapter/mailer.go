package adapter

import (
	"context"

	"github.com/Shadow6402/ASTT-Esport/internal/domain/model"
)

// Mailer is the notification collaborator. It is invoked by route logic and
// the scheduler, never by the code-lifecycle engine itself.
type Mailer interface {
	SendAccessCodes(ctx context.Context, user *model.User, codes []*model.AccessCode, batch *model.CodeBatch) error
	SendExpirationNotice(ctx context.Context, user *model.User, membership *model.Membership) error
}
