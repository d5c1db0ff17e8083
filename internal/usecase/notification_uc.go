// File: internal/usecase/notification_uc.go
package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Randipa/lmcfinal/internal/domain/ports/adapter"
	"github.com/Randipa/lmcfinal/internal/domain/ports/repository"
	"github.com/Randipa/lmcfinal/internal/infra/logging"
	"github.com/Randipa/lmcfinal/internal/infra/metrics"
)

// Compile-time check
var _ NotificationUseCase = (*notificationUC)(nil)

// NotificationUseCase fans payment events out over WhatsApp. Dispatch is
// fire-and-forget: every failure is logged and swallowed, never propagated
// into payment state.
type NotificationUseCase interface {
	NotifyBuyer(ctx context.Context, userID, text string)
	NotifyAdmins(ctx context.Context, text string)
}

type notificationUC struct {
	users    repository.UserRepository
	notifier adapter.Notifier
	log      *zerolog.Logger
}

func NewNotificationUseCase(users repository.UserRepository, notifier adapter.Notifier, logger *zerolog.Logger) *notificationUC {
	return &notificationUC{users: users, notifier: notifier, log: logger}
}

func (n *notificationUC) NotifyBuyer(ctx context.Context, userID, text string) {
	user, err := n.users.FindByID(ctx, nil, userID)
	if err != nil {
		metrics.IncNotifyDispatch("buyer", "error")
		n.log.Warn().Err(err).Str("user_id", userID).Msg("notify buyer: lookup failed")
		return
	}
	if err := n.notifier.Send(ctx, user.PhoneNumber, text); err != nil {
		metrics.IncNotifyDispatch("buyer", "error")
		n.log.Warn().Err(err).
			Str("user_id", userID).
			Str("phone", logging.Redact(user.PhoneNumber)).
			Msg("notify buyer: send failed")
		return
	}
	metrics.IncNotifyDispatch("buyer", "sent")
}

func (n *notificationUC) NotifyAdmins(ctx context.Context, text string) {
	admins, err := n.users.ListAdmins(ctx, nil)
	if err != nil {
		metrics.IncNotifyDispatch("admin", "error")
		n.log.Warn().Err(err).Msg("notify admins: lookup failed")
		return
	}
	for _, admin := range admins {
		if admin.PhoneNumber == "" {
			continue
		}
		if err := n.notifier.Send(ctx, admin.PhoneNumber, text); err != nil {
			metrics.IncNotifyDispatch("admin", "error")
			n.log.Warn().Err(err).Str("user_id", admin.ID).Msg("notify admins: send failed")
			continue
		}
		metrics.IncNotifyDispatch("admin", "sent")
	}
}
