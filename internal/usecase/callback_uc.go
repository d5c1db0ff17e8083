// File: internal/usecase/callback_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/Randipa/lmcfinal/internal/domain"
	"github.com/Randipa/lmcfinal/internal/domain/model"
	"github.com/Randipa/lmcfinal/internal/domain/ports/adapter"
	"github.com/Randipa/lmcfinal/internal/domain/ports/repository"
	"github.com/Randipa/lmcfinal/internal/infra/metrics"
)

// NotifyPayload is the server-to-server notification as parsed off the wire.
// Amount and currency are kept as the raw strings the gateway signed over.
type NotifyPayload struct {
	MerchantID string
	OrderID    string
	PaymentID  string
	Amount     string
	Currency   string
	StatusCode string
	Signature  string
	UserID     string // custom_1
	CourseID   string // custom_2
}

// Compile-time check
var _ CallbackUseCase = (*callbackUC)(nil)

type CallbackUseCase interface {
	// HandleNotify processes a gateway notification. It never returns an error:
	// the transport always acknowledges so the gateway stops redelivering, and
	// every failure mode is absorbed into logs and metrics here.
	HandleNotify(ctx context.Context, p NotifyPayload)
	// ForceComplete marks an attempt completed and settles it, for operator
	// recovery of a payment the gateway confirmed out of band. Rejects attempts
	// that already completed.
	ForceComplete(ctx context.Context, orderID string) (*model.PaymentAttempt, error)
	// RecoverNotify replays a lost notification from operator-supplied fields.
	// All four identifiers are required.
	RecoverNotify(ctx context.Context, orderID, paymentID, userID, courseID string) error
}

type callbackUC struct {
	payments      repository.PaymentRepository
	shopOrders    repository.ShopOrderRepository
	entitlements  EntitlementUseCase
	inquiries     repository.InquiryRepository
	notifications NotificationUseCase
	gateway       adapter.HostedCheckoutGateway
	tm            repository.TransactionManager
	log           *zerolog.Logger
}

func NewCallbackUseCase(
	payments repository.PaymentRepository,
	shopOrders repository.ShopOrderRepository,
	entitlements EntitlementUseCase,
	inquiries repository.InquiryRepository,
	notifications NotificationUseCase,
	gateway adapter.HostedCheckoutGateway,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *callbackUC {
	return &callbackUC{
		payments:      payments,
		shopOrders:    shopOrders,
		entitlements:  entitlements,
		inquiries:     inquiries,
		notifications: notifications,
		gateway:       gateway,
		tm:            tm,
		log:           logger,
	}
}

func (u *callbackUC) HandleNotify(ctx context.Context, p NotifyPayload) {
	logger := u.log.With().
		Str("order_id", p.OrderID).
		Str("payment_id", p.PaymentID).
		Str("status_code", p.StatusCode).
		Logger()

	if p.OrderID == "" || p.Signature == "" {
		metrics.IncCallback("rejected", "malformed")
		logger.Warn().Msg("notification missing order id or signature")
		return
	}

	if !u.gateway.VerifySignature(p.MerchantID, p.OrderID, p.Amount, p.Currency, p.StatusCode, p.Signature) {
		metrics.IncCallback("rejected", "signature")
		metrics.IncSignatureFailure()
		// Audit trail for forged or corrupted notifications. No state changes.
		logger.Warn().
			Str("merchant_id", p.MerchantID).
			Str("amount", p.Amount).
			Msg("notification signature mismatch")
		return
	}

	if strings.HasPrefix(p.OrderID, model.ShopOrderPrefix) {
		u.handleShopNotify(ctx, p, logger)
		return
	}

	status := u.gateway.MapStatus(p.StatusCode)
	now := time.Now()
	var paymentID *string
	if p.PaymentID != "" {
		paymentID = &p.PaymentID
	}
	var completedAt *time.Time
	if status == model.PaymentStatusCompleted {
		completedAt = &now
	}
	meta := map[string]interface{}{
		"notify_received_at": now.Format(time.RFC3339),
		"notify_status_code": p.StatusCode,
	}

	var (
		moved   bool
		granted bool
		attempt *model.PaymentAttempt
	)
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		attempt, err = u.payments.FindByOrderID(ctx, tx, p.OrderID)
		if err != nil {
			return err
		}
		moved, err = u.payments.UpdateStatusIfNotTerminal(ctx, tx, p.OrderID, status, paymentID, completedAt, meta)
		if err != nil {
			return err
		}
		if !moved {
			// Redelivery after a terminal state: record the sighting, change
			// nothing else.
			return u.payments.MergeMeta(ctx, tx, p.OrderID, map[string]interface{}{
				"notify_redelivered_at": now.Format(time.RFC3339),
			})
		}
		if status == model.PaymentStatusCompleted {
			granted, err = u.entitlements.Grant(ctx, tx, attempt.UserID, attempt.CourseID, now, "callback")
			if err != nil {
				return err
			}
			if granted {
				return u.inquiries.MarkPaid(ctx, tx, attempt.UserID, attempt.CourseID)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncCallback("rejected", "unknown_order")
			logger.Warn().Msg("notification for unknown order")
			return
		}
		metrics.IncCallback("error", "storage")
		logger.Error().Err(err).Msg("notification processing failed")
		return
	}

	if !moved {
		metrics.IncCallback("duplicate", string(status))
		logger.Info().Msg("notification redelivered after terminal state")
		return
	}

	metrics.IncCallback("ok", string(status))
	metrics.IncPayment(string(status))
	if status == model.PaymentStatusCompleted {
		metrics.AddPaymentRevenue(attempt.Currency, attempt.Amount)
	}
	logger.Info().Str("status", string(status)).Msg("payment status updated")

	// Exactly one notification round per grant. Redelivered or re-verified
	// completions suppress the grant and therefore the messages too.
	if granted {
		amount := model.FormatAmount(attempt.Amount)
		u.notifications.NotifyBuyer(ctx, attempt.UserID,
			fmt.Sprintf("Your payment of %s %s was received. Course access is now active.", attempt.Currency, amount))
		u.notifications.NotifyAdmins(ctx,
			fmt.Sprintf("Payment completed: order %s, %s %s, course %s.", attempt.OrderID, attempt.Currency, amount, attempt.CourseID))
	}
}

func (u *callbackUC) handleShopNotify(ctx context.Context, p NotifyPayload, logger zerolog.Logger) {
	var status model.ShopOrderStatus
	switch u.gateway.MapStatus(p.StatusCode) {
	case model.PaymentStatusCompleted:
		status = model.ShopOrderStatusPaid
	case model.PaymentStatusCancelled:
		status = model.ShopOrderStatusCancelled
	case model.PaymentStatusFailed, model.PaymentStatusChargedBack:
		status = model.ShopOrderStatusFailed
	default:
		metrics.IncCallback("ok", "shop_pending")
		logger.Info().Msg("shop order notification left pending")
		return
	}

	var paymentID *string
	if p.PaymentID != "" {
		paymentID = &p.PaymentID
	}
	if err := u.shopOrders.UpdateStatus(ctx, nil, p.OrderID, status, paymentID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncCallback("rejected", "unknown_order")
			logger.Warn().Msg("notification for unknown shop order")
			return
		}
		metrics.IncCallback("error", "storage")
		logger.Error().Err(err).Msg("shop order notification failed")
		return
	}
	metrics.IncCallback("ok", "shop_"+string(status))
	logger.Info().Str("status", string(status)).Msg("shop order status updated")
}

func (u *callbackUC) ForceComplete(ctx context.Context, orderID string) (*model.PaymentAttempt, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidArgument
	}
	var attempt *model.PaymentAttempt
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		attempt, err = u.payments.FindByOrderID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if attempt.Status == model.PaymentStatusCompleted {
			return domain.ErrInvalidStateTransition
		}
		now := time.Now()
		if err := u.payments.UpdateStatus(ctx, tx, orderID, model.PaymentStatusCompleted, nil, &now, map[string]interface{}{
			"force_completed_at": now.Format(time.RFC3339),
		}); err != nil {
			return err
		}
		granted, err := u.entitlements.Grant(ctx, tx, attempt.UserID, attempt.CourseID, now, "admin_override")
		if err != nil {
			return err
		}
		if granted {
			return u.inquiries.MarkPaid(ctx, tx, attempt.UserID, attempt.CourseID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncPayment(string(model.PaymentStatusCompleted))
	u.log.Info().Str("order_id", orderID).Msg("payment force completed")
	return u.payments.FindByOrderID(ctx, nil, orderID)
}

func (u *callbackUC) RecoverNotify(ctx context.Context, orderID, paymentID, userID, courseID string) error {
	if orderID == "" || paymentID == "" || userID == "" || courseID == "" {
		return domain.ErrInvalidArgument
	}
	now := time.Now()
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		attempt, err := u.payments.FindByOrderID(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if attempt.UserID != userID || attempt.CourseID != courseID {
			return domain.ErrInvalidArgument
		}
		moved, err := u.payments.UpdateStatusIfNotTerminal(ctx, tx, orderID, model.PaymentStatusCompleted, &paymentID, &now, map[string]interface{}{
			"recovered_at": now.Format(time.RFC3339),
		})
		if err != nil {
			return err
		}
		if !moved && attempt.Status != model.PaymentStatusCompleted {
			return domain.ErrInvalidStateTransition
		}
		granted, err := u.entitlements.Grant(ctx, tx, userID, courseID, now, "admin_recover")
		if err != nil {
			return err
		}
		if granted {
			return u.inquiries.MarkPaid(ctx, tx, userID, courseID)
		}
		return nil
	})
	if err != nil {
		return err
	}
	u.log.Info().Str("order_id", orderID).Str("payment_id", paymentID).Msg("notification recovered")
	return nil
}
