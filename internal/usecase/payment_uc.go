// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/Randipa/lmcfinal/internal/domain"
	"github.com/Randipa/lmcfinal/internal/domain/model"
	"github.com/Randipa/lmcfinal/internal/domain/ports/adapter"
	"github.com/Randipa/lmcfinal/internal/domain/ports/repository"
	"github.com/Randipa/lmcfinal/internal/infra/metrics"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

type PaymentUseCase interface {
	// BuildSession constructs a signed hosted-checkout payload and persists a
	// pending attempt. Local and synchronous; the redirect happens client-side.
	// The amount always comes from the catalog, never from the client.
	BuildSession(ctx context.Context, userID, courseID, phone string) (*adapter.SessionPayload, error)
	// HandleReturn stamps the browser-side return; it is not payment evidence
	// and never grants anything.
	HandleReturn(ctx context.Context, orderID string) error
	// HandleCancel transitions the attempt to cancelled.
	HandleCancel(ctx context.Context, orderID string) error
	// VerifyByOrderOrPaymentID answers "is order X done?" for the buyer or an
	// admin, and settles a completed attempt whose callback has not landed yet.
	VerifyByOrderOrPaymentID(ctx context.Context, orderID, paymentID, requesterID string, requesterIsAdmin bool) (*model.PaymentAttempt, error)
	History(ctx context.Context, userID string) ([]*model.PaymentAttempt, error)
	ListAll(ctx context.Context, offset, limit int) ([]*model.PaymentAttempt, error)
}

type paymentUC struct {
	payments     repository.PaymentRepository
	users        repository.UserRepository
	courses      repository.CourseRepository
	inquiries    repository.InquiryRepository
	entitlements EntitlementUseCase
	gateway      adapter.HostedCheckoutGateway
	tm           repository.TransactionManager
	baseURL      string
	inquiryGated bool
	log          *zerolog.Logger
}

func NewPaymentUseCase(
	payments repository.PaymentRepository,
	users repository.UserRepository,
	courses repository.CourseRepository,
	inquiries repository.InquiryRepository,
	entitlements EntitlementUseCase,
	gateway adapter.HostedCheckoutGateway,
	tm repository.TransactionManager,
	baseURL string,
	inquiryGated bool,
	logger *zerolog.Logger,
) *paymentUC {
	return &paymentUC{
		payments:     payments,
		users:        users,
		courses:      courses,
		inquiries:    inquiries,
		entitlements: entitlements,
		gateway:      gateway,
		tm:           tm,
		baseURL:      baseURL,
		inquiryGated: inquiryGated,
		log:          logger,
	}
}

func (u *paymentUC) BuildSession(ctx context.Context, userID, courseID, phone string) (*adapter.SessionPayload, error) {
	if userID == "" || courseID == "" || phone == "" {
		metrics.IncSessionBuilt("error")
		return nil, domain.ErrInvalidArgument
	}
	normalized, err := model.NormalizePhoneNumber(phone)
	if err != nil {
		metrics.IncSessionBuilt("error")
		return nil, err
	}

	buyer, err := u.users.FindByID(ctx, nil, userID)
	if err != nil {
		metrics.IncSessionBuilt("error")
		return nil, err
	}

	// Entitlement check comes first: no side effect on rejection.
	enrolled, err := u.entitlements.HasLiveGrant(ctx, userID, courseID)
	if err != nil {
		metrics.IncSessionBuilt("error")
		return nil, err
	}
	if enrolled {
		metrics.IncSessionBuilt("already_enrolled")
		return nil, domain.ErrAlreadyEnrolled
	}

	if u.inquiryGated {
		if _, err := u.inquiries.FindApproved(ctx, nil, userID, courseID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				metrics.IncSessionBuilt("not_approved")
				return nil, domain.ErrInquiryNotApproved
			}
			metrics.IncSessionBuilt("error")
			return nil, err
		}
	}

	course, err := u.courses.FindByID(ctx, nil, courseID)
	if err != nil {
		metrics.IncSessionBuilt("error")
		return nil, err
	}
	amountCents := course.PriceCents
	if amountCents <= 0 {
		metrics.IncSessionBuilt("error")
		return nil, domain.ErrInvalidArgument
	}

	now := time.Now()
	orderID := model.NewOrderID()
	payload := u.gateway.BuildSession(adapter.CheckoutRequest{
		BaseURL:     u.baseURL,
		OrderID:     orderID,
		Items:       fmt.Sprintf("Course Enrollment - %s", course.Title),
		AmountCents: amountCents,
		Buyer:       buyer,
		UserID:      userID,
		CourseID:    courseID,
	})

	attempt := &model.PaymentAttempt{
		ID:          uuid.NewString(),
		OrderID:     orderID,
		UserID:      userID,
		CourseID:    courseID,
		Amount:      amountCents,
		Currency:    u.gateway.Currency(),
		PhoneNumber: normalized,
		Status:      model.PaymentStatusPending,
		Hash:        payload.Hash,
		Meta:        map[string]interface{}{"initiated_at": now.Format(time.RFC3339)},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := u.payments.Save(ctx, nil, attempt); err != nil {
		metrics.IncSessionBuilt("error")
		return nil, err
	}

	metrics.IncSessionBuilt("ok")
	u.log.Info().
		Str("order_id", orderID).
		Str("user_id", userID).
		Str("course_id", courseID).
		Int64("amount_cents", amountCents).
		Msg("checkout session built")
	return &payload, nil
}

func (u *paymentUC) HandleReturn(ctx context.Context, orderID string) error {
	if orderID == "" {
		return domain.ErrInvalidArgument
	}
	return u.payments.MergeMeta(ctx, nil, orderID, map[string]interface{}{
		"return_received_at": time.Now().Format(time.RFC3339),
	})
}

func (u *paymentUC) HandleCancel(ctx context.Context, orderID string) error {
	if orderID == "" {
		return domain.ErrInvalidArgument
	}
	moved, err := u.payments.UpdateStatusIfNotTerminal(ctx, nil, orderID, model.PaymentStatusCancelled, nil, nil, map[string]interface{}{
		"cancelled_at": time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	if moved {
		metrics.IncPayment(string(model.PaymentStatusCancelled))
	}
	return nil
}

func (u *paymentUC) VerifyByOrderOrPaymentID(ctx context.Context, orderID, paymentID, requesterID string, requesterIsAdmin bool) (*model.PaymentAttempt, error) {
	var (
		attempt *model.PaymentAttempt
		err     error
	)
	switch {
	case orderID != "":
		attempt, err = u.payments.FindByOrderID(ctx, nil, orderID)
	case paymentID != "":
		attempt, err = u.payments.FindByPaymentID(ctx, nil, paymentID)
	default:
		return nil, domain.ErrInvalidArgument
	}
	if err != nil {
		return nil, err
	}

	if !requesterIsAdmin && attempt.UserID != requesterID {
		return nil, domain.ErrUnauthorized
	}

	// The callback may not have arrived yet even though the gateway already
	// settled. Perform the same side effects it would, under the same
	// idempotency guard. The grant is anchored at verification time, not at
	// CompletedAt: a late verify must still yield a live entitlement.
	if attempt.Status == model.PaymentStatusCompleted {
		err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			granted, err := u.entitlements.Grant(ctx, tx, attempt.UserID, attempt.CourseID, time.Now(), "client_verify")
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
	}

	return attempt, nil
}

func (u *paymentUC) History(ctx context.Context, userID string) ([]*model.PaymentAttempt, error) {
	return u.payments.ListByUser(ctx, nil, userID)
}

func (u *paymentUC) ListAll(ctx context.Context, offset, limit int) ([]*model.PaymentAttempt, error) {
	return u.payments.ListAll(ctx, nil, offset, limit)
}
