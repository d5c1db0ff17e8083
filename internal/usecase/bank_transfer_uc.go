// File: internal/usecase/bank_transfer_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"github.com/Randipa/lmcfinal/internal/domain"
	"github.com/Randipa/lmcfinal/internal/domain/model"
	"github.com/Randipa/lmcfinal/internal/domain/ports/repository"
)

// Compile-time check
var _ BankTransferUseCase = (*bankTransferUC)(nil)

type BankTransferUseCase interface {
	// Submit records a manual transfer slip for admin review.
	Submit(ctx context.Context, userID, courseID, slipURL string) (*model.BankTransferRequest, error)
	// Approve grants the entitlement through the same ledger write as a
	// gateway callback. Approving twice is an invalid transition.
	Approve(ctx context.Context, requestID string) (*model.BankTransferRequest, error)
	ListMine(ctx context.Context, userID string) ([]*model.BankTransferRequest, error)
	ListPending(ctx context.Context) ([]*model.BankTransferRequest, error)
}

type bankTransferUC struct {
	transfers     repository.BankTransferRepository
	entitlements  EntitlementUseCase
	inquiries     repository.InquiryRepository
	notifications NotificationUseCase
	tm            repository.TransactionManager
	log           *zerolog.Logger
}

func NewBankTransferUseCase(
	transfers repository.BankTransferRepository,
	entitlements EntitlementUseCase,
	inquiries repository.InquiryRepository,
	notifications NotificationUseCase,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *bankTransferUC {
	return &bankTransferUC{
		transfers:     transfers,
		entitlements:  entitlements,
		inquiries:     inquiries,
		notifications: notifications,
		tm:            tm,
		log:           logger,
	}
}

func (u *bankTransferUC) Submit(ctx context.Context, userID, courseID, slipURL string) (*model.BankTransferRequest, error) {
	if userID == "" || courseID == "" || slipURL == "" {
		return nil, domain.ErrInvalidArgument
	}
	enrolled, err := u.entitlements.HasLiveGrant(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, domain.ErrAlreadyEnrolled
	}

	req := &model.BankTransferRequest{
		ID:        uuid.NewString(),
		UserID:    userID,
		CourseID:  courseID,
		SlipURL:   slipURL,
		Status:    model.BankTransferStatusPending,
		CreatedAt: time.Now(),
	}
	if err := u.transfers.Save(ctx, nil, req); err != nil {
		return nil, err
	}

	u.log.Info().
		Str("request_id", req.ID).
		Str("user_id", userID).
		Str("course_id", courseID).
		Msg("bank transfer submitted")
	u.notifications.NotifyAdmins(ctx,
		fmt.Sprintf("Bank transfer slip submitted for course %s. Please review.", courseID))
	return req, nil
}

func (u *bankTransferUC) Approve(ctx context.Context, requestID string) (*model.BankTransferRequest, error) {
	if requestID == "" {
		return nil, domain.ErrInvalidArgument
	}
	var req *model.BankTransferRequest
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		req, err = u.transfers.FindByID(ctx, tx, requestID)
		if err != nil {
			return err
		}
		moved, err := u.transfers.UpdateStatusIfPending(ctx, tx, requestID, model.BankTransferStatusApproved)
		if err != nil {
			return err
		}
		if !moved {
			return domain.ErrInvalidStateTransition
		}
		req.Status = model.BankTransferStatusApproved
		granted, err := u.entitlements.Grant(ctx, tx, req.UserID, req.CourseID, time.Now(), "bank_transfer")
		if err != nil {
			return err
		}
		if granted {
			return u.inquiries.MarkPaid(ctx, tx, req.UserID, req.CourseID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info().Str("request_id", req.ID).Msg("bank transfer approved")
	u.notifications.NotifyBuyer(ctx, req.UserID,
		"Your bank transfer was verified. Course access is now active.")
	return req, nil
}

func (u *bankTransferUC) ListMine(ctx context.Context, userID string) ([]*model.BankTransferRequest, error) {
	return u.transfers.ListByUser(ctx, nil, userID)
}

func (u *bankTransferUC) ListPending(ctx context.Context) ([]*model.BankTransferRequest, error) {
	return u.transfers.ListByStatus(ctx, nil, model.BankTransferStatusPending)
}
