// File: internal/usecase/inquiry_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Randipa/lmcfinal/internal/domain"
	"github.com/Randipa/lmcfinal/internal/domain/model"
	"github.com/Randipa/lmcfinal/internal/domain/ports/repository"
)

// CreateInquiryInput carries a buyer's request to enroll. UserID is empty for
// anonymous visitors; they are identified by phone until approval.
type CreateInquiryInput struct {
	UserID    string
	FirstName string
	LastName  string
	Phone     string
	CourseID  string
	Message   string
}

// Compile-time check
var _ InquiryUseCase = (*inquiryUC)(nil)

type InquiryUseCase interface {
	Create(ctx context.Context, in CreateInquiryInput) (*model.Inquiry, error)
	// Approve moves a pending inquiry to approved and, for anonymous
	// submissions, creates the buyer's account keyed by phone number.
	Approve(ctx context.Context, inquiryID string) (*model.Inquiry, error)
	Reject(ctx context.Context, inquiryID string) (*model.Inquiry, error)
	ListMine(ctx context.Context, userID string) ([]*model.Inquiry, error)
	ListByStatus(ctx context.Context, status model.InquiryStatus) ([]*model.Inquiry, error)
}

type inquiryUC struct {
	inquiries     repository.InquiryRepository
	users         repository.UserRepository
	courses       repository.CourseRepository
	notifications NotificationUseCase
	tm            repository.TransactionManager
	log           *zerolog.Logger
}

func NewInquiryUseCase(
	inquiries repository.InquiryRepository,
	users repository.UserRepository,
	courses repository.CourseRepository,
	notifications NotificationUseCase,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *inquiryUC {
	return &inquiryUC{
		inquiries:     inquiries,
		users:         users,
		courses:       courses,
		notifications: notifications,
		tm:            tm,
		log:           logger,
	}
}

func (u *inquiryUC) Create(ctx context.Context, in CreateInquiryInput) (*model.Inquiry, error) {
	if in.CourseID == "" || in.Phone == "" || in.FirstName == "" {
		return nil, domain.ErrInvalidArgument
	}
	phone, err := model.NormalizePhoneNumber(in.Phone)
	if err != nil {
		return nil, err
	}

	course, err := u.courses.FindByID(ctx, nil, in.CourseID)
	if err != nil {
		return nil, err
	}

	// One open inquiry per (buyer, course). Registered buyers dedupe by user
	// id, anonymous ones by normalized phone.
	if in.UserID != "" {
		if _, err := u.inquiries.FindOpenByUser(ctx, nil, in.UserID, in.CourseID); err == nil {
			return nil, domain.ErrDuplicateInquiry
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	} else {
		if _, err := u.inquiries.FindOpenByPhone(ctx, nil, phone, in.CourseID); err == nil {
			return nil, domain.ErrDuplicateInquiry
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
	}

	inq := &model.Inquiry{
		ID:          uuid.NewString(),
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		PhoneNumber: phone,
		CourseID:    in.CourseID,
		Message:     in.Message,
		Status:      model.InquiryStatusPending,
		CreatedAt:   time.Now(),
	}
	if in.UserID != "" {
		inq.UserID = &in.UserID
	}
	if err := u.inquiries.Save(ctx, nil, inq); err != nil {
		return nil, err
	}

	u.log.Info().
		Str("inquiry_id", inq.ID).
		Str("course_id", inq.CourseID).
		Msg("inquiry created")
	u.notifications.NotifyAdmins(ctx,
		fmt.Sprintf("New enrollment inquiry from %s %s for %s.", inq.FirstName, inq.LastName, course.Title))
	return inq, nil
}

func (u *inquiryUC) Approve(ctx context.Context, inquiryID string) (*model.Inquiry, error) {
	if inquiryID == "" {
		return nil, domain.ErrInvalidArgument
	}
	var inq *model.Inquiry
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		inq, err = u.inquiries.FindByID(ctx, tx, inquiryID)
		if err != nil {
			return err
		}
		if !inq.CanTransitionTo(model.InquiryStatusApproved) {
			return domain.ErrInvalidStateTransition
		}

		if inq.UserID == nil {
			buyer, err := u.users.FindByPhone(ctx, tx, inq.PhoneNumber)
			if errors.Is(err, domain.ErrNotFound) {
				buyer, err = u.createAccount(ctx, tx, inq)
			}
			if err != nil {
				return err
			}
			if err := u.inquiries.SetUser(ctx, tx, inq.ID, buyer.ID); err != nil {
				return err
			}
			inq.UserID = &buyer.ID
		}

		if err := u.inquiries.UpdateStatus(ctx, tx, inq.ID, model.InquiryStatusApproved); err != nil {
			return err
		}
		inq.Status = model.InquiryStatusApproved
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info().Str("inquiry_id", inq.ID).Msg("inquiry approved")
	u.notifications.NotifyBuyer(ctx, *inq.UserID,
		"Your enrollment inquiry was approved. You can now proceed with the payment.")
	return inq, nil
}

// createAccount materializes an account for an anonymous inquirer. The
// password is an unguessable placeholder; the buyer sets a real one through
// the OTP registration flow.
func (u *inquiryUC) createAccount(ctx context.Context, tx repository.Tx, inq *model.Inquiry) (*model.User, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(hex.EncodeToString(raw)), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
	}
	now := time.Now()
	buyer := &model.User{
		ID:           uuid.NewString(),
		FirstName:    inq.FirstName,
		LastName:     inq.LastName,
		PhoneNumber:  inq.PhoneNumber,
		PasswordHash: string(hash),
		Role:         model.UserRoleStudent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.users.Save(ctx, tx, buyer); err != nil {
		return nil, err
	}
	u.log.Info().Str("user_id", buyer.ID).Msg("account created from inquiry approval")
	return buyer, nil
}

func (u *inquiryUC) Reject(ctx context.Context, inquiryID string) (*model.Inquiry, error) {
	if inquiryID == "" {
		return nil, domain.ErrInvalidArgument
	}
	inq, err := u.inquiries.FindByID(ctx, nil, inquiryID)
	if err != nil {
		return nil, err
	}
	if !inq.CanTransitionTo(model.InquiryStatusRejected) {
		return nil, domain.ErrInvalidStateTransition
	}
	if err := u.inquiries.UpdateStatus(ctx, nil, inq.ID, model.InquiryStatusRejected); err != nil {
		return nil, err
	}
	inq.Status = model.InquiryStatusRejected
	u.log.Info().Str("inquiry_id", inq.ID).Msg("inquiry rejected")
	return inq, nil
}

func (u *inquiryUC) ListMine(ctx context.Context, userID string) ([]*model.Inquiry, error) {
	return u.inquiries.ListByUser(ctx, nil, userID)
}

func (u *inquiryUC) ListByStatus(ctx context.Context, status model.InquiryStatus) ([]*model.Inquiry, error) {
	return u.inquiries.ListByStatus(ctx, nil, status)
}
