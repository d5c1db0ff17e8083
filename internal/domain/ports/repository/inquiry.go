package repository

import (
	"context"

	"github.com/Randipa/lmcfinal/internal/domain/model"
)

type InquiryRepository interface {
	Save(ctx context.Context, tx Tx, i *model.Inquiry) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Inquiry, error)
	// FindOpen returns a pending or approved inquiry for the buyer identity
	// (registered user id, or normalized phone for anonymous submissions).
	FindOpenByUser(ctx context.Context, tx Tx, userID, courseID string) (*model.Inquiry, error)
	FindOpenByPhone(ctx context.Context, tx Tx, phone, courseID string) (*model.Inquiry, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Inquiry, error)
	ListByStatus(ctx context.Context, tx Tx, status model.InquiryStatus) ([]*model.Inquiry, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, status model.InquiryStatus) error
	SetUser(ctx context.Context, tx Tx, id, userID string) error
	// MarkPaid transitions the approved inquiry for (user, course) to paid, if
	// one exists. A no-op otherwise.
	MarkPaid(ctx context.Context, tx Tx, userID, courseID string) error
	// FindApproved returns the approved inquiry for (user, course), used by the
	// inquiry-gated session builder.
	FindApproved(ctx context.Context, tx Tx, userID, courseID string) (*model.Inquiry, error)
}
