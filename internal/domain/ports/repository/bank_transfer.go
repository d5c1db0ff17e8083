package repository

import (
	"context"

	"github.com/Randipa/lmcfinal/internal/domain/model"
)

type BankTransferRepository interface {
	Save(ctx context.Context, tx Tx, r *model.BankTransferRequest) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.BankTransferRequest, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.BankTransferRequest, error)
	ListByStatus(ctx context.Context, tx Tx, status model.BankTransferStatus) ([]*model.BankTransferRequest, error)
	// UpdateStatusIfPending flips pending -> approved atomically; returns
	// false when the request was no longer pending.
	UpdateStatusIfPending(ctx context.Context, tx Tx, id string, status model.BankTransferStatus) (bool, error)
}
