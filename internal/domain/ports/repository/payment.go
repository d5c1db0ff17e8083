package repository

import (
	"context"
	"time"

	"github.com/Randipa/lmcfinal/internal/domain/model"
)

type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.PaymentAttempt) error
	FindByOrderID(ctx context.Context, tx Tx, orderID string) (*model.PaymentAttempt, error)
	FindByPaymentID(ctx context.Context, tx Tx, paymentID string) (*model.PaymentAttempt, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.PaymentAttempt, error)
	ListAll(ctx context.Context, tx Tx, offset, limit int) ([]*model.PaymentAttempt, error)
	// UpdateStatus stamps the new status plus the gateway payment id and
	// completion time when provided. Meta keys are merged, not replaced.
	UpdateStatus(ctx context.Context, tx Tx, orderID string, status model.PaymentStatus, paymentID *string, completedAt *time.Time, meta map[string]interface{}) error
	// UpdateStatusIfNotTerminal applies UpdateStatus only while the stored
	// status is still pending or unknown; returns false when the row was
	// already terminal. Keeps forward-only status semantics race-free.
	UpdateStatusIfNotTerminal(ctx context.Context, tx Tx, orderID string, status model.PaymentStatus, paymentID *string, completedAt *time.Time, meta map[string]interface{}) (bool, error)
	// MergeMeta records a lifecycle timestamp (return_received_at etc.)
	// without touching the status.
	MergeMeta(ctx context.Context, tx Tx, orderID string, meta map[string]interface{}) error
}
