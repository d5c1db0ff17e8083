package repository

import (
	"context"

	"github.com/Randipa/lmcfinal/internal/domain/model"
)

type ShopOrderRepository interface {
	Save(ctx context.Context, tx Tx, o *model.ShopOrder) error
	FindByOrderID(ctx context.Context, tx Tx, orderID string) (*model.ShopOrder, error)
	UpdateStatus(ctx context.Context, tx Tx, orderID string, status model.ShopOrderStatus, paymentID *string) error
}
