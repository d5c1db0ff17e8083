// File: internal/usecase/shop_order_uc.go
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Randipa/lmcfinal/internal/domain"
	"github.com/Randipa/lmcfinal/internal/domain/model"
	"github.com/Randipa/lmcfinal/internal/domain/ports/adapter"
	"github.com/Randipa/lmcfinal/internal/domain/ports/repository"
	"github.com/Randipa/lmcfinal/internal/infra/metrics"
)

// Compile-time check
var _ ShopOrderUseCase = (*shopOrderUC)(nil)

type ShopOrderUseCase interface {
	// BuildSession persists a pending shop order and returns the signed
	// checkout payload. Shop orders share the gateway plumbing with course
	// enrollments but never touch the entitlement ledger.
	BuildSession(ctx context.Context, userID string, items []model.ShopOrderItem) (*adapter.SessionPayload, error)
	Get(ctx context.Context, orderID, requesterID string, requesterIsAdmin bool) (*model.ShopOrder, error)
}

type shopOrderUC struct {
	orders  repository.ShopOrderRepository
	users   repository.UserRepository
	gateway adapter.HostedCheckoutGateway
	baseURL string
	log     *zerolog.Logger
}

func NewShopOrderUseCase(
	orders repository.ShopOrderRepository,
	users repository.UserRepository,
	gateway adapter.HostedCheckoutGateway,
	baseURL string,
	logger *zerolog.Logger,
) *shopOrderUC {
	return &shopOrderUC{
		orders:  orders,
		users:   users,
		gateway: gateway,
		baseURL: baseURL,
		log:     logger,
	}
}

func (u *shopOrderUC) BuildSession(ctx context.Context, userID string, items []model.ShopOrderItem) (*adapter.SessionPayload, error) {
	if userID == "" || len(items) == 0 {
		metrics.IncSessionBuilt("error")
		return nil, domain.ErrInvalidArgument
	}
	var total int64
	labels := make([]string, 0, len(items))
	for _, it := range items {
		if it.Qty <= 0 || it.PriceCents <= 0 {
			metrics.IncSessionBuilt("error")
			return nil, domain.ErrInvalidArgument
		}
		total += int64(it.Qty) * it.PriceCents
		labels = append(labels, fmt.Sprintf("%s x%d", it.ProductID, it.Qty))
	}

	buyer, err := u.users.FindByID(ctx, nil, userID)
	if err != nil {
		metrics.IncSessionBuilt("error")
		return nil, err
	}

	now := time.Now()
	orderID := model.NewShopOrderID()
	payload := u.gateway.BuildSession(adapter.CheckoutRequest{
		BaseURL:     u.baseURL,
		OrderID:     orderID,
		Items:       strings.Join(labels, ", "),
		AmountCents: total,
		Buyer:       buyer,
		UserID:      userID,
	})

	order := &model.ShopOrder{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		UserID:     userID,
		Items:      items,
		TotalCents: total,
		Status:     model.ShopOrderStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := u.orders.Save(ctx, nil, order); err != nil {
		metrics.IncSessionBuilt("error")
		return nil, err
	}

	metrics.IncSessionBuilt("ok")
	u.log.Info().
		Str("order_id", orderID).
		Str("user_id", userID).
		Int64("total_cents", total).
		Msg("shop checkout session built")
	return &payload, nil
}

func (u *shopOrderUC) Get(ctx context.Context, orderID, requesterID string, requesterIsAdmin bool) (*model.ShopOrder, error) {
	order, err := u.orders.FindByOrderID(ctx, nil, orderID)
	if err != nil {
		return nil, err
	}
	if !requesterIsAdmin && order.UserID != requesterID {
		return nil, domain.ErrUnauthorized
	}
	return order, nil
}
