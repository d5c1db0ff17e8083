package model

import "time"

type ShopOrderStatus string

const (
	ShopOrderStatusPending   ShopOrderStatus = "pending"
	ShopOrderStatusPaid      ShopOrderStatus = "paid"
	ShopOrderStatusCancelled ShopOrderStatus = "cancelled"
	ShopOrderStatusFailed    ShopOrderStatus = "failed"
)

type ShopOrderItem struct {
	ProductID  string
	Qty        int
	PriceCents int64
}

// ShopOrder reuses the payment-session mechanics for physical products. It has
// no entitlement ledger: a successful callback only flips its status to paid.
type ShopOrder struct {
	ID         string // UUID
	OrderID    string // "SHOP" + ULID
	UserID     string
	Items      []ShopOrderItem
	TotalCents int64
	Status     ShopOrderStatus
	PaymentID  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
