package model

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

type PaymentStatus string

const (
	PaymentStatusPending     PaymentStatus = "pending"      // attempt created; buyer redirected to gateway
	PaymentStatusCompleted   PaymentStatus = "completed"    // gateway confirmed the charge
	PaymentStatusFailed      PaymentStatus = "failed"       // gateway reported failure
	PaymentStatusCancelled   PaymentStatus = "cancelled"    // buyer abandoned at the gateway
	PaymentStatusChargedBack PaymentStatus = "charged_back" // gateway reversed the charge
	PaymentStatusUnknown     PaymentStatus = "unknown"      // unrecognized gateway status code
)

// IsTerminal reports whether a status may never regress to another one.
// `pending` and `unknown` are the only states a later notification may rewrite.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled, PaymentStatusChargedBack:
		return true
	}
	return false
}

// PaymentAttempt records one purchase attempt against the hosted checkout.
// Created by the session builder, mutated only by the callback verifier or an
// admin override, never deleted.
type PaymentAttempt struct {
	ID          string // UUID
	OrderID     string // caller-generated, time-derived, globally unique ("ORD" + ULID)
	UserID      string // UUID
	CourseID    string // UUID
	Amount      int64  // cents (two implied decimals)
	Currency    string // e.g. "LKR"
	PhoneNumber string
	Status      PaymentStatus
	PaymentID   *string // gateway-assigned id, nil until confirmed
	Hash        string  // checkout hash recorded at session build time
	Meta        map[string]interface{}
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}

const (
	// OrderPrefix marks course enrollment attempts.
	OrderPrefix = "ORD"
	// ShopOrderPrefix routes gateway notifications to the shop order record
	// instead of a course attempt.
	ShopOrderPrefix = "SHOP"
)

// NewOrderID returns a fresh course order identifier. ULIDs are time-ordered,
// which keeps admin listings chronological without an extra sort key.
func NewOrderID() string {
	return OrderPrefix + ulid.Make().String()
}

// NewShopOrderID returns a shop order identifier.
func NewShopOrderID() string {
	return ShopOrderPrefix + ulid.Make().String()
}

// FormatAmount renders cents as the gateway's two-decimal string (e.g. 1250 -> "12.50").
func FormatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
