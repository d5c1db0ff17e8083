package adapter

import "github.com/Randipa/lmcfinal/internal/domain/model"

// CheckoutRequest carries everything the hosted checkout form needs signed.
type CheckoutRequest struct {
	BaseURL     string // public origin for return/cancel/notify URLs
	OrderID     string
	Items       string // line-item description shown at the gateway
	AmountCents int64
	Buyer       *model.User
	UserID      string
	CourseID    string
}

// SessionPayload is the full field set the gateway's hosted checkout form
// requires. The client renders these into the redirect form; the service
// itself never calls the gateway.
type SessionPayload struct {
	Sandbox    bool   `json:"sandbox"`
	MerchantID string `json:"merchant_id"`
	ReturnURL  string `json:"return_url"`
	CancelURL  string `json:"cancel_url"`
	NotifyURL  string `json:"notify_url"`
	OrderID    string `json:"order_id"`
	Items      string `json:"items"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Hash       string `json:"hash"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
	Custom1    string `json:"custom_1"` // buyer id
	Custom2    string `json:"custom_2"` // course id
}

// HostedCheckoutGateway signs outbound checkout sessions and verifies inbound
// notifications. Both are local computations over a shared merchant secret.
type HostedCheckoutGateway interface {
	Name() string
	Currency() string
	BuildSession(req CheckoutRequest) SessionPayload
	// VerifySignature recomputes the notification hash from the supplied
	// fields and compares case-insensitively.
	VerifySignature(merchantID, orderID, amount, currency, statusCode, signature string) bool
	// MapStatus converts the gateway's numeric status code to a payment status.
	MapStatus(code string) model.PaymentStatus
}
