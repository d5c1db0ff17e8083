// File: internal/infra/payment/payhere.go
package payment

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/Randipa/lmcfinal/internal/domain/model"
	"github.com/Randipa/lmcfinal/internal/domain/ports/adapter"
)

var _ adapter.HostedCheckoutGateway = (*PayHere)(nil)

// PayHere is the hosted-checkout signer/verifier. Building a session and
// verifying a notification are both local computations; this service never
// calls the gateway over the network — the buyer's browser carries the signed
// form to the gateway, and the gateway posts the notification back.
type PayHere struct {
	merchantID string
	secret     string
	sandbox    bool
	currency   string
}

func NewPayHere(merchantID, merchantSecret, currency string, sandbox bool) (*PayHere, error) {
	if merchantID == "" || merchantSecret == "" {
		return nil, errors.New("payhere merchant id and secret are required")
	}
	if currency == "" {
		currency = "LKR"
	}
	return &PayHere{merchantID: merchantID, secret: merchantSecret, sandbox: sandbox, currency: currency}, nil
}

func (p *PayHere) Name() string     { return "payhere" }
func (p *PayHere) Currency() string { return p.currency }

func md5Upper(s string) string {
	sum := md5.Sum([]byte(s))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// CheckoutHash computes the two-stage digest the hosted checkout form carries:
// MD5(merchantId + orderId + amount + currency + MD5(secret)), all uppercase hex,
// amount formatted with exactly two decimals.
func (p *PayHere) CheckoutHash(orderID string, amountCents int64) string {
	return md5Upper(p.merchantID + orderID + model.FormatAmount(amountCents) + p.currency + md5Upper(p.secret))
}

// VerificationHash is the notification-side digest: the same construction with
// the gateway status code spliced in before the hashed secret.
func (p *PayHere) VerificationHash(merchantID, orderID, amount, currency, statusCode string) string {
	return md5Upper(merchantID + orderID + amount + currency + statusCode + md5Upper(p.secret))
}

func (p *PayHere) VerifySignature(merchantID, orderID, amount, currency, statusCode, signature string) bool {
	expected := p.VerificationHash(merchantID, orderID, amount, currency, statusCode)
	return strings.EqualFold(expected, signature)
}

// Gateway status codes, per the hosted-checkout notification contract.
const (
	StatusCodeSuccess    = "2"
	StatusCodePending    = "0"
	StatusCodeCancelled  = "-1"
	StatusCodeFailed     = "-2"
	StatusCodeChargeback = "-3"
)

// MapStatus converts the numeric notification code to a payment status.
// Unrecognized codes map to unknown rather than failing the callback.
func (p *PayHere) MapStatus(code string) model.PaymentStatus {
	switch code {
	case StatusCodeSuccess:
		return model.PaymentStatusCompleted
	case StatusCodePending:
		return model.PaymentStatusPending
	case StatusCodeCancelled:
		return model.PaymentStatusCancelled
	case StatusCodeFailed:
		return model.PaymentStatusFailed
	case StatusCodeChargeback:
		return model.PaymentStatusChargedBack
	default:
		return model.PaymentStatusUnknown
	}
}

// BuildSession assembles and signs the hosted-checkout payload.
func (p *PayHere) BuildSession(req adapter.CheckoutRequest) adapter.SessionPayload {
	return adapter.SessionPayload{
		Sandbox:    p.sandbox,
		MerchantID: p.merchantID,
		ReturnURL:  req.BaseURL + "/api/payment/return",
		CancelURL:  req.BaseURL + "/api/payment/cancel",
		NotifyURL:  req.BaseURL + "/api/payment/notify",
		OrderID:    req.OrderID,
		Items:      req.Items,
		Amount:     model.FormatAmount(req.AmountCents),
		Currency:   p.currency,
		Hash:       p.CheckoutHash(req.OrderID, req.AmountCents),
		FirstName:  req.Buyer.FirstName,
		LastName:   req.Buyer.LastName,
		Email:      "user" + req.Buyer.PhoneNumber + "@example.com",
		Phone:      req.Buyer.PhoneNumber,
		Address:    req.Buyer.Address,
		City:       "Colombo",
		Country:    "Sri Lanka",
		Custom1:    req.UserID,
		Custom2:    req.CourseID,
	}
}
