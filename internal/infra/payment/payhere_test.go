//go:build !integration

// File: internal/infra/payment/payhere_test.go
package payment

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/Randipa/lmcfinal/internal/domain/model"
	"github.com/Randipa/lmcfinal/internal/domain/ports/adapter"
)

func newTestGateway(t *testing.T) *PayHere {
	t.Helper()
	gw, err := NewPayHere("1211149", "test-secret", "LKR", true)
	if err != nil {
		t.Fatalf("NewPayHere: %v", err)
	}
	return gw
}

func TestNewPayHereValidation(t *testing.T) {
	if _, err := NewPayHere("", "secret", "LKR", true); err == nil {
		t.Error("expected error for empty merchant id")
	}
	if _, err := NewPayHere("m", "", "LKR", true); err == nil {
		t.Error("expected error for empty secret")
	}
	gw, err := NewPayHere("m", "s", "", true)
	if err != nil {
		t.Fatalf("NewPayHere: %v", err)
	}
	if gw.Currency() != "LKR" {
		t.Errorf("default currency = %q, want LKR", gw.Currency())
	}
}

func TestCheckoutHash(t *testing.T) {
	gw := newTestGateway(t)

	// Recompute the two-stage digest by hand.
	inner := md5.Sum([]byte("test-secret"))
	innerHex := strings.ToUpper(hex.EncodeToString(inner[:]))
	outer := md5.Sum([]byte("1211149" + "ORD123" + "2500.00" + "LKR" + innerHex))
	want := strings.ToUpper(hex.EncodeToString(outer[:]))

	if got := gw.CheckoutHash("ORD123", 250000); got != want {
		t.Errorf("CheckoutHash = %s, want %s", got, want)
	}
	if got := gw.CheckoutHash("ORD123", 250000); got != strings.ToUpper(got) {
		t.Error("checkout hash must be uppercase hex")
	}
}

func TestVerifySignature(t *testing.T) {
	gw := newTestGateway(t)
	sig := gw.VerificationHash("1211149", "ORD123", "2500.00", "LKR", "2")

	t.Run("valid signature", func(t *testing.T) {
		if !gw.VerifySignature("1211149", "ORD123", "2500.00", "LKR", "2", sig) {
			t.Error("expected valid signature to verify")
		}
	})
	t.Run("comparison is case-insensitive", func(t *testing.T) {
		if !gw.VerifySignature("1211149", "ORD123", "2500.00", "LKR", "2", strings.ToLower(sig)) {
			t.Error("expected lowercase signature to verify")
		}
	})
	t.Run("any field change breaks the signature", func(t *testing.T) {
		if gw.VerifySignature("1211149", "ORD123", "2500.01", "LKR", "2", sig) {
			t.Error("tampered amount must not verify")
		}
		if gw.VerifySignature("1211149", "ORD123", "2500.00", "LKR", "0", sig) {
			t.Error("tampered status code must not verify")
		}
		if gw.VerifySignature("1211149", "ORD999", "2500.00", "LKR", "2", sig) {
			t.Error("tampered order id must not verify")
		}
	})
	t.Run("status code participates in the digest", func(t *testing.T) {
		other := gw.VerificationHash("1211149", "ORD123", "2500.00", "LKR", "0")
		if sig == other {
			t.Error("signatures for different status codes must differ")
		}
	})
}

func TestMapStatus(t *testing.T) {
	gw := newTestGateway(t)
	cases := []struct {
		code string
		want model.PaymentStatus
	}{
		{"2", model.PaymentStatusCompleted},
		{"0", model.PaymentStatusPending},
		{"-1", model.PaymentStatusCancelled},
		{"-2", model.PaymentStatusFailed},
		{"-3", model.PaymentStatusChargedBack},
		{"7", model.PaymentStatusUnknown},
		{"", model.PaymentStatusUnknown},
		{"two", model.PaymentStatusUnknown},
	}
	for _, tc := range cases {
		if got := gw.MapStatus(tc.code); got != tc.want {
			t.Errorf("MapStatus(%q) = %s, want %s", tc.code, got, tc.want)
		}
	}
}

func TestBuildSession(t *testing.T) {
	gw := newTestGateway(t)
	buyer := &model.User{
		FirstName:   "Kasun",
		LastName:    "Perera",
		PhoneNumber: "0771234567",
		Address:     "12 Galle Rd",
	}
	payload := gw.BuildSession(adapter.CheckoutRequest{
		BaseURL:     "https://api.example.lk",
		OrderID:     "ORD123",
		Items:       "Course Enrollment - Algebra",
		AmountCents: 250000,
		Buyer:       buyer,
		UserID:      "user-1",
		CourseID:    "course-1",
	})

	if payload.MerchantID != "1211149" || !payload.Sandbox {
		t.Errorf("unexpected merchant fields: %+v", payload)
	}
	if payload.NotifyURL != "https://api.example.lk/api/payment/notify" {
		t.Errorf("NotifyURL = %s", payload.NotifyURL)
	}
	if payload.ReturnURL != "https://api.example.lk/api/payment/return" {
		t.Errorf("ReturnURL = %s", payload.ReturnURL)
	}
	if payload.Amount != "2500.00" || payload.Currency != "LKR" {
		t.Errorf("amount fields = %s %s", payload.Amount, payload.Currency)
	}
	if payload.Hash != gw.CheckoutHash("ORD123", 250000) {
		t.Error("payload hash must match the checkout hash")
	}
	if payload.Custom1 != "user-1" || payload.Custom2 != "course-1" {
		t.Errorf("custom fields = %s %s", payload.Custom1, payload.Custom2)
	}
	if payload.Email != "user0771234567@example.com" {
		t.Errorf("Email = %s", payload.Email)
	}
}
