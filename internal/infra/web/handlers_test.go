//go:build !integration

// File: internal/infra/web/handlers_test.go
package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/Randipa/lmcfinal/internal/domain/model"
)

func newTestServer(t *testing.T, callbackUC *mockCallbackUC, paymentUC *mockPaymentUC) (*Server, *AuthManager) {
	t.Helper()
	logger := zerolog.Nop()
	auth := NewAuthManager("test-jwt-secret", time.Hour)
	srv := NewServer(paymentUC, callbackUC, nil, nil, nil, nil, nil, auth, "https://app.example.lk", &logger)
	return srv, auth
}

func bearerFor(t *testing.T, auth *AuthManager, user *model.User) string {
	t.Helper()
	token, err := auth.Mint(user)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return "Bearer " + token
}

func TestNotifyEndpointAlwaysAcksOK(t *testing.T) {
	cases := []struct {
		name string
		form url.Values
	}{
		{
			name: "well formed notification",
			form: url.Values{
				"merchant_id":      {"M1"},
				"order_id":         {"ORD1"},
				"payment_id":       {"PAY-77"},
				"payhere_amount":   {"2500.00"},
				"payhere_currency": {"LKR"},
				"status_code":      {"2"},
				"md5sig":           {"ABCDEF"},
				"custom_1":         {"buyer-1"},
				"custom_2":         {"course-1"},
			},
		},
		{name: "empty body", form: url.Values{}},
		{name: "garbage fields", form: url.Values{"status_code": {"nonsense"}, "md5sig": {"zzz"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cb := &mockCallbackUC{}
			srv, _ := newTestServer(t, cb, &mockPaymentUC{})

			req := httptest.NewRequest(http.MethodPost, "/api/payment/notify", strings.NewReader(tc.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			srv.router().ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200 regardless of payload", rec.Code)
			}
			if body := rec.Body.String(); body != "OK" {
				t.Errorf("body = %q, want OK", body)
			}
		})
	}
}

func TestNotifyEndpointPassesParsedFields(t *testing.T) {
	cb := &mockCallbackUC{}
	srv, _ := newTestServer(t, cb, &mockPaymentUC{})

	form := url.Values{
		"merchant_id":      {"M1"},
		"order_id":         {"ORD1"},
		"payment_id":       {"PAY-77"},
		"payhere_amount":   {"2500.00"},
		"payhere_currency": {"LKR"},
		"status_code":      {"2"},
		"md5sig":           {"SIG"},
		"custom_1":         {"buyer-1"},
		"custom_2":         {"course-1"},
	}
	req := httptest.NewRequest(http.MethodPost, "/api/payment/notify", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.router().ServeHTTP(httptest.NewRecorder(), req)

	got := cb.received()
	if len(got) != 1 {
		t.Fatalf("payloads = %d, want 1", len(got))
	}
	p := got[0]
	if p.OrderID != "ORD1" || p.PaymentID != "PAY-77" || p.Amount != "2500.00" ||
		p.Currency != "LKR" || p.StatusCode != "2" || p.Signature != "SIG" ||
		p.UserID != "buyer-1" || p.CourseID != "course-1" {
		t.Errorf("unexpected payload: %+v", p)
	}
}

func TestReturnAndCancelRedirect(t *testing.T) {
	pay := &mockPaymentUC{}
	srv, _ := newTestServer(t, &mockCallbackUC{}, pay)

	t.Run("return", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/payment/return?order_id=ORD1", nil)
		rec := httptest.NewRecorder()
		srv.router().ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want 303", rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "https://app.example.lk/payment/complete" {
			t.Errorf("Location = %s", loc)
		}
		if len(pay.returned) != 1 || pay.returned[0] != "ORD1" {
			t.Errorf("return bookkeeping = %v", pay.returned)
		}
	})

	t.Run("cancel", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/payment/cancel?order_id=ORD1", nil)
		rec := httptest.NewRecorder()
		srv.router().ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want 303", rec.Code)
		}
		if len(pay.cancelled) != 1 {
			t.Errorf("cancel bookkeeping = %v", pay.cancelled)
		}
	})

	t.Run("return without order id still redirects", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/payment/return", nil)
		rec := httptest.NewRecorder()
		srv.router().ServeHTTP(rec, req)
		if rec.Code != http.StatusSeeOther {
			t.Errorf("status = %d, want 303", rec.Code)
		}
	})
}

func TestAuthGating(t *testing.T) {
	attempt := &model.PaymentAttempt{
		OrderID: "ORD1", UserID: "buyer-1", CourseID: "course-1",
		Amount: 250000, Currency: "LKR", Status: model.PaymentStatusCompleted,
		CreatedAt: time.Now(),
	}
	pay := &mockPaymentUC{attempt: attempt}
	srv, auth := newTestServer(t, &mockCallbackUC{}, pay)
	router := srv.router()

	buyer := &model.User{ID: "buyer-1", Role: model.UserRoleStudent}
	admin := &model.User{ID: "admin-1", Role: model.UserRoleAdmin}

	t.Run("verify requires a token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/payment/verify", strings.NewReader(`{"order_id":"ORD1"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("buyer token verifies own order", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/payment/verify", strings.NewReader(`{"order_id":"ORD1"}`))
		req.Header.Set("Authorization", bearerFor(t, auth, buyer))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
		}
		if !strings.Contains(rec.Body.String(), `"status":"completed"`) {
			t.Errorf("body = %s", rec.Body.String())
		}
	})

	t.Run("another buyer is rejected via unauthorized", func(t *testing.T) {
		intruder := &model.User{ID: "intruder", Role: model.UserRoleStudent}
		req := httptest.NewRequest(http.MethodPost, "/api/payment/verify", strings.NewReader(`{"order_id":"ORD1"}`))
		req.Header.Set("Authorization", bearerFor(t, auth, intruder))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("admin surface rejects buyer tokens", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/payments", nil)
		req.Header.Set("Authorization", bearerFor(t, auth, buyer))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("admin surface rejects forged tokens", func(t *testing.T) {
		other := NewAuthManager("other-secret", time.Hour)
		req := httptest.NewRequest(http.MethodGet, "/api/admin/payments", nil)
		req.Header.Set("Authorization", bearerFor(t, other, admin))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("rejects tokens with an unexpected signing method", func(t *testing.T) {
		// Correct secret but HS384 in the alg header. Only HS256 is accepted.
		claims := SessionClaims{
			Role: string(model.UserRoleAdmin),
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				Subject:   admin.ID,
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte("test-jwt-secret"))
		if err != nil {
			t.Fatalf("sign token: %v", err)
		}
		req := httptest.NewRequest(http.MethodGet, "/api/admin/payments", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t, &mockCallbackUC{}, &mockPaymentUC{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.router().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
