// File: internal/infra/web/handlers.go
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Randipa/lmcfinal/internal/domain"
	"github.com/Randipa/lmcfinal/internal/domain/model"
	"github.com/Randipa/lmcfinal/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeDomainError maps sentinel errors to HTTP statuses. Anything unmapped
// is an internal error and the detail stays out of the response.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidPhoneNumber):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrOTPNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrOTPMismatch):
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrDuplicateInquiry),
		errors.Is(err, domain.ErrAlreadyEnrolled), errors.Is(err, domain.ErrInvalidStateTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInquiryNotApproved):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, domain.ErrRateLimited):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// ===== Auth =====

type phoneRequest struct {
	Phone string `json:"phone"`
}

type otpVerifyRequest struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

type registerRequest struct {
	Phone     string `json:"phone"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Education string `json:"education"`
	Address   string `json:"address"`
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.PhoneNumber,
		Role:      string(u.Role),
	}
}

func sendOTPHandler(regUC usecase.RegistrationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req phoneRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := regUC.SendRegistrationOTP(r.Context(), req.Phone); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
	}
}

func verifyOTPHandler(regUC usecase.RegistrationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req otpVerifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := regUC.VerifyRegistrationOTP(r.Context(), req.Phone, req.OTP); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
	}
}

func registerHandler(regUC usecase.RegistrationUseCase, auth *AuthManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		user, err := regUC.Register(r.Context(), usecase.RegisterInput{
			Phone:     req.Phone,
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Education: req.Education,
			Address:   req.Address,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		token, err := auth.Mint(user)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"token": token,
			"user":  toUserResponse(user),
		})
	}
}

func loginHandler(regUC usecase.RegistrationUseCase, auth *AuthManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		user, err := regUC.Login(r.Context(), req.Phone, req.Password)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		token, err := auth.Mint(user)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"token": token,
			"user":  toUserResponse(user),
		})
	}
}

// ===== Payments =====

type sessionRequest struct {
	CourseID string `json:"course_id"`
	Phone    string `json:"phone"`
}

func paymentSessionHandler(paymentUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		claims := claimsFrom(r.Context())
		payload, err := paymentUC.BuildSession(r.Context(), claims.Subject, req.CourseID, req.Phone)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	}
}

// paymentNotifyHandler processes the gateway's server-to-server callback. It
// acknowledges with 200 "OK" unconditionally so the gateway stops
// redelivering; rejection reasons live in logs and metrics only.
func paymentNotifyHandler(callbackUC usecase.CallbackUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		callbackUC.HandleNotify(r.Context(), usecase.NotifyPayload{
			MerchantID: r.PostFormValue("merchant_id"),
			OrderID:    r.PostFormValue("order_id"),
			PaymentID:  r.PostFormValue("payment_id"),
			Amount:     r.PostFormValue("payhere_amount"),
			Currency:   r.PostFormValue("payhere_currency"),
			StatusCode: r.PostFormValue("status_code"),
			Signature:  r.PostFormValue("md5sig"),
			UserID:     r.PostFormValue("custom_1"),
			CourseID:   r.PostFormValue("custom_2"),
		})
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}

func paymentReturnHandler(paymentUC usecase.PaymentUseCase, frontendURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := r.URL.Query().Get("order_id")
		if orderID != "" {
			// Browser redirects are not payment evidence; a failed stamp is
			// not worth breaking the buyer's redirect over.
			_ = paymentUC.HandleReturn(r.Context(), orderID)
		}
		http.Redirect(w, r, frontendURL+"/payment/complete", http.StatusSeeOther)
	}
}

func paymentCancelHandler(paymentUC usecase.PaymentUseCase, frontendURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID := r.URL.Query().Get("order_id")
		if orderID != "" {
			_ = paymentUC.HandleCancel(r.Context(), orderID)
		}
		http.Redirect(w, r, frontendURL+"/payment/cancelled", http.StatusSeeOther)
	}
}

type verifyRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
}

type paymentResponse struct {
	OrderID     string  `json:"order_id"`
	CourseID    string  `json:"course_id"`
	Amount      string  `json:"amount"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
	PaymentID   *string `json:"payment_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
	CompletedAt *string `json:"completed_at,omitempty"`
}

func toPaymentResponse(p *model.PaymentAttempt) paymentResponse {
	resp := paymentResponse{
		OrderID:   p.OrderID,
		CourseID:  p.CourseID,
		Amount:    model.FormatAmount(p.Amount),
		Currency:  p.Currency,
		Status:    string(p.Status),
		PaymentID: p.PaymentID,
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if p.CompletedAt != nil {
		s := p.CompletedAt.Format("2006-01-02T15:04:05Z07:00")
		resp.CompletedAt = &s
	}
	return resp
}

func paymentVerifyHandler(paymentUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		claims := claimsFrom(r.Context())
		attempt, err := paymentUC.VerifyByOrderOrPaymentID(r.Context(), req.OrderID, req.PaymentID, claims.Subject, claims.IsAdmin())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPaymentResponse(attempt))
	}
}

func paymentHistoryHandler(paymentUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		attempts, err := paymentUC.History(r.Context(), claims.Subject)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]paymentResponse, 0, len(attempts))
		for _, a := range attempts {
			out = append(out, toPaymentResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func adminPaymentsListHandler(paymentUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 || limit > 200 {
			limit = 50
		}
		attempts, err := paymentUC.ListAll(r.Context(), offset, limit)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]paymentResponse, 0, len(attempts))
		for _, a := range attempts {
			out = append(out, toPaymentResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func adminForceCompleteHandler(callbackUC usecase.CallbackUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		attempt, err := callbackUC.ForceComplete(r.Context(), chi.URLParam(r, "orderID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toPaymentResponse(attempt))
	}
}

type recoverNotifyRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	UserID    string `json:"user_id"`
	CourseID  string `json:"course_id"`
}

func adminRecoverNotifyHandler(callbackUC usecase.CallbackUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recoverNotifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := callbackUC.RecoverNotify(r.Context(), req.OrderID, req.PaymentID, req.UserID, req.CourseID); err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "recovered"})
	}
}

// ===== Inquiries =====

type inquiryCreateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	CourseID  string `json:"course_id"`
	Message   string `json:"message"`
}

type inquiryResponse struct {
	ID        string `json:"id"`
	CourseID  string `json:"course_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func toInquiryResponse(i *model.Inquiry) inquiryResponse {
	return inquiryResponse{
		ID:        i.ID,
		CourseID:  i.CourseID,
		FirstName: i.FirstName,
		LastName:  i.LastName,
		Status:    string(i.Status),
		CreatedAt: i.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// inquiryCreateHandler accepts both anonymous and signed-in submissions; a
// valid token attaches the inquiry to the account immediately.
func inquiryCreateHandler(inquiryUC usecase.InquiryUseCase, auth *AuthManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req inquiryCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		var userID string
		if claims, err := auth.ParseFromRequest(r); err == nil {
			userID = claims.Subject
		}
		inq, err := inquiryUC.Create(r.Context(), usecase.CreateInquiryInput{
			UserID:    userID,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Phone:     req.Phone,
			CourseID:  req.CourseID,
			Message:   req.Message,
		})
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toInquiryResponse(inq))
	}
}

func inquiryListMineHandler(inquiryUC usecase.InquiryUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		inquiries, err := inquiryUC.ListMine(r.Context(), claims.Subject)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]inquiryResponse, 0, len(inquiries))
		for _, i := range inquiries {
			out = append(out, toInquiryResponse(i))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func adminInquiriesListHandler(inquiryUC usecase.InquiryUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := model.InquiryStatus(r.URL.Query().Get("status"))
		if status == "" {
			status = model.InquiryStatusPending
		}
		inquiries, err := inquiryUC.ListByStatus(r.Context(), status)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]inquiryResponse, 0, len(inquiries))
		for _, i := range inquiries {
			out = append(out, toInquiryResponse(i))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func adminInquiryApproveHandler(inquiryUC usecase.InquiryUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inq, err := inquiryUC.Approve(r.Context(), chi.URLParam(r, "inquiryID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toInquiryResponse(inq))
	}
}

func adminInquiryRejectHandler(inquiryUC usecase.InquiryUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inq, err := inquiryUC.Reject(r.Context(), chi.URLParam(r, "inquiryID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toInquiryResponse(inq))
	}
}

// ===== Bank transfers =====

type bankTransferCreateRequest struct {
	CourseID string `json:"course_id"`
	SlipURL  string `json:"slip_url"`
}

type bankTransferResponse struct {
	ID        string `json:"id"`
	CourseID  string `json:"course_id"`
	SlipURL   string `json:"slip_url"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func toBankTransferResponse(b *model.BankTransferRequest) bankTransferResponse {
	return bankTransferResponse{
		ID:        b.ID,
		CourseID:  b.CourseID,
		SlipURL:   b.SlipURL,
		Status:    string(b.Status),
		CreatedAt: b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func bankTransferCreateHandler(btUC usecase.BankTransferUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bankTransferCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		claims := claimsFrom(r.Context())
		out, err := btUC.Submit(r.Context(), claims.Subject, req.CourseID, req.SlipURL)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toBankTransferResponse(out))
	}
}

func bankTransferListMineHandler(btUC usecase.BankTransferUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		list, err := btUC.ListMine(r.Context(), claims.Subject)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]bankTransferResponse, 0, len(list))
		for _, b := range list {
			out = append(out, toBankTransferResponse(b))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func adminBankTransfersListHandler(btUC usecase.BankTransferUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := btUC.ListPending(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]bankTransferResponse, 0, len(list))
		for _, b := range list {
			out = append(out, toBankTransferResponse(b))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func adminBankTransferApproveHandler(btUC usecase.BankTransferUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := btUC.Approve(r.Context(), chi.URLParam(r, "requestID"))
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toBankTransferResponse(out))
	}
}

// ===== Shop orders =====

type shopItemRequest struct {
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceCents int64  `json:"price_cents"`
}

type shopSessionRequest struct {
	Items []shopItemRequest `json:"items"`
}

func shopSessionHandler(shopUC usecase.ShopOrderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req shopSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		items := make([]model.ShopOrderItem, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, model.ShopOrderItem{
				ProductID:  it.ProductID,
				Qty:        it.Qty,
				PriceCents: it.PriceCents,
			})
		}
		claims := claimsFrom(r.Context())
		payload, err := shopUC.BuildSession(r.Context(), claims.Subject, items)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, payload)
	}
}

func shopOrderGetHandler(shopUC usecase.ShopOrderUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		order, err := shopUC.Get(r.Context(), chi.URLParam(r, "orderID"), claims.Subject, claims.IsAdmin())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"order_id":    order.OrderID,
			"status":      string(order.Status),
			"total_cents": order.TotalCents,
		})
	}
}

// ===== Entitlements =====

type entitlementResponse struct {
	CourseID  string `json:"course_id"`
	GrantedAt string `json:"granted_at"`
	ExpiresAt string `json:"expires_at"`
	Source    string `json:"source"`
}

func entitlementListMineHandler(entUC usecase.EntitlementUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		list, err := entUC.ListByUser(r.Context(), claims.Subject)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		out := make([]entitlementResponse, 0, len(list))
		for _, e := range list {
			out = append(out, entitlementResponse{
				CourseID:  e.CourseID,
				GrantedAt: e.GrantedAt.Format("2006-01-02T15:04:05Z07:00"),
				ExpiresAt: e.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"),
				Source:    e.Source,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
