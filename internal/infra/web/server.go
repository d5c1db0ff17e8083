// File: internal/infra/web/server.go
package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Randipa/lmcfinal/internal/usecase"
)

type Server struct {
	paymentUC      usecase.PaymentUseCase
	callbackUC     usecase.CallbackUseCase
	inquiryUC      usecase.InquiryUseCase
	bankTransferUC usecase.BankTransferUseCase
	shopUC         usecase.ShopOrderUseCase
	entitlementUC  usecase.EntitlementUseCase
	registrationUC usecase.RegistrationUseCase
	auth           *AuthManager
	frontendURL    string
	log            *zerolog.Logger

	httpSrv *http.Server
}

func NewServer(
	paymentUC usecase.PaymentUseCase,
	callbackUC usecase.CallbackUseCase,
	inquiryUC usecase.InquiryUseCase,
	bankTransferUC usecase.BankTransferUseCase,
	shopUC usecase.ShopOrderUseCase,
	entitlementUC usecase.EntitlementUseCase,
	registrationUC usecase.RegistrationUseCase,
	auth *AuthManager,
	frontendURL string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		paymentUC:      paymentUC,
		callbackUC:     callbackUC,
		inquiryUC:      inquiryUC,
		bankTransferUC: bankTransferUC,
		shopUC:         shopUC,
		entitlementUC:  entitlementUC,
		registrationUC: registrationUC,
		auth:           auth,
		frontendURL:    frontendURL,
		log:            logger,
	}
}

// ListenAndServe runs the server until ctx is cancelled, then drains.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("http server listening")
		errCh <- s.httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// router assembles the full HTTP surface. The webhook and the return/cancel
// redirects stay outside auth: the gateway and the buyer's browser hit them
// without a session.
func (s *Server) router() chi.Router {
	r := chi.NewRouter()
	r.Use(TraceID())
	r.Use(Recover(s.log))
	r.Use(RequestLog(s.log))
	r.Use(Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/send-otp", sendOTPHandler(s.registrationUC))
		r.Post("/verify-otp", verifyOTPHandler(s.registrationUC))
		r.Post("/register", registerHandler(s.registrationUC, s.auth))
		r.Post("/login", loginHandler(s.registrationUC, s.auth))
	})

	r.Route("/api/payment", func(r chi.Router) {
		// Gateway-facing endpoints, no session.
		r.Post("/notify", paymentNotifyHandler(s.callbackUC))
		r.Get("/return", paymentReturnHandler(s.paymentUC, s.frontendURL))
		r.Post("/return", paymentReturnHandler(s.paymentUC, s.frontendURL))
		r.Get("/cancel", paymentCancelHandler(s.paymentUC, s.frontendURL))
		r.Post("/cancel", paymentCancelHandler(s.paymentUC, s.frontendURL))

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Post("/session", paymentSessionHandler(s.paymentUC))
			r.Post("/verify", paymentVerifyHandler(s.paymentUC))
			r.Get("/history", paymentHistoryHandler(s.paymentUC))
		})
	})

	r.Route("/api/inquiries", func(r chi.Router) {
		r.Post("/", inquiryCreateHandler(s.inquiryUC, s.auth))
		r.With(s.requireAuth).Get("/my", inquiryListMineHandler(s.inquiryUC))
	})

	r.Route("/api/bank-transfers", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/", bankTransferCreateHandler(s.bankTransferUC))
		r.Get("/my", bankTransferListMineHandler(s.bankTransferUC))
	})

	r.Route("/api/shop", func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/session", shopSessionHandler(s.shopUC))
		r.Get("/orders/{orderID}", shopOrderGetHandler(s.shopUC))
	})

	r.With(s.requireAuth).Get("/api/entitlements/my", entitlementListMineHandler(s.entitlementUC))

	// Operator surface. The override endpoints live here, never in the
	// webhook path.
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/payments", adminPaymentsListHandler(s.paymentUC))
		r.Post("/payments/{orderID}/force-complete", adminForceCompleteHandler(s.callbackUC))
		r.Post("/payments/recover-notify", adminRecoverNotifyHandler(s.callbackUC))
		r.Get("/inquiries", adminInquiriesListHandler(s.inquiryUC))
		r.Post("/inquiries/{inquiryID}/approve", adminInquiryApproveHandler(s.inquiryUC))
		r.Post("/inquiries/{inquiryID}/reject", adminInquiryRejectHandler(s.inquiryUC))
		r.Get("/bank-transfers", adminBankTransfersListHandler(s.bankTransferUC))
		r.Post("/bank-transfers/{requestID}/approve", adminBankTransferApproveHandler(s.bankTransferUC))
	})

	return r
}
