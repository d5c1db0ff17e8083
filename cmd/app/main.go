// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/Randipa/lmcfinal/internal/config"
	"github.com/Randipa/lmcfinal/internal/domain/ports/adapter"
	pg "github.com/Randipa/lmcfinal/internal/infra/db/postgres"
	"github.com/Randipa/lmcfinal/internal/infra/logging"
	"github.com/Randipa/lmcfinal/internal/infra/metrics"
	"github.com/Randipa/lmcfinal/internal/infra/notify"
	"github.com/Randipa/lmcfinal/internal/infra/payment"
	red "github.com/Randipa/lmcfinal/internal/infra/redis"
	"github.com/Randipa/lmcfinal/internal/infra/web"
	"github.com/Randipa/lmcfinal/internal/usecase"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed redaction)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	txManager := pg.NewTxManager(pool)

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	rateLimiter := red.NewRateLimiter(redisClient)
	regStates := red.NewRegistrationStateRepo(redisClient, cfg.Redis.TTL)

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	courseRepo := pg.NewCourseRepo(pool)
	paymentRepo := pg.NewPaymentRepo(pool)
	entitlementRepo := pg.NewEntitlementRepo(pool)
	inquiryRepo := pg.NewInquiryRepo(pool)
	bankTransferRepo := pg.NewBankTransferRepo(pool)
	shopOrderRepo := pg.NewShopOrderRepo(pool)

	// ---- Adapters ----
	gateway, err := payment.NewPayHere(
		cfg.Payment.PayHere.MerchantID,
		cfg.Payment.PayHere.MerchantSecret,
		cfg.Payment.PayHere.Currency,
		cfg.Payment.PayHere.Sandbox,
	)
	if err != nil {
		log.Fatalf("payhere gateway: %v", err)
	}
	var notifier adapter.Notifier
	if cfg.WhatsApp.SlotID != "" {
		notifier, err = notify.NewQuicksendWhatsApp(cfg.WhatsApp)
		if err != nil {
			log.Fatalf("whatsapp notifier: %v", err)
		}
	} else {
		logger.Warn().Msg("whatsapp slot id not configured; notifications go to the noop sink")
		notifier = notify.NewNoopNotifier()
	}

	// ---- Use cases ----
	entitlementUC := usecase.NewEntitlementUseCase(entitlementRepo, logger)
	notificationUC := usecase.NewNotificationUseCase(userRepo, notifier, logger)
	paymentUC := usecase.NewPaymentUseCase(
		paymentRepo, userRepo, courseRepo, inquiryRepo,
		entitlementUC, gateway, txManager,
		cfg.Web.BaseURL, cfg.Payment.InquiryGated, logger,
	)
	callbackUC := usecase.NewCallbackUseCase(
		paymentRepo, shopOrderRepo, entitlementUC, inquiryRepo,
		notificationUC, gateway, txManager, logger,
	)
	inquiryUC := usecase.NewInquiryUseCase(inquiryRepo, userRepo, courseRepo, notificationUC, txManager, logger)
	bankTransferUC := usecase.NewBankTransferUseCase(bankTransferRepo, entitlementUC, inquiryRepo, notificationUC, txManager, logger)
	shopUC := usecase.NewShopOrderUseCase(shopOrderRepo, userRepo, gateway, cfg.Web.BaseURL, logger)
	registrationUC := usecase.NewRegistrationUseCase(userRepo, regStates, rateLimiter, notifier, logger)

	// ---- HTTP server ----
	auth := web.NewAuthManager(cfg.Web.JWTSecret, cfg.Web.TokenTTL)
	srv := web.NewServer(
		paymentUC, callbackUC, inquiryUC, bankTransferUC,
		shopUC, entitlementUC, registrationUC,
		auth, cfg.Web.FrontendURL, logger,
	)

	addr := fmt.Sprintf(":%d", cfg.Web.Port)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		logger.Error().Err(err).Msg("http server stopped")
	}
	logger.Info().Msg("shutdown complete")
}
