// File: internal/usecase/registration_uc.go
package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Randipa/lmcfinal/internal/domain"
	"github.com/Randipa/lmcfinal/internal/domain/model"
	"github.com/Randipa/lmcfinal/internal/domain/ports/adapter"
	"github.com/Randipa/lmcfinal/internal/domain/ports/repository"
	"github.com/Randipa/lmcfinal/internal/infra/logging"
	"github.com/Randipa/lmcfinal/internal/infra/metrics"
)

const (
	otpLength       = 6
	otpSendLimit    = 3
	otpSendWindow   = 10 * time.Minute
	otpVerifyLimit  = 5
	otpVerifyWindow = 10 * time.Minute
)

// RegisterInput completes a verified registration.
type RegisterInput struct {
	Phone     string
	Password  string
	FirstName string
	LastName  string
	Education string
	Address   string
}

// Compile-time check
var _ RegistrationUseCase = (*registrationUC)(nil)

type RegistrationUseCase interface {
	// SendRegistrationOTP texts a one-time code to an unregistered phone
	// number. Rate limited per phone.
	SendRegistrationOTP(ctx context.Context, phone string) error
	// VerifyRegistrationOTP checks the code and marks the phone verified.
	VerifyRegistrationOTP(ctx context.Context, phone, otp string) error
	// Register creates the account once the phone has been verified.
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	// Login verifies credentials and returns the account for token issuance.
	Login(ctx context.Context, phone, password string) (*model.User, error)
}

type registrationUC struct {
	users    repository.UserRepository
	states   repository.RegistrationStateRepository
	limiter  adapter.RateLimiter
	notifier adapter.Notifier
	log      *zerolog.Logger
}

func NewRegistrationUseCase(
	users repository.UserRepository,
	states repository.RegistrationStateRepository,
	limiter adapter.RateLimiter,
	notifier adapter.Notifier,
	logger *zerolog.Logger,
) *registrationUC {
	return &registrationUC{
		users:    users,
		states:   states,
		limiter:  limiter,
		notifier: notifier,
		log:      logger,
	}
}

func (u *registrationUC) SendRegistrationOTP(ctx context.Context, phone string) error {
	normalized, err := model.NormalizePhoneNumber(phone)
	if err != nil {
		metrics.IncOTP("send", "invalid_phone")
		return err
	}

	if _, err := u.users.FindByPhone(ctx, nil, normalized); err == nil {
		metrics.IncOTP("send", "already_registered")
		return domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		metrics.IncOTP("send", "error")
		return err
	}

	allowed, err := u.limiter.Allow(ctx, "otp_send:"+normalized, otpSendLimit, otpSendWindow)
	if err != nil {
		metrics.IncOTP("send", "error")
		return err
	}
	if !allowed {
		metrics.IncOTP("send", "rate_limited")
		return domain.ErrRateLimited
	}

	otp, err := generateOTP(otpLength)
	if err != nil {
		metrics.IncOTP("send", "error")
		return err
	}
	if err := u.states.SetState(ctx, normalized, &repository.RegistrationState{OTP: otp}); err != nil {
		metrics.IncOTP("send", "error")
		return err
	}

	if err := u.notifier.Send(ctx, normalized, "Your OTP is: "+otp); err != nil {
		metrics.IncOTP("send", "dispatch_failed")
		u.log.Error().Err(err).
			Str("phone", logging.Redact(normalized)).
			Msg("otp dispatch failed")
		return fmt.Errorf("%w: otp dispatch", domain.ErrOperationFailed)
	}

	metrics.IncOTP("send", "ok")
	u.log.Info().Str("phone", logging.Redact(normalized)).Msg("registration otp sent")
	return nil
}

func (u *registrationUC) VerifyRegistrationOTP(ctx context.Context, phone, otp string) error {
	normalized, err := model.NormalizePhoneNumber(phone)
	if err != nil {
		metrics.IncOTP("verify", "invalid_phone")
		return err
	}

	allowed, err := u.limiter.Allow(ctx, "otp_verify:"+normalized, otpVerifyLimit, otpVerifyWindow)
	if err != nil {
		metrics.IncOTP("verify", "error")
		return err
	}
	if !allowed {
		metrics.IncOTP("verify", "rate_limited")
		return domain.ErrRateLimited
	}

	state, err := u.states.GetState(ctx, normalized)
	if err != nil {
		metrics.IncOTP("verify", "not_found")
		return err
	}
	if state.OTP == "" || state.OTP != otp {
		metrics.IncOTP("verify", "mismatch")
		return domain.ErrOTPMismatch
	}

	state.Verified = true
	if err := u.states.SetState(ctx, normalized, state); err != nil {
		metrics.IncOTP("verify", "error")
		return err
	}
	metrics.IncOTP("verify", "ok")
	return nil
}

func (u *registrationUC) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	normalized, err := model.NormalizePhoneNumber(in.Phone)
	if err != nil {
		return nil, err
	}
	if len(in.Password) < 8 || in.FirstName == "" {
		return nil, domain.ErrInvalidArgument
	}

	state, err := u.states.GetState(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if !state.Verified {
		return nil, domain.ErrOTPMismatch
	}

	if _, err := u.users.FindByPhone(ctx, nil, normalized); err == nil {
		return nil, domain.ErrAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
	}
	now := time.Now()
	user := &model.User{
		ID:           uuid.NewString(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PhoneNumber:  normalized,
		PasswordHash: string(hash),
		Education:    in.Education,
		Address:      in.Address,
		Role:         model.UserRoleStudent,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.users.Save(ctx, nil, user); err != nil {
		return nil, err
	}

	if err := u.states.ClearState(ctx, normalized); err != nil {
		u.log.Warn().Err(err).Msg("failed to clear registration state")
	}
	u.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

func (u *registrationUC) Login(ctx context.Context, phone, password string) (*model.User, error) {
	normalized, err := model.NormalizePhoneNumber(phone)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	user, err := u.users.FindByPhone(ctx, nil, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

func generateOTP(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		v, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrOperationFailed, err)
		}
		digits[i] = '0' + byte(v.Int64())
	}
	return string(digits), nil
}
