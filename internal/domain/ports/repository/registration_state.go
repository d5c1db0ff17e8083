package repository

import "context"

// RegistrationState holds a pending phone verification. Stored durably (Redis,
// keyed by normalized phone with a TTL) rather than in process memory so the
// flow survives restarts and horizontal scaling.
type RegistrationState struct {
	OTP      string `json:"otp"`
	Verified bool   `json:"verified"`
}

type RegistrationStateRepository interface {
	SetState(ctx context.Context, phone string, state *RegistrationState) error
	GetState(ctx context.Context, phone string) (*RegistrationState, error)
	ClearState(ctx context.Context, phone string) error
}
