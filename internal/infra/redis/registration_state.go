package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Randipa/lmcfinal/internal/domain"
	"github.com/Randipa/lmcfinal/internal/domain/ports/repository"
)

// Ensure the adapter implements the port interface.
var _ repository.RegistrationStateRepository = (*RegistrationStateRepo)(nil)

// RegistrationStateRepo stores pending phone verifications keyed by normalized
// phone number with a TTL. Durable across restarts and shared across replicas,
// unlike the process-memory map this replaces.
type RegistrationStateRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewRegistrationStateRepo(client RedisClient, ttl time.Duration) *RegistrationStateRepo {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &RegistrationStateRepo{client: client, ttl: ttl}
}

func (s *RegistrationStateRepo) stateKey(phone string) string {
	return "reg_state:" + phone
}

func (s *RegistrationStateRepo) SetState(ctx context.Context, phone string, state *repository.RegistrationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.stateKey(phone), data, s.ttl)
}

func (s *RegistrationStateRepo) GetState(ctx context.Context, phone string) (*repository.RegistrationState, error) {
	data, err := s.client.Get(ctx, s.stateKey(phone))
	if err != nil {
		if err == redis.Nil {
			return nil, domain.ErrOTPNotFound
		}
		return nil, err
	}

	var state repository.RegistrationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *RegistrationStateRepo) ClearState(ctx context.Context, phone string) error {
	return s.client.Del(ctx, s.stateKey(phone))
}
