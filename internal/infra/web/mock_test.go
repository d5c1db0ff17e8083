//go:build !integration

// File: internal/infra/web/mock_test.go
package web

import (
	"context"
	"sync"

	"github.com/Randipa/lmcfinal/internal/domain"
	"github.com/Randipa/lmcfinal/internal/domain/model"
	"github.com/Randipa/lmcfinal/internal/usecase"
)

// --- Mock Use Cases ---

type mockCallbackUC struct {
	usecase.CallbackUseCase
	mu       sync.Mutex
	payloads []usecase.NotifyPayload
}

func (m *mockCallbackUC) HandleNotify(ctx context.Context, p usecase.NotifyPayload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, p)
}

func (m *mockCallbackUC) received() []usecase.NotifyPayload {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]usecase.NotifyPayload, len(m.payloads))
	copy(out, m.payloads)
	return out
}

type mockPaymentUC struct {
	usecase.PaymentUseCase
	mu        sync.Mutex
	returned  []string
	cancelled []string
	attempt   *model.PaymentAttempt
}

func (m *mockPaymentUC) HandleReturn(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.returned = append(m.returned, orderID)
	return nil
}

func (m *mockPaymentUC) HandleCancel(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, orderID)
	return nil
}

func (m *mockPaymentUC) VerifyByOrderOrPaymentID(ctx context.Context, orderID, paymentID, requesterID string, requesterIsAdmin bool) (*model.PaymentAttempt, error) {
	if m.attempt == nil {
		return nil, domain.ErrNotFound
	}
	if !requesterIsAdmin && m.attempt.UserID != requesterID {
		return nil, domain.ErrUnauthorized
	}
	return m.attempt, nil
}

func (m *mockPaymentUC) History(ctx context.Context, userID string) ([]*model.PaymentAttempt, error) {
	if m.attempt != nil && m.attempt.UserID == userID {
		return []*model.PaymentAttempt{m.attempt}, nil
	}
	return nil, nil
}
