//go:build !integration

// File: internal/usecase/bank_transfer_uc_test.go
package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Randipa/lmcfinal/internal/domain"
	"github.com/Randipa/lmcfinal/internal/domain/model"
)

type bankTransferFixture struct {
	transfers    *mockBankTransferRepo
	entitlements *mockEntitlementRepo
	inquiries    *mockInquiryRepo
	notifier     *mockNotifier
	uc           BankTransferUseCase
}

func newBankTransferFixture(t *testing.T) *bankTransferFixture {
	t.Helper()
	logger := zerolog.Nop()
	f := &bankTransferFixture{
		transfers:    newMockBankTransferRepo(),
		entitlements: &mockEntitlementRepo{},
		inquiries:    newMockInquiryRepo(),
		notifier:     &mockNotifier{},
	}
	users := newMockUserRepo(
		&model.User{ID: "buyer-1", FirstName: "Kasun", PhoneNumber: "0771234567", Role: model.UserRoleStudent},
		&model.User{ID: "admin-1", FirstName: "Admin", PhoneNumber: "0779999999", Role: model.UserRoleAdmin},
	)
	entUC := NewEntitlementUseCase(f.entitlements, &logger)
	notifUC := NewNotificationUseCase(users, f.notifier, &logger)
	f.uc = NewBankTransferUseCase(f.transfers, entUC, f.inquiries, notifUC, &mockTxManager{}, &logger)
	return f
}

func TestBankTransferSubmit(t *testing.T) {
	t.Run("records a pending request and notifies admins", func(t *testing.T) {
		f := newBankTransferFixture(t)
		req, err := f.uc.Submit(context.Background(), "buyer-1", "course-1", "https://files.example.lk/slip.jpg")
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}
		if req.Status != model.BankTransferStatusPending {
			t.Errorf("status = %s, want pending", req.Status)
		}
		if len(f.notifier.messages()) != 1 {
			t.Errorf("admin notifications = %d, want 1", len(f.notifier.messages()))
		}
	})

	t.Run("rejects an already enrolled buyer", func(t *testing.T) {
		f := newBankTransferFixture(t)
		f.entitlements.grants = append(f.entitlements.grants, &model.Entitlement{
			UserID: "buyer-1", CourseID: "course-1", ExpiresAt: time.Now().Add(24 * time.Hour),
		})
		if _, err := f.uc.Submit(context.Background(), "buyer-1", "course-1", "https://files.example.lk/slip.jpg"); !errors.Is(err, domain.ErrAlreadyEnrolled) {
			t.Errorf("err = %v, want ErrAlreadyEnrolled", err)
		}
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		f := newBankTransferFixture(t)
		if _, err := f.uc.Submit(context.Background(), "buyer-1", "course-1", ""); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("err = %v, want ErrInvalidArgument", err)
		}
	})
}

func TestBankTransferApprove(t *testing.T) {
	t.Run("approval grants through the shared ledger", func(t *testing.T) {
		f := newBankTransferFixture(t)
		ctx := context.Background()
		req, err := f.uc.Submit(ctx, "buyer-1", "course-1", "https://files.example.lk/slip.jpg")
		if err != nil {
			t.Fatalf("Submit: %v", err)
		}

		approved, err := f.uc.Approve(ctx, req.ID)
		if err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if approved.Status != model.BankTransferStatusApproved {
			t.Errorf("status = %s, want approved", approved.Status)
		}
		if f.entitlements.count() != 1 {
			t.Errorf("grants = %d, want 1", f.entitlements.count())
		}
		// One admin notification from submit plus one buyer notification.
		if len(f.notifier.messages()) != 2 {
			t.Errorf("notifications = %d, want 2", len(f.notifier.messages()))
		}
	})

	t.Run("approving twice fails without a second grant", func(t *testing.T) {
		f := newBankTransferFixture(t)
		ctx := context.Background()
		req, _ := f.uc.Submit(ctx, "buyer-1", "course-1", "https://files.example.lk/slip.jpg")
		if _, err := f.uc.Approve(ctx, req.ID); err != nil {
			t.Fatalf("Approve: %v", err)
		}
		if _, err := f.uc.Approve(ctx, req.ID); !errors.Is(err, domain.ErrInvalidStateTransition) {
			t.Errorf("err = %v, want ErrInvalidStateTransition", err)
		}
		if f.entitlements.count() != 1 {
			t.Errorf("grants = %d, want 1", f.entitlements.count())
		}
	})

	t.Run("concurrent approvals grant once", func(t *testing.T) {
		f := newBankTransferFixture(t)
		ctx := context.Background()
		req, _ := f.uc.Submit(ctx, "buyer-1", "course-1", "https://files.example.lk/slip.jpg")

		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				f.uc.Approve(ctx, req.ID)
			}()
		}
		wg.Wait()

		if f.entitlements.count() != 1 {
			t.Errorf("grants = %d under concurrent approval, want 1", f.entitlements.count())
		}
	})

	t.Run("unknown request", func(t *testing.T) {
		f := newBankTransferFixture(t)
		if _, err := f.uc.Approve(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}
