// File: internal/usecase/entitlement_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Randipa/lmcfinal/internal/domain"
	"github.com/Randipa/lmcfinal/internal/domain/model"
	"github.com/Randipa/lmcfinal/internal/domain/ports/repository"
	"github.com/Randipa/lmcfinal/internal/infra/metrics"
)

// Compile-time check
var _ EntitlementUseCase = (*entitlementUC)(nil)

// EntitlementUseCase owns the access-grant ledger. Every path that turns money
// into course access (gateway callback, client verification, bank-transfer
// approval, admin override) converges on Grant.
type EntitlementUseCase interface {
	// Grant creates a live entitlement for (user, course) expiring on the next
	// 8th, unless one already exists. Returns false when suppressed as a
	// duplicate. source labels the grant path for the audit trail.
	Grant(ctx context.Context, tx repository.Tx, userID, courseID string, at time.Time, source string) (bool, error)
	// HasLiveGrant is the access check the rest of the platform reads.
	HasLiveGrant(ctx context.Context, userID, courseID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Entitlement, error)
}

type entitlementUC struct {
	entitlements repository.EntitlementRepository
	log          *zerolog.Logger
}

func NewEntitlementUseCase(entitlements repository.EntitlementRepository, logger *zerolog.Logger) *entitlementUC {
	return &entitlementUC{entitlements: entitlements, log: logger}
}

func (u *entitlementUC) Grant(ctx context.Context, tx repository.Tx, userID, courseID string, at time.Time, source string) (bool, error) {
	if userID == "" || courseID == "" {
		return false, domain.ErrInvalidArgument
	}
	e := &model.Entitlement{
		ID:        uuid.NewString(),
		UserID:    userID,
		CourseID:  courseID,
		Source:    source,
		GrantedAt: at,
		ExpiresAt: model.NextEighth(at),
	}
	inserted, err := u.entitlements.GrantIfAbsent(ctx, tx, e)
	if err != nil {
		return false, err
	}
	if inserted {
		metrics.IncEntitlementGrant(source)
		u.log.Info().
			Str("user_id", userID).
			Str("course_id", courseID).
			Str("source", source).
			Time("expires_at", e.ExpiresAt).
			Msg("entitlement granted")
	} else {
		metrics.IncEntitlementDuplicate(source)
		u.log.Debug().
			Str("user_id", userID).
			Str("course_id", courseID).
			Str("source", source).
			Msg("entitlement grant suppressed: live grant exists")
	}
	return inserted, nil
}

func (u *entitlementUC) HasLiveGrant(ctx context.Context, userID, courseID string) (bool, error) {
	_, err := u.entitlements.FindLive(ctx, nil, userID, courseID, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (u *entitlementUC) ListByUser(ctx context.Context, userID string) ([]*model.Entitlement, error) {
	return u.entitlements.ListByUser(ctx, nil, userID)
}
