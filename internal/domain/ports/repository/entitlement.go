package repository

import (
	"context"
	"time"

	"github.com/Randipa/lmcfinal/internal/domain/model"
)

type EntitlementRepository interface {
	// GrantIfAbsent inserts the entitlement unless a live grant already exists
	// for (user, course). It must be a single atomic conditional write, not a
	// read-then-insert: concurrent callback delivery, client verification,
	// bank-transfer approval and admin override all converge here. Returns
	// false when an existing live grant suppressed the insert.
	GrantIfAbsent(ctx context.Context, tx Tx, e *model.Entitlement) (bool, error)
	FindLive(ctx context.Context, tx Tx, userID, courseID string, now time.Time) (*model.Entitlement, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Entitlement, error)
}
