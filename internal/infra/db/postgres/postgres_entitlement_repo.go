package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Randipa/lmcfinal/internal/domain"
	"github.com/Randipa/lmcfinal/internal/domain/model"
	"github.com/Randipa/lmcfinal/internal/domain/ports/repository"
)

var _ repository.EntitlementRepository = (*entitlementRepo)(nil)

type entitlementRepo struct{ pool *pgxpool.Pool }

func NewEntitlementRepo(pool *pgxpool.Pool) *entitlementRepo {
	return &entitlementRepo{pool: pool}
}

// GrantIfAbsent is the single synchronization point for all grant paths.
// The NOT EXISTS subquery suppresses the common case, but under READ
// COMMITTED two concurrent transactions can both see "no live grant" before
// either commits. The uq_entitlements_cycle unique index is what actually
// excludes the double grant: the expiry is deterministic per billing cycle,
// so racing inserts collide on (user_id, course_id, expires_at) and the
// loser's ON CONFLICT DO NOTHING reports zero rows.
func (r *entitlementRepo) GrantIfAbsent(ctx context.Context, tx repository.Tx, e *model.Entitlement) (bool, error) {
	const q = `
INSERT INTO entitlements (id, user_id, course_id, source, granted_at, expires_at)
SELECT $1, $2, $3, $4, $5, $6
 WHERE NOT EXISTS (
   SELECT 1 FROM entitlements
    WHERE user_id=$2 AND course_id=$3 AND expires_at > NOW()
 )
ON CONFLICT (user_id, course_id, expires_at) DO NOTHING;`
	cmd, err := execSQL(ctx, r.pool, tx, q, e.ID, e.UserID, e.CourseID, e.Source, e.GrantedAt, e.ExpiresAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *entitlementRepo) FindLive(ctx context.Context, tx repository.Tx, userID, courseID string, now time.Time) (*model.Entitlement, error) {
	const q = `SELECT id, user_id, course_id, source, granted_at, expires_at FROM entitlements WHERE user_id=$1 AND course_id=$2 AND expires_at > $3 ORDER BY expires_at DESC LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, courseID, now)
	if err != nil {
		return nil, err
	}
	e := &model.Entitlement{}
	if err := row.Scan(&e.ID, &e.UserID, &e.CourseID, &e.Source, &e.GrantedAt, &e.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return e, nil
}

func (r *entitlementRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Entitlement, error) {
	const q = `SELECT id, user_id, course_id, source, granted_at, expires_at FROM entitlements WHERE user_id=$1 ORDER BY granted_at DESC;`
	rows, err := queryRows(ctx, r.pool, tx, q, userID)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Entitlement
	for rows.Next() {
		e := &model.Entitlement{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.Source, &e.GrantedAt, &e.ExpiresAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, e)
	}
	return out, nil
}
