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

var _ repository.PaymentRepository = (*paymentRepo)(nil)

type paymentRepo struct{ pool *pgxpool.Pool }

func NewPaymentRepo(pool *pgxpool.Pool) *paymentRepo {
	return &paymentRepo{pool: pool}
}

const paymentColumns = `id, order_id, user_id, course_id, amount, currency, phone_number, status, payment_id, hash, meta, created_at, updated_at, completed_at`

func scanPayment(row pgx.Row) (*model.PaymentAttempt, error) {
	p := &model.PaymentAttempt{}
	if err := row.Scan(&p.ID, &p.OrderID, &p.UserID, &p.CourseID, &p.Amount, &p.Currency, &p.PhoneNumber, &p.Status, &p.PaymentID, &p.Hash, &p.Meta, &p.CreatedAt, &p.UpdatedAt, &p.CompletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *paymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.PaymentAttempt) error {
	const q = `
INSERT INTO payment_attempts (
  id, order_id, user_id, course_id, amount, currency, phone_number, status, payment_id, hash, meta, created_at, updated_at, completed_at
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14
) ON CONFLICT (id) DO UPDATE SET
  status=$8, payment_id=$9, meta=$11, updated_at=$13, completed_at=$14;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.OrderID, p.UserID, p.CourseID, p.Amount, p.Currency, p.PhoneNumber, p.Status, p.PaymentID, p.Hash, p.Meta, p.CreatedAt, p.UpdatedAt, p.CompletedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *paymentRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.PaymentAttempt, error) {
	q := `SELECT ` + paymentColumns + ` FROM payment_attempts WHERE order_id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", orderID)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) FindByPaymentID(ctx context.Context, tx repository.Tx, paymentID string) (*model.PaymentAttempt, error) {
	q := `SELECT ` + paymentColumns + ` FROM payment_attempts WHERE payment_id=$1 LIMIT 1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", paymentID)
	if err != nil {
		return nil, err
	}
	return scanPayment(row)
}

func (r *paymentRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.PaymentAttempt, error) {
	const q = `SELECT ` + paymentColumns + ` FROM payment_attempts WHERE user_id=$1 ORDER BY created_at DESC;`
	return r.list(ctx, tx, q, userID)
}

func (r *paymentRepo) ListAll(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.PaymentAttempt, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + paymentColumns + ` FROM payment_attempts ORDER BY created_at DESC OFFSET $1 LIMIT $2;`
	return r.list(ctx, tx, q, offset, limit)
}

func (r *paymentRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.PaymentAttempt, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.PaymentAttempt
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (r *paymentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, orderID string, status model.PaymentStatus, paymentID *string, completedAt *time.Time, meta map[string]interface{}) error {
	const q = `
UPDATE payment_attempts
   SET status=$2,
       payment_id=COALESCE($3, payment_id),
       completed_at=COALESCE($4, completed_at),
       meta=meta || COALESCE($5, '{}'::jsonb),
       updated_at=NOW()
 WHERE order_id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, orderID, status, paymentID, completedAt, meta)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

// UpdateStatusIfNotTerminal updates only while the stored status can still move.
func (r *paymentRepo) UpdateStatusIfNotTerminal(ctx context.Context, tx repository.Tx, orderID string, status model.PaymentStatus, paymentID *string, completedAt *time.Time, meta map[string]interface{}) (bool, error) {
	const q = `
UPDATE payment_attempts
   SET status=$2,
       payment_id=COALESCE($3, payment_id),
       completed_at=COALESCE($4, completed_at),
       meta=meta || COALESCE($5, '{}'::jsonb),
       updated_at=NOW()
 WHERE order_id=$1
   AND status IN ('pending','unknown');`
	cmd, err := execSQL(ctx, r.pool, tx, q, orderID, status, paymentID, completedAt, meta)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *paymentRepo) MergeMeta(ctx context.Context, tx repository.Tx, orderID string, meta map[string]interface{}) error {
	const q = `UPDATE payment_attempts SET meta=meta || $2, updated_at=NOW() WHERE order_id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, orderID, meta)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
