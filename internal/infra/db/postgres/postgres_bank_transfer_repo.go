package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Randipa/lmcfinal/internal/domain"
	"github.com/Randipa/lmcfinal/internal/domain/model"
	"github.com/Randipa/lmcfinal/internal/domain/ports/repository"
)

var _ repository.BankTransferRepository = (*bankTransferRepo)(nil)

type bankTransferRepo struct{ pool *pgxpool.Pool }

func NewBankTransferRepo(pool *pgxpool.Pool) *bankTransferRepo {
	return &bankTransferRepo{pool: pool}
}

const bankTransferColumns = `id, user_id, course_id, slip_url, status, created_at`

func scanBankTransfer(row pgx.Row) (*model.BankTransferRequest, error) {
	b := &model.BankTransferRequest{}
	if err := row.Scan(&b.ID, &b.UserID, &b.CourseID, &b.SlipURL, &b.Status, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return b, nil
}

func (r *bankTransferRepo) Save(ctx context.Context, tx repository.Tx, b *model.BankTransferRequest) error {
	const q = `
INSERT INTO bank_transfer_requests (id, user_id, course_id, slip_url, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET status=$5;`
	_, err := execSQL(ctx, r.pool, tx, q, b.ID, b.UserID, b.CourseID, b.SlipURL, b.Status, b.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *bankTransferRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.BankTransferRequest, error) {
	q := `SELECT ` + bankTransferColumns + ` FROM bank_transfer_requests WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", id)
	if err != nil {
		return nil, err
	}
	return scanBankTransfer(row)
}

func (r *bankTransferRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.BankTransferRequest, error) {
	const q = `SELECT ` + bankTransferColumns + ` FROM bank_transfer_requests WHERE user_id=$1 ORDER BY created_at DESC;`
	return r.list(ctx, tx, q, userID)
}

func (r *bankTransferRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.BankTransferStatus) ([]*model.BankTransferRequest, error) {
	const q = `SELECT ` + bankTransferColumns + ` FROM bank_transfer_requests WHERE status=$1 ORDER BY created_at DESC;`
	return r.list(ctx, tx, q, status)
}

func (r *bankTransferRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.BankTransferRequest, error) {
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

	var out []*model.BankTransferRequest
	for rows.Next() {
		b, err := scanBankTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// UpdateStatusIfPending guards the pending -> approved transition at the
// storage level so two admins approving concurrently grant only once.
func (r *bankTransferRepo) UpdateStatusIfPending(ctx context.Context, tx repository.Tx, id string, status model.BankTransferStatus) (bool, error) {
	const q = `UPDATE bank_transfer_requests SET status=$2 WHERE id=$1 AND status='pending';`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, status)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}
