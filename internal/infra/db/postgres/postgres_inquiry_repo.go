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

var _ repository.InquiryRepository = (*inquiryRepo)(nil)

type inquiryRepo struct{ pool *pgxpool.Pool }

func NewInquiryRepo(pool *pgxpool.Pool) *inquiryRepo {
	return &inquiryRepo{pool: pool}
}

const inquiryColumns = `id, user_id, first_name, last_name, phone_number, course_id, message, status, created_at`

func scanInquiry(row pgx.Row) (*model.Inquiry, error) {
	i := &model.Inquiry{}
	if err := row.Scan(&i.ID, &i.UserID, &i.FirstName, &i.LastName, &i.PhoneNumber, &i.CourseID, &i.Message, &i.Status, &i.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return i, nil
}

func (r *inquiryRepo) Save(ctx context.Context, tx repository.Tx, i *model.Inquiry) error {
	const q = `
INSERT INTO inquiries (id, user_id, first_name, last_name, phone_number, course_id, message, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET user_id=$2, status=$8;`
	_, err := execSQL(ctx, r.pool, tx, q, i.ID, i.UserID, i.FirstName, i.LastName, i.PhoneNumber, i.CourseID, i.Message, i.Status, i.CreatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *inquiryRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Inquiry, error) {
	q := `SELECT ` + inquiryColumns + ` FROM inquiries WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	row, err := pickRow(ctx, r.pool, tx, q+";", id)
	if err != nil {
		return nil, err
	}
	return scanInquiry(row)
}

func (r *inquiryRepo) FindOpenByUser(ctx context.Context, tx repository.Tx, userID, courseID string) (*model.Inquiry, error) {
	const q = `SELECT ` + inquiryColumns + ` FROM inquiries WHERE user_id=$1 AND course_id=$2 AND status IN ('pending','approved') LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, courseID)
	if err != nil {
		return nil, err
	}
	return scanInquiry(row)
}

func (r *inquiryRepo) FindOpenByPhone(ctx context.Context, tx repository.Tx, phone, courseID string) (*model.Inquiry, error) {
	const q = `SELECT ` + inquiryColumns + ` FROM inquiries WHERE phone_number=$1 AND course_id=$2 AND status IN ('pending','approved') LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, phone, courseID)
	if err != nil {
		return nil, err
	}
	return scanInquiry(row)
}

func (r *inquiryRepo) FindApproved(ctx context.Context, tx repository.Tx, userID, courseID string) (*model.Inquiry, error) {
	const q = `SELECT ` + inquiryColumns + ` FROM inquiries WHERE user_id=$1 AND course_id=$2 AND status='approved' LIMIT 1;`
	row, err := pickRow(ctx, r.pool, tx, q, userID, courseID)
	if err != nil {
		return nil, err
	}
	return scanInquiry(row)
}

func (r *inquiryRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Inquiry, error) {
	const q = `SELECT ` + inquiryColumns + ` FROM inquiries WHERE user_id=$1 ORDER BY created_at DESC;`
	return r.list(ctx, tx, q, userID)
}

func (r *inquiryRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.InquiryStatus) ([]*model.Inquiry, error) {
	const q = `SELECT ` + inquiryColumns + ` FROM inquiries WHERE status=$1 ORDER BY created_at DESC;`
	return r.list(ctx, tx, q, status)
}

func (r *inquiryRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Inquiry, error) {
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

	var out []*model.Inquiry
	for rows.Next() {
		i, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}

func (r *inquiryRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, status model.InquiryStatus) error {
	const q = `UPDATE inquiries SET status=$2 WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, status)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *inquiryRepo) SetUser(ctx context.Context, tx repository.Tx, id, userID string) error {
	const q = `UPDATE inquiries SET user_id=$2 WHERE id=$1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, userID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *inquiryRepo) MarkPaid(ctx context.Context, tx repository.Tx, userID, courseID string) error {
	const q = `UPDATE inquiries SET status='paid' WHERE user_id=$1 AND course_id=$2 AND status='approved';`
	_, err := execSQL(ctx, r.pool, tx, q, userID, courseID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
