package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/Randipa/lmcfinal/internal/domain"
	"github.com/Randipa/lmcfinal/internal/domain/model"
	"github.com/Randipa/lmcfinal/internal/domain/ports/repository"
)

var _ repository.ShopOrderRepository = (*shopOrderRepo)(nil)

type shopOrderRepo struct{ pool *pgxpool.Pool }

func NewShopOrderRepo(pool *pgxpool.Pool) *shopOrderRepo {
	return &shopOrderRepo{pool: pool}
}

func (r *shopOrderRepo) Save(ctx context.Context, tx repository.Tx, o *model.ShopOrder) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return domain.ErrInvalidArgument
	}
	const q = `
INSERT INTO shop_orders (id, order_id, user_id, items, total_cents, status, payment_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET status=$6, payment_id=$7, updated_at=$9;`
	if _, err := execSQL(ctx, r.pool, tx, q, o.ID, o.OrderID, o.UserID, items, o.TotalCents, o.Status, o.PaymentID, o.CreatedAt, o.UpdatedAt); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *shopOrderRepo) FindByOrderID(ctx context.Context, tx repository.Tx, orderID string) (*model.ShopOrder, error) {
	const q = `SELECT id, order_id, user_id, items, total_cents, status, payment_id, created_at, updated_at FROM shop_orders WHERE order_id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, orderID)
	if err != nil {
		return nil, err
	}
	o := &model.ShopOrder{}
	var items []byte
	if err := row.Scan(&o.ID, &o.OrderID, &o.UserID, &items, &o.TotalCents, &o.Status, &o.PaymentID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
	}
	return o, nil
}

func (r *shopOrderRepo) UpdateStatus(ctx context.Context, tx repository.Tx, orderID string, status model.ShopOrderStatus, paymentID *string) error {
	const q = `UPDATE shop_orders SET status=$2, payment_id=COALESCE($3, payment_id), updated_at=NOW() WHERE order_id=$1;`
	if _, err := execSQL(ctx, r.pool, tx, q, orderID, status, paymentID); err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}
