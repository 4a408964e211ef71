package order

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tableside/internal/domain"
	"tableside/internal/realtime"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

const orderColumns = `
id::text, store_id::text, sequence, status, service, payment_method,
customer_name, COALESCE(customer_phone, ''), COALESCE(address, ''),
COALESCE(table_ref, ''), subtotal_cents, delivery_fee_cents, discount_cents,
total_cents, COALESCE(coupon_code, ''), split, created_at, updated_at
`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o     domain.Order
		split []byte
	)
	err := row.Scan(
		&o.ID,
		&o.StoreID,
		&o.Sequence,
		&o.Status,
		&o.Service,
		&o.PaymentMethod,
		&o.CustomerName,
		&o.CustomerPhone,
		&o.Address,
		&o.TableRef,
		&o.SubtotalCents,
		&o.DeliveryFeeCents,
		&o.DiscountCents,
		&o.TotalCents,
		&o.CouponCode,
		&split,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(split) > 0 {
		var sp domain.SplitPayment
		if err := json.Unmarshal(split, &sp); err != nil {
			return nil, err
		}
		o.Split = &sp
	}
	return &o, nil
}

func (r *postgresRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// The per-store counter on stores hands out sequence numbers without a
	// table scan and serializes concurrent submissions on the row lock.
	var seq int64
	err = tx.QueryRow(ctx, `
UPDATE stores SET order_seq = order_seq + 1 WHERE id = $1 RETURNING order_seq
`, o.StoreID).Scan(&seq)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var split []byte
	if o.Split != nil {
		split, err = json.Marshal(o.Split)
		if err != nil {
			return nil, err
		}
	}

	created := o
	created.Sequence = seq
	err = tx.QueryRow(ctx, `
INSERT INTO orders (
	store_id, sequence, status, service, payment_method,
	customer_name, customer_phone, address, table_ref,
	subtotal_cents, delivery_fee_cents, discount_cents, total_cents,
	coupon_code, split
)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''),
	$10, $11, $12, $13, NULLIF($14, ''), $15)
RETURNING id::text, created_at, updated_at
`,
		o.StoreID, seq, o.Status, o.Service, o.PaymentMethod,
		o.CustomerName, o.CustomerPhone, o.Address, o.TableRef,
		o.SubtotalCents, o.DeliveryFeeCents, o.DiscountCents, o.TotalCents,
		o.CouponCode, split,
	).Scan(&created.ID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		return nil, err
	}

	created.Items = make([]domain.OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		var mods []byte
		if len(it.Modifiers) > 0 {
			mods, err = json.Marshal(it.Modifiers)
			if err != nil {
				return nil, err
			}
		}
		saved := it
		saved.OrderID = created.ID
		err = tx.QueryRow(ctx, `
INSERT INTO order_items (order_id, name, variation_name, quantity, unit_price_cents, total_cents, modifiers, notes)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, NULLIF($8, ''))
RETURNING id::text
`,
			created.ID, it.Name, it.VariationName, it.Quantity,
			it.UnitPriceCents, it.TotalCents, mods, it.Notes,
		).Scan(&saved.ID)
		if err != nil {
			return nil, err
		}
		created.Items = append(created.Items, saved)
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO order_status_log (order_id, status, changed_by) VALUES ($1, $2, $3)
`, created.ID, created.Status, "system"); err != nil {
		return nil, err
	}

	if err := notifyEvent(ctx, tx, created); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, storeID, id string) (*domain.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE store_id = $1 AND id = $2`
	o, err := scanOrder(r.pool.QueryRow(ctx, q, storeID, id))
	if err != nil {
		return nil, err
	}
	o.Items, err = r.listItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListActive(ctx context.Context, storeID string) ([]domain.Order, error) {
	q := `
SELECT ` + orderColumns + `
FROM orders
WHERE store_id = $1 AND status NOT IN ('delivered', 'completed', 'cancelled')
ORDER BY sequence
`
	rows, err := r.pool.Query(ctx, q, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items, err = r.listItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, orderID string, from, to domain.Status, changedBy string) (*domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	q := `
UPDATE orders
SET status = $3, updated_at = NOW()
WHERE id = $1 AND status = $2
RETURNING ` + orderColumns
	o, err := scanOrder(tx.QueryRow(ctx, q, orderID, from, to))
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO order_status_log (order_id, status, changed_by) VALUES ($1, $2, NULLIF($3, ''))
`, orderID, to, changedBy); err != nil {
		return nil, err
	}

	if err := notifyEvent(ctx, tx, *o); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	o.Items, err = r.listItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) StatusHistory(ctx context.Context, orderID string) ([]domain.StatusChange, error) {
	const q = `
SELECT id::text, order_id::text, status, COALESCE(changed_by, ''), changed_at
FROM order_status_log
WHERE order_id = $1
ORDER BY changed_at
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []domain.StatusChange
	for rows.Next() {
		var c domain.StatusChange
		if err := rows.Scan(&c.ID, &c.OrderID, &c.Status, &c.ChangedBy, &c.ChangedAt); err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}
	return changes, rows.Err()
}

func (r *postgresRepo) listItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const q = `
SELECT id::text, order_id::text, name, COALESCE(variation_name, ''), quantity,
       unit_price_cents, total_cents, modifiers, COALESCE(notes, '')
FROM order_items
WHERE order_id = $1
ORDER BY id
`
	rows, err := r.pool.Query(ctx, q, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			it   domain.OrderItem
			mods []byte
		)
		if err := rows.Scan(&it.ID, &it.OrderID, &it.Name, &it.VariationName, &it.Quantity,
			&it.UnitPriceCents, &it.TotalCents, &mods, &it.Notes); err != nil {
			return nil, err
		}
		if len(mods) > 0 {
			if err := json.Unmarshal(mods, &it.Modifiers); err != nil {
				return nil, err
			}
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// notifyEvent rides the order transaction so subscribers only ever see
// committed state.
func notifyEvent(ctx context.Context, tx pgx.Tx, o domain.Order) error {
	payload, err := json.Marshal(domain.OrderEvent{
		OrderID:  o.ID,
		StoreID:  o.StoreID,
		Sequence: o.Sequence,
		Status:   o.Status,
		At:       time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `SELECT pg_notify($1, $2)`, realtime.OrderEventsChannel, string(payload))
	return err
}
