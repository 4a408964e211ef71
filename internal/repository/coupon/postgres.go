package coupon

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tableside/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) Repository {
	return &postgresRepo{pool: pool}
}

func (r *postgresRepo) GetByCode(ctx context.Context, storeID, code string) (*domain.Coupon, error) {
	const q = `
SELECT id::text, store_id::text, code, type, value, valid_from, valid_until,
       usage_limit, per_customer_limit, used_count, min_order_cents, active
FROM coupons
WHERE store_id = $1 AND UPPER(code) = UPPER($2)
`
	var c domain.Coupon
	err := r.pool.QueryRow(ctx, q, storeID, code).Scan(
		&c.ID,
		&c.StoreID,
		&c.Code,
		&c.Type,
		&c.Value,
		&c.ValidFrom,
		&c.ValidUntil,
		&c.UsageLimit,
		&c.PerCustomerLimit,
		&c.UsedCount,
		&c.MinOrderCents,
		&c.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) CountUsesByCustomer(ctx context.Context, couponID, phone, normalizedPhone string) (int, error) {
	const q = `
SELECT COUNT(*)
FROM coupon_usages
WHERE coupon_id = $1
  AND (customer_phone = $2 OR regexp_replace(customer_phone, '\D', '', 'g') = $3)
`
	var count int
	if err := r.pool.QueryRow(ctx, q, couponID, phone, normalizedPhone).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// RegisterUse is the reserve-and-commit half of coupon redemption: the
// counter increment only succeeds while it is still below the cap, so two
// concurrent redemptions at the boundary cannot both be admitted.
func (r *postgresRepo) RegisterUse(ctx context.Context, couponID, phone, orderID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE coupons
SET used_count = used_count + 1
WHERE id = $1 AND (usage_limit IS NULL OR used_count < usage_limit)
`, couponID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.Conflictf("coupon usage limit reached")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO coupon_usages (coupon_id, customer_phone, order_id)
VALUES ($1, $2, $3)
`, couponID, phone, orderID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
