package loyalty

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

const customerColumns = `id::text, store_id::text, name, phone, COALESCE(document, ''), points_balance, created_at`

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.StoreID, &c.Name, &c.Phone, &c.Document, &c.PointsBalance, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *postgresRepo) GetCustomerByPhone(ctx context.Context, storeID, phone, normalizedPhone string) (*domain.Customer, error) {
	q := `
SELECT ` + customerColumns + `
FROM customers
WHERE store_id = $1
  AND (phone = $2 OR regexp_replace(phone, '\D', '', 'g') = $3)
`
	return scanCustomer(r.pool.QueryRow(ctx, q, storeID, phone, normalizedPhone))
}

func (r *postgresRepo) GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return scanCustomer(r.pool.QueryRow(ctx, q, customerID))
}

func (r *postgresRepo) GetReward(ctx context.Context, storeID, rewardID string) (*domain.LoyaltyReward, error) {
	const q = `
SELECT id::text, store_id::text, name, points_cost, discount_cents, active
FROM loyalty_rewards
WHERE store_id = $1 AND id = $2
`
	var rw domain.LoyaltyReward
	err := r.pool.QueryRow(ctx, q, storeID, rewardID).Scan(
		&rw.ID, &rw.StoreID, &rw.Name, &rw.PointsCost, &rw.DiscountCents, &rw.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rw, nil
}

func (r *postgresRepo) ListRewards(ctx context.Context, storeID string) ([]domain.LoyaltyReward, error) {
	const q = `
SELECT id::text, store_id::text, name, points_cost, discount_cents, active
FROM loyalty_rewards
WHERE store_id = $1 AND active
ORDER BY points_cost
`
	rows, err := r.pool.Query(ctx, q, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rewards []domain.LoyaltyReward
	for rows.Next() {
		var rw domain.LoyaltyReward
		if err := rows.Scan(&rw.ID, &rw.StoreID, &rw.Name, &rw.PointsCost, &rw.DiscountCents, &rw.Active); err != nil {
			return nil, err
		}
		rewards = append(rewards, rw)
	}
	return rewards, rows.Err()
}

// Debit guards on the current balance so a stale redemption can never drive
// points negative.
func (r *postgresRepo) Debit(ctx context.Context, customerID string, points int, rewardID, orderID string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
UPDATE customers
SET points_balance = points_balance - $2
WHERE id = $1 AND points_balance >= $2
`, customerID, points)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO loyalty_transactions (customer_id, points, reward_id, order_id, reason)
VALUES ($1, $2, $3, $4, 'redemption')
`, customerID, -points, rewardID, orderID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *postgresRepo) Credit(ctx context.Context, customerID string, points int, orderID, reason string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
UPDATE customers SET points_balance = points_balance + $2 WHERE id = $1
`, customerID, points); err != nil {
		return err
	}

	var order *string
	if orderID != "" {
		order = &orderID
	}
	if _, err := tx.Exec(ctx, `
INSERT INTO loyalty_transactions (customer_id, points, order_id, reason)
VALUES ($1, $2, $3, $4)
`, customerID, points, order, reason); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
