package store

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

const storeColumns = `id::text, key, name, delivery_fee_cents, auto_print, print_destination, created_at`

func (r *postgresRepo) GetByKey(ctx context.Context, key string) (*domain.Store, error) {
	return r.fetch(ctx, `SELECT `+storeColumns+` FROM stores WHERE key = $1`, key)
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Store, error) {
	return r.fetch(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id)
}

func (r *postgresRepo) fetch(ctx context.Context, q string, arg interface{}) (*domain.Store, error) {
	var s domain.Store
	err := r.pool.QueryRow(ctx, q, arg).Scan(
		&s.ID,
		&s.Key,
		&s.Name,
		&s.DeliveryFeeCents,
		&s.AutoPrint,
		&s.PrintDestination,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
