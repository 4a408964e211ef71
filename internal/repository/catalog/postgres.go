package catalog

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

const itemColumns = `id::text, store_id::text, category_id::text, name, description, price_cents,
promo_price_cents, promo_starts_at, promo_ends_at, active, origin, sort_order`

func (r *postgresRepo) ListActiveItems(ctx context.Context, storeID string) ([]domain.CatalogItem, error) {
	const q = `
SELECT ` + itemColumns + `
FROM catalog_items
WHERE store_id = $1 AND active = TRUE
ORDER BY sort_order ASC, name ASC
`
	rows, err := r.pool.Query(ctx, q, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		variations, err := r.listVariations(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Variations = variations
	}
	return items, nil
}

func (r *postgresRepo) GetItem(ctx context.Context, storeID, itemID string) (*domain.CatalogItem, error) {
	const q = `
SELECT ` + itemColumns + `
FROM catalog_items
WHERE store_id = $1 AND id = $2
`
	row := r.pool.QueryRow(ctx, q, storeID, itemID)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	variations, err := r.listVariations(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	item.Variations = variations
	return item, nil
}

func (r *postgresRepo) listVariations(ctx context.Context, itemID string) ([]domain.Variation, error) {
	const q = `
SELECT id::text, item_id::text, name, price_cents
FROM item_variations
WHERE item_id = $1
ORDER BY sort_order ASC, name ASC
`
	rows, err := r.pool.Query(ctx, q, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Variation
	for rows.Next() {
		var v domain.Variation
		if err := rows.Scan(&v.ID, &v.ItemID, &v.Name, &v.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *postgresRepo) ListGroupsByCategory(ctx context.Context, storeID, categoryID string) ([]domain.OptionGroup, error) {
	const q = `
SELECT id::text, store_id::text, category_id::text, name, selection, required, min_selections, max_selections, is_primary, sort_order
FROM option_groups
WHERE store_id = $1 AND category_id = $2
ORDER BY sort_order ASC
`
	rows, err := r.pool.Query(ctx, q, storeID, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []domain.OptionGroup
	for rows.Next() {
		var g domain.OptionGroup
		if err := rows.Scan(
			&g.ID,
			&g.StoreID,
			&g.CategoryID,
			&g.Name,
			&g.Selection,
			&g.Required,
			&g.MinSelections,
			&g.MaxSelections,
			&g.Primary,
			&g.SortOrder,
		); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range groups {
		items, err := r.listOptionItems(ctx, groups[i].ID)
		if err != nil {
			return nil, err
		}
		groups[i].Items = items
	}
	return groups, nil
}

func (r *postgresRepo) listOptionItems(ctx context.Context, groupID string) ([]domain.OptionItem, error) {
	const q = `
SELECT id::text, group_id::text, name, price_cents, promo_price_cents, promo_starts_at, promo_ends_at, active, sort_order
FROM option_items
WHERE group_id = $1 AND active = TRUE
ORDER BY sort_order ASC, name ASC
`
	rows, err := r.pool.Query(ctx, q, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OptionItem
	for rows.Next() {
		var o domain.OptionItem
		if err := rows.Scan(
			&o.ID,
			&o.GroupID,
			&o.Name,
			&o.PriceCents,
			&o.PromoPriceCents,
			&o.PromoStartsAt,
			&o.PromoEndsAt,
			&o.Active,
			&o.SortOrder,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *postgresRepo) UpsertItem(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error) {
	const q = `
INSERT INTO catalog_items (store_id, category_id, name, description, price_cents, promo_price_cents, promo_starts_at, promo_ends_at, active, origin, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (store_id, name) DO UPDATE SET
    category_id = EXCLUDED.category_id,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    promo_price_cents = EXCLUDED.promo_price_cents,
    promo_starts_at = EXCLUDED.promo_starts_at,
    promo_ends_at = EXCLUDED.promo_ends_at,
    active = EXCLUDED.active,
    origin = EXCLUDED.origin,
    sort_order = EXCLUDED.sort_order
RETURNING id::text
`
	var categoryID interface{}
	if item.CategoryID != "" {
		categoryID = item.CategoryID
	}
	var id string
	err := r.pool.QueryRow(ctx, q,
		item.StoreID,
		categoryID,
		item.Name,
		item.Description,
		item.PriceCents,
		item.PromoPriceCents,
		item.PromoStartsAt,
		item.PromoEndsAt,
		item.Active,
		item.Origin,
		item.SortOrder,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	out := item
	out.ID = id
	return &out, nil
}

// scanItem works for both QueryRow and rows.Next via the pgx.Row interface.
func scanItem(row pgx.Row) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	var categoryID *string
	if err := row.Scan(
		&item.ID,
		&item.StoreID,
		&categoryID,
		&item.Name,
		&item.Description,
		&item.PriceCents,
		&item.PromoPriceCents,
		&item.PromoStartsAt,
		&item.PromoEndsAt,
		&item.Active,
		&item.Origin,
		&item.SortOrder,
	); err != nil {
		return nil, err
	}
	if categoryID != nil {
		item.CategoryID = *categoryID
	}
	return &item, nil
}

func (r *postgresRepo) ReplaceVariations(ctx context.Context, itemID string, variations []domain.Variation) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM item_variations WHERE item_id = $1`, itemID); err != nil {
		return err
	}
	for i, v := range variations {
		if _, err := tx.Exec(ctx, `
INSERT INTO item_variations (item_id, name, price_cents, sort_order)
VALUES ($1, $2, $3, $4)
`, itemID, v.Name, v.PriceCents, i); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
