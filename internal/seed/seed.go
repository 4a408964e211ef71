package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type itemSeed struct {
	Category   string
	Name       string
	Desc       string
	PriceCents int64
	Promo      *int64
	Variations []variationSeed
}

type variationSeed struct {
	Name       string
	PriceCents int64
}

type groupSeed struct {
	Category      string
	Name          string
	Selection     string
	Required      bool
	MinSelections int
	MaxSelections *int
	Primary       bool
	Options       []optionSeed
}

type optionSeed struct {
	Name       string
	PriceCents *int64
}

type couponSeed struct {
	Code          string
	Type          string
	Value         int64
	UsageLimit    *int
	PerCustomer   *int
	MinOrderCents int64
}

// Apply inserts demo data for manual testing. It is idempotent via ON CONFLICT.
func Apply(ctx context.Context, pool *pgxpool.Pool) error {
	storeID, err := ensureStore(ctx, pool, "demo", "Cantina Demo")
	if err != nil {
		return fmt.Errorf("ensure store: %w", err)
	}

	promo := int64(3990)
	items := []itemSeed{
		{
			Category: "pizzas", Name: "Pizza Margherita",
			Desc:       "Molho de tomate, mussarela e manjericao",
			PriceCents: 4590,
			Variations: []variationSeed{
				{Name: "Pequena", PriceCents: 3590},
				{Name: "Grande", PriceCents: 5590},
			},
		},
		{
			Category: "pizzas", Name: "Pizza Calabresa",
			Desc:       "Calabresa fatiada com cebola",
			PriceCents: 4790, Promo: &promo,
			Variations: []variationSeed{
				{Name: "Pequena", PriceCents: 3790},
				{Name: "Grande", PriceCents: 5790},
			},
		},
		{
			Category: "burgers", Name: "Hamburguer da Casa",
			Desc:       "Blend 180g, queijo e molho especial",
			PriceCents: 2890,
		},
		{
			Category: "", Name: "Refrigerante Lata",
			PriceCents: 700,
		},
	}

	four := 4
	one := 1
	groups := []groupSeed{
		{
			Category: "pizzas", Name: "Tamanho", Selection: "single",
			Required: true, MinSelections: 1, MaxSelections: &one, Primary: true,
			Options: []optionSeed{{Name: "Tradicional"}, {Name: "Gigante"}},
		},
		{
			Category: "pizzas", Name: "Adicionais", Selection: "multiple",
			MaxSelections: &four,
			Options: []optionSeed{
				{Name: "Borda recheada", PriceCents: cents(600)},
				{Name: "Mussarela extra", PriceCents: cents(450)},
			},
		},
		{
			Category: "burgers", Name: "Ponto da carne", Selection: "single",
			Required: true, MinSelections: 1, MaxSelections: &one,
			Options: []optionSeed{{Name: "Ao ponto"}, {Name: "Bem passado"}},
		},
		{
			Category: "burgers", Name: "Extras", Selection: "multiple",
			MaxSelections: &four,
			Options: []optionSeed{
				{Name: "Bacon", PriceCents: cents(400)},
				{Name: "Ovo", PriceCents: cents(200)},
			},
		},
	}

	ten := 10
	two := 2
	coupons := []couponSeed{
		{Code: "BEMVINDO10", Type: "percentage", Value: 10, PerCustomer: &one},
		{Code: "DEZREAIS", Type: "fixed", Value: 1000, MinOrderCents: 3000},
		{Code: "FRETEGRATIS", Type: "free_shipping", UsageLimit: &ten},
		{Code: "MEIAENTREGA", Type: "delivery_discount", Value: 50},
		{Code: "COMBO", Type: "combined", Value: 15, UsageLimit: &ten, PerCustomer: &two, MinOrderCents: 5000},
	}

	for _, it := range items {
		if err := upsertItem(ctx, pool, storeID, it); err != nil {
			return fmt.Errorf("upsert item %s: %w", it.Name, err)
		}
	}
	for _, g := range groups {
		if err := upsertGroup(ctx, pool, storeID, g); err != nil {
			return fmt.Errorf("upsert group %s: %w", g.Name, err)
		}
	}
	for _, cp := range coupons {
		if err := upsertCoupon(ctx, pool, storeID, cp); err != nil {
			return fmt.Errorf("upsert coupon %s: %w", cp.Code, err)
		}
	}
	if err := seedLoyalty(ctx, pool, storeID); err != nil {
		return fmt.Errorf("seed loyalty: %w", err)
	}

	return nil
}

func cents(v int64) *int64 { return &v }

func ensureStore(ctx context.Context, pool *pgxpool.Pool, key, name string) (string, error) {
	const q = `
INSERT INTO stores (key, name, delivery_fee_cents, auto_print, print_destination)
VALUES ($1, $2, 800, TRUE, 'kitchen')
ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name
RETURNING id::text
`
	var id string
	if err := pool.QueryRow(ctx, q, key, name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func upsertItem(ctx context.Context, pool *pgxpool.Pool, storeID string, it itemSeed) error {
	origin := "menu"
	if it.Category == "" {
		origin = "stock"
	}
	var promoStarts, promoEnds *time.Time
	if it.Promo != nil {
		from := time.Now().Add(-time.Hour)
		until := time.Now().Add(30 * 24 * time.Hour)
		promoStarts, promoEnds = &from, &until
	}
	const q = `
INSERT INTO catalog_items (store_id, origin, category_id, name, description, price_cents, promo_price_cents, promo_starts_at, promo_ends_at, active)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, TRUE)
ON CONFLICT (store_id, name) DO UPDATE
SET description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    promo_price_cents = EXCLUDED.promo_price_cents,
    promo_starts_at = EXCLUDED.promo_starts_at,
    promo_ends_at = EXCLUDED.promo_ends_at
RETURNING id::text
`
	var itemID string
	err := pool.QueryRow(ctx, q, storeID, origin, it.Category, it.Name, it.Desc,
		it.PriceCents, it.Promo, promoStarts, promoEnds).Scan(&itemID)
	if err != nil {
		return err
	}

	for i, v := range it.Variations {
		if _, err := pool.Exec(ctx, `
INSERT INTO item_variations (item_id, name, price_cents, sort_order)
SELECT $1, $2, $3, $4
WHERE NOT EXISTS (SELECT 1 FROM item_variations WHERE item_id = $1 AND name = $2)
`, itemID, v.Name, v.PriceCents, i); err != nil {
			return err
		}
	}
	return nil
}

func upsertGroup(ctx context.Context, pool *pgxpool.Pool, storeID string, g groupSeed) error {
	var groupID string
	err := pool.QueryRow(ctx, `
SELECT id::text FROM option_groups WHERE store_id = $1 AND category_id = $2 AND name = $3
`, storeID, g.Category, g.Name).Scan(&groupID)
	if err != nil {
		err = pool.QueryRow(ctx, `
INSERT INTO option_groups (store_id, category_id, name, selection, required, min_selections, max_selections, is_primary)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id::text
`, storeID, g.Category, g.Name, g.Selection, g.Required, g.MinSelections, g.MaxSelections, g.Primary).Scan(&groupID)
		if err != nil {
			return err
		}
	}

	for i, o := range g.Options {
		if _, err := pool.Exec(ctx, `
INSERT INTO option_items (group_id, name, price_cents, active, sort_order)
SELECT $1, $2, $3, TRUE, $4
WHERE NOT EXISTS (SELECT 1 FROM option_items WHERE group_id = $1 AND name = $2)
`, groupID, o.Name, o.PriceCents, i); err != nil {
			return err
		}
	}
	return nil
}

func upsertCoupon(ctx context.Context, pool *pgxpool.Pool, storeID string, cp couponSeed) error {
	const q = `
INSERT INTO coupons (store_id, code, type, value, usage_limit, per_customer_limit, min_order_cents, active)
VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)
ON CONFLICT (store_id, code) DO UPDATE
SET type = EXCLUDED.type,
    value = EXCLUDED.value,
    usage_limit = EXCLUDED.usage_limit,
    per_customer_limit = EXCLUDED.per_customer_limit,
    min_order_cents = EXCLUDED.min_order_cents
`
	_, err := pool.Exec(ctx, q, storeID, cp.Code, cp.Type, cp.Value, cp.UsageLimit, cp.PerCustomer, cp.MinOrderCents)
	return err
}

func seedLoyalty(ctx context.Context, pool *pgxpool.Pool, storeID string) error {
	if _, err := pool.Exec(ctx, `
INSERT INTO customers (store_id, name, phone, points_balance)
VALUES ($1, 'Cliente Demo', '11999990000', 500)
ON CONFLICT (store_id, phone) DO UPDATE SET name = EXCLUDED.name
`, storeID); err != nil {
		return err
	}
	_, err := pool.Exec(ctx, `
INSERT INTO loyalty_rewards (store_id, name, points_cost, discount_cents, active)
SELECT $1, 'Desconto 15 reais', 300, 1500, TRUE
WHERE NOT EXISTS (SELECT 1 FROM loyalty_rewards WHERE store_id = $1 AND name = 'Desconto 15 reais')
`, storeID)
	return err
}
