package order

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"tableside/internal/domain"
	"tableside/internal/migrate"
)

func TestPostgres_CreateAndStatusFlow(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)
	storeID := insertStore(ctx, t, pool)

	repo := NewPostgres(pool)
	created, err := repo.Create(ctx, domain.Order{
		StoreID:       storeID,
		Status:        domain.StatusPending,
		Service:       domain.ServiceDelivery,
		PaymentMethod: "cash",
		CustomerName:  "Ana",
		Address:       "Rua A, 10",
		Items: []domain.OrderItem{
			{
				Name:           "Pizza Margherita",
				VariationName:  "Grande",
				Quantity:       2,
				UnitPriceCents: 4590,
				TotalCents:     9180,
				Modifiers:      []domain.OrderModifier{{Name: "Borda recheada", Quantity: 1, PriceCents: 600}},
			},
		},
		SubtotalCents:    9180,
		DeliveryFeeCents: 800,
		TotalCents:       9980,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Sequence != 1 {
		t.Fatalf("expected first sequence 1, got %d", created.Sequence)
	}
	if len(created.Items) != 1 || created.Items[0].ID == "" {
		t.Fatalf("unexpected items %+v", created.Items)
	}

	second, err := repo.Create(ctx, domain.Order{
		StoreID:       storeID,
		Status:        domain.StatusPending,
		Service:       domain.ServicePickup,
		PaymentMethod: "pix",
		CustomerName:  "Bruno",
		Items: []domain.OrderItem{
			{Name: "Refrigerante", Quantity: 1, UnitPriceCents: 700, TotalCents: 700},
		},
		SubtotalCents: 700,
		TotalCents:    700,
	})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}
	if second.Sequence != 2 {
		t.Fatalf("expected sequence 2, got %d", second.Sequence)
	}

	fetched, err := repo.GetByID(ctx, storeID, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if fetched.TotalCents != 9980 || len(fetched.Items) != 1 {
		t.Fatalf("fetched mismatch %+v", fetched)
	}
	if len(fetched.Items[0].Modifiers) != 1 || fetched.Items[0].Modifiers[0].Name != "Borda recheada" {
		t.Fatalf("modifiers not round-tripped: %+v", fetched.Items[0].Modifiers)
	}

	active, err := repo.ListActive(ctx, storeID)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active orders, got %d", len(active))
	}

	updated, err := repo.UpdateStatus(ctx, created.ID, domain.StatusPending, domain.StatusPreparing, "kitchen")
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != domain.StatusPreparing {
		t.Fatalf("expected preparing, got %s", updated.Status)
	}

	// Stale repeat of the same transition must fail the guard.
	if _, err := repo.UpdateStatus(ctx, created.ID, domain.StatusPending, domain.StatusPreparing, "kitchen"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on stale transition, got %v", err)
	}

	history, err := repo.StatusHistory(ctx, created.ID)
	if err != nil {
		t.Fatalf("StatusHistory: %v", err)
	}
	if len(history) != 2 || history[0].Status != domain.StatusPending || history[1].Status != domain.StatusPreparing {
		t.Fatalf("unexpected history %+v", history)
	}

	if _, err := repo.UpdateStatus(ctx, created.ID, domain.StatusPreparing, domain.StatusCancelled, "counter"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	active, err = repo.ListActive(ctx, storeID)
	if err != nil {
		t.Fatalf("ListActive after cancel: %v", err)
	}
	if len(active) != 1 || active[0].ID != second.ID {
		t.Fatalf("expected only the second order active, got %+v", active)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func insertStore(ctx context.Context, t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	var id string
	err := pool.QueryRow(ctx, `
INSERT INTO stores (key, name, delivery_fee_cents) VALUES (gen_random_uuid()::text, 'Loja Teste', 800)
RETURNING id::text
`).Scan(&id)
	if err != nil {
		t.Fatalf("insert store: %v", err)
	}
	return id
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `
TRUNCATE order_status_log, order_items, orders, coupon_usages, coupons,
	loyalty_transactions, loyalty_rewards, customers,
	option_items, option_groups, item_variations, catalog_items, stores
RESTART IDENTITY CASCADE
`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
