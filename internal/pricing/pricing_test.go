package pricing

import (
	"testing"
	"time"

	"tableside/internal/domain"
)

func i64(v int64) *int64 { return &v }

func ts(v string) *time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestEffectivePricePromotionWindow(t *testing.T) {
	item := domain.CatalogItem{
		PriceCents:      4590,
		PromoPriceCents: i64(3990),
		PromoStartsAt:   ts("2024-03-01T00:00:00Z"),
		PromoEndsAt:     ts("2024-03-31T23:59:59Z"),
	}

	cases := []struct {
		name string
		now  string
		want int64
	}{
		{"before start", "2024-02-29T23:59:59Z", 4590},
		{"exactly at start", "2024-03-01T00:00:00Z", 3990},
		{"inside window", "2024-03-15T12:00:00Z", 3990},
		{"exactly at end", "2024-03-31T23:59:59Z", 3990},
		{"after end", "2024-04-01T00:00:00Z", 4590},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now, _ := time.Parse(time.RFC3339, tc.now)
			if got := EffectivePrice(item, now); got != tc.want {
				t.Fatalf("EffectivePrice = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestEffectivePriceOpenBounds(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	item := domain.CatalogItem{PriceCents: 2000, PromoPriceCents: i64(1500)}
	if got := EffectivePrice(item, now); got != 1500 {
		t.Fatalf("unbounded promo: got %d, want 1500", got)
	}

	item.PromoStartsAt = ts("2024-01-01T00:00:00Z")
	if got := EffectivePrice(item, now); got != 1500 {
		t.Fatalf("open end: got %d, want 1500", got)
	}

	item.PromoPriceCents = nil
	if got := EffectivePrice(item, now); got != 2000 {
		t.Fatalf("no promo price: got %d, want 2000", got)
	}
}

func TestOptionPriceNilIsZero(t *testing.T) {
	now := time.Now()
	if got := OptionPrice(domain.OptionItem{}, now); got != 0 {
		t.Fatalf("nil price option: got %d, want 0", got)
	}
	if got := OptionPrice(domain.OptionItem{PriceCents: i64(350)}, now); got != 350 {
		t.Fatalf("priced option: got %d, want 350", got)
	}
}

func TestUnitPriceVariationOverridesRoot(t *testing.T) {
	now := time.Now()
	line := domain.CartLine{
		Item:      domain.CatalogItem{PriceCents: 4590, PromoPriceCents: i64(3990)},
		Quantity:  2,
		Variation: &domain.Variation{Name: "Grande", PriceCents: 5490},
	}
	if got := UnitPrice(line, now); got != 5490 {
		t.Fatalf("variation price not used: got %d, want 5490", got)
	}
	if got := LineTotal(line, now); got != 10980 {
		t.Fatalf("line total: got %d, want 10980", got)
	}
}

func TestLineTotalWithComplements(t *testing.T) {
	now := time.Now()
	line := domain.CartLine{
		Item:     domain.CatalogItem{PriceCents: 4590},
		Quantity: 2,
		Complements: []domain.ComplementSelection{
			{Item: domain.OptionItem{Name: "Extra cheese", PriceCents: i64(300)}, Quantity: 2},
			{Item: domain.OptionItem{Name: "Oregano"}, Quantity: 1},
		},
	}
	// (4590 + 300*2 + 0) * 2
	if got := LineTotal(line, now); got != 10380 {
		t.Fatalf("line total: got %d, want 10380", got)
	}
}

func TestClampDiscount(t *testing.T) {
	if got := ClampDiscount(10000, 4590); got != 4590 {
		t.Fatalf("oversized discount not capped: got %d", got)
	}
	if got := ClampDiscount(-5, 4590); got != 0 {
		t.Fatalf("negative discount not floored: got %d", got)
	}
	if got := ClampDiscount(1000, 4590); got != 1000 {
		t.Fatalf("in-range discount changed: got %d", got)
	}
}

func TestPercentOf(t *testing.T) {
	if got := PercentOf(4590, 20); got != 918 {
		t.Fatalf("20%% of 45.90: got %d, want 918", got)
	}
}
