package cart

import (
	"testing"
	"time"

	"tableside/internal/domain"
)

func i64(v int64) *int64 { return &v }

func pizza() domain.CatalogItem {
	return domain.CatalogItem{
		ID:         "item-pizza",
		Name:       "Pizza Margherita",
		PriceCents: 4590,
		Active:     true,
		Origin:     domain.OriginMenu,
	}
}

func TestAddDirectAndSubtotal(t *testing.T) {
	e := New()
	line := e.AddDirect(pizza(), nil)
	if line.Quantity != 1 {
		t.Fatalf("new line quantity = %d, want 1", line.Quantity)
	}
	if got := e.Subtotal(); got != 4590 {
		t.Fatalf("subtotal = %d, want 4590", got)
	}
	if got := e.FinalTotal(); got != 4590 {
		t.Fatalf("final total = %d, want 4590", got)
	}
}

func TestStockItemBypassesPickers(t *testing.T) {
	item := domain.CatalogItem{
		ID:     "item-soda",
		Name:   "Soda can",
		Origin: domain.OriginStock,
		Variations: []domain.Variation{
			{ID: "v1", Name: "Large", PriceCents: 900},
		},
	}
	groups := []domain.OptionGroup{
		{ID: "g1", Name: "Extras", Selection: domain.SelectionMultiple},
	}
	if NeedsVariationPicker(item) {
		t.Fatal("stock item routed through variation picker")
	}
	if NeedsComplementPicker(item, groups) {
		t.Fatal("stock item routed through complement picker")
	}

	e := New()
	e.AddDirect(item, nil)
	if len(e.Lines()) != 1 {
		t.Fatalf("expected 1 line, got %d", len(e.Lines()))
	}
}

func TestNeedsComplementPickerSecondaryGroupsOnly(t *testing.T) {
	item := pizza()
	onlyPrimary := []domain.OptionGroup{{ID: "g1", Primary: true}}
	if NeedsComplementPicker(item, onlyPrimary) {
		t.Fatal("primary-only category should not open the complement picker")
	}
	withSecondary := append(onlyPrimary, domain.OptionGroup{ID: "g2"})
	if !NeedsComplementPicker(item, withSecondary) {
		t.Fatal("secondary group should open the complement picker")
	}
}

func TestConfirmVariationOverridesPrice(t *testing.T) {
	item := pizza()
	item.Variations = []domain.Variation{{ID: "v1", Name: "Grande", PriceCents: 5490}}

	e := New()
	line := e.ConfirmVariation(item, item.Variations[0])
	if line.Variation == nil || line.Variation.Name != "Grande" {
		t.Fatalf("variation not retained: %+v", line)
	}
	if got := e.Subtotal(); got != 5490 {
		t.Fatalf("subtotal = %d, want variation price 5490", got)
	}
}

func TestConfirmComplementSelectionRequiredGroup(t *testing.T) {
	item := pizza()
	groups := []domain.OptionGroup{
		{
			ID:            "g-dough",
			Name:          "Dough",
			Selection:     domain.SelectionSingle,
			Required:      true,
			MinSelections: 1,
			Items:         []domain.OptionItem{{ID: "thin", GroupID: "g-dough", Name: "Thin"}},
		},
	}

	e := New()
	sess := e.OpenComplementPicker(item, groups)

	if _, err := e.ConfirmComplementSelection(); err == nil {
		t.Fatal("expected required-group error")
	} else if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(e.Lines()) != 0 {
		t.Fatal("line added despite failed validation")
	}

	if err := sess.Toggle(groups[0].Items[0], groups[0]); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	line, err := e.ConfirmComplementSelection()
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(line.Complements) != 1 || line.Complements[0].Item.ID != "thin" {
		t.Fatalf("complements not committed: %+v", line.Complements)
	}
}

func TestPrimaryGroupsExcludedFromPicker(t *testing.T) {
	item := pizza()
	groups := []domain.OptionGroup{
		{ID: "g-size", Name: "Size", Primary: true, Required: true, MinSelections: 1},
		{ID: "g-extras", Name: "Extras", Selection: domain.SelectionMultiple},
	}
	e := New()
	e.OpenComplementPicker(item, groups)
	// The required primary group must not block confirmation.
	if _, err := e.ConfirmComplementSelection(); err != nil {
		t.Fatalf("primary group leaked into picker validation: %v", err)
	}
}

func TestUpdateQuantityRemovesAtZero(t *testing.T) {
	e := New()
	line := e.AddDirect(pizza(), nil)

	e.UpdateQuantity(line.ID, 2)
	if e.Lines()[0].Quantity != 3 {
		t.Fatalf("quantity = %d, want 3", e.Lines()[0].Quantity)
	}

	e.UpdateQuantity(line.ID, -3)
	if len(e.Lines()) != 0 {
		t.Fatal("line not removed when quantity reached zero")
	}
}

func TestRemoveLineAndNotes(t *testing.T) {
	e := New()
	l1 := e.AddDirect(pizza(), nil)
	l2 := e.AddDirect(pizza(), nil)

	e.UpdateNotes(l1.ID, "no basil")
	if e.Lines()[0].Notes != "no basil" {
		t.Fatalf("notes not set: %q", e.Lines()[0].Notes)
	}

	e.RemoveLine(l1.ID)
	if len(e.Lines()) != 1 || e.Lines()[0].ID != l2.ID {
		t.Fatalf("wrong line removed: %+v", e.Lines())
	}
}

func TestManualDiscountFixed(t *testing.T) {
	e := New()
	e.AddDirect(pizza(), nil)
	e.SetManualDiscount(&domain.ManualDiscount{Kind: domain.DiscountFixed, Value: 1000})

	if got := e.ManualDiscountAmount(); got != 1000 {
		t.Fatalf("manual discount = %d, want 1000", got)
	}
	if got := e.FinalTotal(); got != 3590 {
		t.Fatalf("final total = %d, want 3590", got)
	}
}

func TestManualDiscountPercentage(t *testing.T) {
	e := New()
	e.AddDirect(pizza(), nil)
	e.SetManualDiscount(&domain.ManualDiscount{Kind: domain.DiscountPercentage, Value: 20})

	if got := e.ManualDiscountAmount(); got != 918 {
		t.Fatalf("manual discount = %d, want 918", got)
	}
	if got := e.FinalTotal(); got != 3672 {
		t.Fatalf("final total = %d, want 3672", got)
	}
}

func TestFinalTotalNeverNegative(t *testing.T) {
	e := New()
	e.AddDirect(pizza(), nil)
	e.SetManualDiscount(&domain.ManualDiscount{Kind: domain.DiscountFixed, Value: 10000})

	if got := e.ManualDiscountAmount(); got != 4590 {
		t.Fatalf("manual discount not capped at subtotal: %d", got)
	}
	if got := e.FinalTotal(); got != 0 {
		t.Fatalf("final total = %d, want 0", got)
	}
}

func TestLoyaltyDiscountStacksAfterManual(t *testing.T) {
	e := New()
	e.AddDirect(pizza(), nil)
	e.SetManualDiscount(&domain.ManualDiscount{Kind: domain.DiscountFixed, Value: 4000})
	e.SetLoyaltyReward(&domain.LoyaltyReward{ID: "r1", DiscountCents: 1000})

	// Only 590 remains after the manual discount.
	if got := e.LoyaltyDiscountAmount(); got != 590 {
		t.Fatalf("loyalty discount = %d, want 590", got)
	}
	if got := e.FinalTotal(); got != 0 {
		t.Fatalf("final total = %d, want 0", got)
	}
}

func TestClearResetsEverythingAndIsIdempotent(t *testing.T) {
	e := New()
	e.AddDirect(pizza(), nil)
	e.SetManualDiscount(&domain.ManualDiscount{Kind: domain.DiscountFixed, Value: 500})
	e.SetLoyaltyReward(&domain.LoyaltyReward{ID: "r1", DiscountCents: 100})
	e.SetSplitPayment(&domain.SplitPayment{Parts: []domain.SplitPart{{Method: "cash", AmountCents: 1000}}})
	e.SetCustomer("Maria", "+5511999990000")

	e.Clear()
	if len(e.Lines()) != 0 || e.ManualDiscountAmount() != 0 || e.LoyaltyDiscountAmount() != 0 {
		t.Fatal("clear left cart state behind")
	}
	if e.SplitPayment() != nil {
		t.Fatal("clear left split payment behind")
	}
	if e.CustomerName() != DefaultCustomerName || e.CustomerPhone() != "" {
		t.Fatalf("clear left customer metadata: %q %q", e.CustomerName(), e.CustomerPhone())
	}

	// Second clear is a no-op but still enforces the default name.
	e.Clear()
	if e.CustomerName() != DefaultCustomerName {
		t.Fatalf("second clear changed customer name: %q", e.CustomerName())
	}
}

func TestPromotionWindowAffectsSubtotal(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC)

	item := pizza()
	item.PromoPriceCents = i64(3990)
	item.PromoStartsAt = &start
	item.PromoEndsAt = &end

	inside := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	e := NewWithClock(func() time.Time { return inside })
	e.AddDirect(item, nil)
	if got := e.Subtotal(); got != 3990 {
		t.Fatalf("promo subtotal = %d, want 3990", got)
	}

	outside := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	e2 := NewWithClock(func() time.Time { return outside })
	e2.AddDirect(item, nil)
	if got := e2.Subtotal(); got != 4590 {
		t.Fatalf("expired promo subtotal = %d, want 4590", got)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	e := New()
	e.AddDirect(pizza(), nil)
	e.SetCustomer("Maria", "11999990000")

	snap := e.Snapshot()
	e.Clear()

	if len(snap.Lines) != 1 || snap.SubtotalCents != 4590 || snap.TotalCents != 4590 {
		t.Fatalf("snapshot lost data after clear: %+v", snap)
	}
	if snap.CustomerName != "Maria" {
		t.Fatalf("snapshot customer = %q", snap.CustomerName)
	}
}

func TestRestoreRebuildsCartFromSnapshot(t *testing.T) {
	e := New()
	e.AddDirect(pizza(), nil)
	e.SetManualDiscount(&domain.ManualDiscount{Kind: domain.DiscountFixed, Value: 500})
	e.SetLoyaltyReward(&domain.LoyaltyReward{ID: "r1", DiscountCents: 100})
	e.SetCustomer("Maria", "11999990000")

	snap := e.Snapshot()
	e.Clear()
	e.Restore(snap)

	if got := e.Subtotal(); got != 4590 {
		t.Fatalf("restored subtotal = %d, want 4590", got)
	}
	if got := e.ManualDiscountAmount(); got != 500 {
		t.Fatalf("restored manual discount = %d, want 500", got)
	}
	if got := e.LoyaltyDiscountAmount(); got != 100 {
		t.Fatalf("restored loyalty discount = %d, want 100", got)
	}
	if e.CustomerName() != "Maria" || e.CustomerPhone() != "11999990000" {
		t.Fatalf("restored customer = %q %q", e.CustomerName(), e.CustomerPhone())
	}

	// The restored state is detached from the snapshot's slices.
	e.UpdateQuantity(e.Lines()[0].ID, 1)
	if snap.Lines[0].Quantity != 1 {
		t.Fatalf("restore aliased snapshot lines: quantity = %d", snap.Lines[0].Quantity)
	}
}
