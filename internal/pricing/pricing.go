// Package pricing holds the pure price computations shared by the storefront
// checkout and the point of sale. All functions are deterministic given the
// reference clock passed in; money is int64 cents throughout.
package pricing

import (
	"time"

	"tableside/internal/domain"
)

// windowActive reports whether a promotion window admits now. Both bounds are
// inclusive; a nil bound is open.
func windowActive(start, end *time.Time, now time.Time) bool {
	if start != nil && now.Before(*start) {
		return false
	}
	if end != nil && now.After(*end) {
		return false
	}
	return true
}

// EffectivePrice returns the promotional price of a catalog item when its
// promotion window admits now, else the base price.
func EffectivePrice(item domain.CatalogItem, now time.Time) int64 {
	if item.PromoPriceCents != nil && windowActive(item.PromoStartsAt, item.PromoEndsAt, now) {
		return *item.PromoPriceCents
	}
	return item.PriceCents
}

// OptionPrice returns the effective price of an option item. A nil price is a
// zero-cost addition, never an inherited parent price.
func OptionPrice(opt domain.OptionItem, now time.Time) int64 {
	if opt.PromoPriceCents != nil && windowActive(opt.PromoStartsAt, opt.PromoEndsAt, now) {
		return *opt.PromoPriceCents
	}
	if opt.PriceCents == nil {
		return 0
	}
	return *opt.PriceCents
}

// UnitPrice is the per-unit price of a cart line: the chosen variation's
// absolute price when one is selected (variations are not promotion-aware),
// else the root item's effective price, plus every complement at its own
// effective price times its quantity.
func UnitPrice(line domain.CartLine, now time.Time) int64 {
	var unit int64
	if line.Variation != nil {
		unit = line.Variation.PriceCents
	} else {
		unit = EffectivePrice(line.Item, now)
	}
	for _, c := range line.Complements {
		unit += OptionPrice(c.Item, now) * int64(c.Quantity)
	}
	return unit
}

// LineTotal is UnitPrice times the line quantity.
func LineTotal(line domain.CartLine, now time.Time) int64 {
	return UnitPrice(line, now) * int64(line.Quantity)
}

// PercentOf returns pct percent of amount, truncated to whole cents.
func PercentOf(amount, pct int64) int64 {
	return amount * pct / 100
}

// ClampDiscount bounds a discount at the amount it applies to, flooring the
// result at zero so a stacked discount can never produce a negative total.
func ClampDiscount(discount, amount int64) int64 {
	if discount < 0 {
		return 0
	}
	if discount > amount {
		return amount
	}
	return discount
}
