// Package coupon validates coupon codes against their business constraints
// and computes the discount each type contributes to a checkout.
package coupon

import (
	"context"
	"errors"
	"strings"
	"time"

	"tableside/internal/domain"
	"tableside/internal/pricing"
)

type couponRepo interface {
	GetByCode(ctx context.Context, storeID, code string) (*domain.Coupon, error)
	CountUsesByCustomer(ctx context.Context, couponID, phone, normalizedPhone string) (int, error)
	// RegisterUse increments the global usage counter only while it is below
	// the cap and records the per-customer usage row in the same transaction.
	// It returns a ConflictError when the cap is already reached.
	RegisterUse(ctx context.Context, couponID, phone, orderID string) error
}

type Service struct {
	repo couponRepo
	now  func() time.Time
}

func New(repo couponRepo) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Resolve validates code for a store against the checkout's subtotal and
// delivery fee, returning the applied coupon or the first failing constraint.
// Constraints are checked in a fixed order and short-circuit.
func (s *Service) Resolve(ctx context.Context, storeID, code string, subtotalCents, deliveryFeeCents int64, customerPhone string) (*domain.AppliedCoupon, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.Validationf("coupon code required")
	}

	c, err := s.repo.GetByCode(ctx, storeID, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Validationf("coupon %q not found", code)
		}
		return nil, domain.Integration("lookup coupon", err)
	}
	if !c.Active {
		return nil, domain.Validationf("coupon %q not found", code)
	}

	now := s.now()
	if c.ValidFrom != nil && now.Before(*c.ValidFrom) {
		return nil, domain.Validationf("coupon %q is not valid yet", code)
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return nil, domain.Validationf("coupon %q has expired", code)
	}

	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return nil, domain.Conflictf("coupon %q has reached its usage limit", code)
	}

	if c.PerCustomerLimit != nil && customerPhone != "" {
		uses, err := s.repo.CountUsesByCustomer(ctx, c.ID, customerPhone, digits(customerPhone))
		if err != nil {
			return nil, domain.Integration("count coupon uses", err)
		}
		if uses >= *c.PerCustomerLimit {
			return nil, domain.Conflictf("coupon %q already used the maximum number of times", code)
		}
	}

	if subtotalCents < c.MinOrderCents {
		return nil, domain.Validationf("order minimum for coupon %q not reached", code)
	}

	applied := &domain.AppliedCoupon{Coupon: *c}
	switch c.Type {
	case domain.CouponFixed:
		applied.SubtotalDiscountCents = pricing.ClampDiscount(c.Value, subtotalCents)
	case domain.CouponPercentage:
		applied.SubtotalDiscountCents = pricing.ClampDiscount(pricing.PercentOf(subtotalCents, c.Value), subtotalCents)
	case domain.CouponFreeShipping:
		applied.FreeDelivery = true
	case domain.CouponCombined:
		applied.SubtotalDiscountCents = pricing.ClampDiscount(pricing.PercentOf(subtotalCents, c.Value), subtotalCents)
		applied.FreeDelivery = true
	case domain.CouponDeliveryDiscount:
		applied.DeliveryDiscountCents = pricing.ClampDiscount(pricing.PercentOf(deliveryFeeCents, c.Value), deliveryFeeCents)
	default:
		return nil, domain.Validationf("unknown coupon type %q", c.Type)
	}
	return applied, nil
}

// Commit records a successful redemption once the order is durably created.
// It must never run before order creation.
func (s *Service) Commit(ctx context.Context, couponID, customerPhone, orderID string) error {
	if err := s.repo.RegisterUse(ctx, couponID, customerPhone, orderID); err != nil {
		if domain.IsConflict(err) {
			return err
		}
		return domain.Integration("register coupon use", err)
	}
	return nil
}

// digits strips every non-digit rune so phone numbers stored with formatting
// still match.
func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
