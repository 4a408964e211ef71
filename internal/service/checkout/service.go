// Package checkout turns a cart snapshot into a persisted order. It owns the
// delivery-fee and coupon layers that the cart engine deliberately does not,
// and it sequences the post-creation side effects.
package checkout

import (
	"context"
	"log"
	"time"

	"tableside/internal/cart"
	"tableside/internal/domain"
	"tableside/internal/pricing"
)

type orderCreator interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
}

type couponResolver interface {
	Resolve(ctx context.Context, storeID, code string, subtotalCents, deliveryFeeCents int64, customerPhone string) (*domain.AppliedCoupon, error)
	Commit(ctx context.Context, couponID, customerPhone, orderID string) error
}

type loyaltyCommitter interface {
	CommitRedemption(ctx context.Context, customerID string, reward domain.LoyaltyReward, orderID string) error
	Accrue(ctx context.Context, storeID, customerID, phone string, totalCents int64, orderID string) error
}

type Service struct {
	orders  orderCreator
	coupons couponResolver
	loyalty loyaltyCommitter
	logger  *log.Logger
	now     func() time.Time
}

func New(orders orderCreator, coupons couponResolver, loyalty loyaltyCommitter, logger *log.Logger) *Service {
	return &Service{
		orders:  orders,
		coupons: coupons,
		loyalty: loyalty,
		logger:  logger,
		now:     time.Now,
	}
}

// SubmitInput carries everything checkout needs beyond the cart snapshot.
type SubmitInput struct {
	StoreID          string
	Snapshot         cart.Snapshot
	Service          domain.ServiceType
	PaymentMethod    string
	Address          string
	TableRef         string
	CouponCode       string
	DeliveryFeeCents int64
	// LoyaltyCustomerID is set when the snapshot carries a redeemed reward.
	LoyaltyCustomerID string
}

// Totals is the fully layered price breakdown for an order about to be
// submitted, also used by the preview endpoint.
type Totals struct {
	SubtotalCents    int64
	DeliveryFeeCents int64
	DiscountCents    int64
	TotalCents       int64
	Coupon           *domain.AppliedCoupon
}

// Quote computes the order totals without side effects: subtotal, delivery
// fee after coupon adjustments, and the stacked discounts capped so the
// total can never go negative.
func (s *Service) Quote(ctx context.Context, in SubmitInput) (*Totals, error) {
	snap := in.Snapshot
	fee := in.DeliveryFeeCents
	if in.Service != domain.ServiceDelivery {
		fee = 0
	}

	t := &Totals{SubtotalCents: snap.SubtotalCents, DeliveryFeeCents: fee}

	// Manual and loyalty discounts are already capped at the subtotal by the
	// cart engine.
	cartDiscount := snap.ManualCents + snap.LoyaltyCents

	var couponDiscount int64
	if in.CouponCode != "" {
		applied, err := s.coupons.Resolve(ctx, in.StoreID, in.CouponCode, snap.SubtotalCents, fee, snap.CustomerPhone)
		if err != nil {
			return nil, err
		}
		t.Coupon = applied
		couponDiscount = pricing.ClampDiscount(applied.SubtotalDiscountCents, snap.SubtotalCents-cartDiscount)
		if applied.FreeDelivery {
			t.DeliveryFeeCents = 0
		} else if applied.DeliveryDiscountCents > 0 {
			t.DeliveryFeeCents = fee - applied.DeliveryDiscountCents
			if t.DeliveryFeeCents < 0 {
				t.DeliveryFeeCents = 0
			}
		}
	}

	t.DiscountCents = cartDiscount + couponDiscount
	total := snap.SubtotalCents + t.DeliveryFeeCents - t.DiscountCents
	if total < 0 {
		total = 0
	}
	t.TotalCents = total
	return t, nil
}

// Submit validates the snapshot, creates the order, and then runs the
// degraded side effects (coupon usage, loyalty debit and accrual). Order
// creation either
// fully succeeds or returns an error with nothing persisted; side-effect
// failures after creation are logged and never fail the order.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*domain.Order, error) {
	snap := in.Snapshot
	if len(snap.Lines) == 0 {
		return nil, domain.Validationf("cart is empty")
	}
	if in.Service == domain.ServiceDelivery && in.Address == "" {
		return nil, domain.Validationf("delivery address required")
	}

	totals, err := s.Quote(ctx, in)
	if err != nil {
		return nil, err
	}

	now := s.now()
	order := domain.Order{
		StoreID:          in.StoreID,
		Service:          in.Service,
		PaymentMethod:    in.PaymentMethod,
		CustomerName:     snap.CustomerName,
		CustomerPhone:    snap.CustomerPhone,
		Address:          in.Address,
		TableRef:         in.TableRef,
		Items:            buildItems(snap.Lines, now),
		SubtotalCents:    totals.SubtotalCents,
		DeliveryFeeCents: totals.DeliveryFeeCents,
		DiscountCents:    totals.DiscountCents,
		TotalCents:       totals.TotalCents,
		Split:            snap.Split,
	}
	if totals.Coupon != nil {
		order.CouponCode = totals.Coupon.Coupon.Code
	}

	created, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, err
	}

	// Everything below is best-effort: the order exists, the customer gets
	// their confirmation regardless.
	if totals.Coupon != nil {
		if err := s.coupons.Commit(ctx, totals.Coupon.Coupon.ID, snap.CustomerPhone, created.ID); err != nil {
			s.logger.Printf("order %s: coupon %s usage not recorded: %v", created.ID, totals.Coupon.Coupon.Code, err)
		}
	}
	if snap.Reward != nil && in.LoyaltyCustomerID != "" {
		if err := s.loyalty.CommitRedemption(ctx, in.LoyaltyCustomerID, *snap.Reward, created.ID); err != nil {
			s.logger.Printf("order %s: loyalty redemption not recorded: %v", created.ID, err)
		}
	}
	if err := s.loyalty.Accrue(ctx, in.StoreID, in.LoyaltyCustomerID, snap.CustomerPhone, created.TotalCents, created.ID); err != nil {
		s.logger.Printf("order %s: loyalty accrual not recorded: %v", created.ID, err)
	}
	return created, nil
}

// buildItems freezes cart lines into order items with the prices in effect
// at submission time.
func buildItems(lines []domain.CartLine, now time.Time) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		item := domain.OrderItem{
			Name:           line.Item.Name,
			Quantity:       line.Quantity,
			UnitPriceCents: pricing.UnitPrice(line, now),
			TotalCents:     pricing.LineTotal(line, now),
			Notes:          line.Notes,
		}
		if line.Variation != nil {
			item.VariationName = line.Variation.Name
		}
		for _, c := range line.Complements {
			item.Modifiers = append(item.Modifiers, domain.OrderModifier{
				Name:       c.Item.Name,
				Quantity:   c.Quantity,
				PriceCents: pricing.OptionPrice(c.Item, now),
			})
		}
		items = append(items, item)
	}
	return items
}
