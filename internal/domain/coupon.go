package domain

import "time"

// CouponType enumerates the supported coupon discount semantics.
type CouponType string

const (
	CouponFixed      CouponType = "fixed"
	CouponPercentage CouponType = "percentage"
	// CouponFreeShipping leaves the subtotal untouched and zeroes the
	// delivery fee.
	CouponFreeShipping CouponType = "free_shipping"
	// CouponCombined applies a percentage discount and zeroes the delivery
	// fee.
	CouponCombined CouponType = "combined"
	// CouponDeliveryDiscount applies a percentage discount to the delivery
	// fee only.
	CouponDeliveryDiscount CouponType = "delivery_discount"
)

type Coupon struct {
	ID      string     `json:"id"`
	StoreID string     `json:"-"`
	Code    string     `json:"code"`
	Type    CouponType `json:"type"`
	// Value is cents for fixed coupons and whole percent for the
	// percentage-based types.
	Value            int64      `json:"value"`
	ValidFrom        *time.Time `json:"validFrom,omitempty"`
	ValidUntil       *time.Time `json:"validUntil,omitempty"`
	UsageLimit       *int       `json:"usageLimit,omitempty"`
	PerCustomerLimit *int       `json:"perCustomerLimit,omitempty"`
	UsedCount        int        `json:"usedCount"`
	MinOrderCents    int64      `json:"minOrderCents"`
	Active           bool       `json:"active"`
}

// AppliedCoupon is the computed contribution of a coupon to one checkout.
type AppliedCoupon struct {
	Coupon                Coupon `json:"coupon"`
	SubtotalDiscountCents int64  `json:"subtotalDiscountCents"`
	DeliveryDiscountCents int64  `json:"deliveryDiscountCents"`
	FreeDelivery          bool   `json:"freeDelivery"`
}

// CouponUsage ties one successful redemption to the order it produced.
type CouponUsage struct {
	ID            string    `json:"id"`
	CouponID      string    `json:"couponId"`
	CustomerPhone string    `json:"customerPhone"`
	OrderID       string    `json:"orderId"`
	UsedAt        time.Time `json:"usedAt"`
}
