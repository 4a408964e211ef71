package coupon

import (
	"context"

	"tableside/internal/domain"
)

type Repository interface {
	GetByCode(ctx context.Context, storeID, code string) (*domain.Coupon, error)
	CountUsesByCustomer(ctx context.Context, couponID, phone, normalizedPhone string) (int, error)
	// RegisterUse increments the usage counter guarded by the usage limit and
	// records the per-customer row in one transaction. A ConflictError means
	// the cap was reached between validation and commit.
	RegisterUse(ctx context.Context, couponID, phone, orderID string) error
}
