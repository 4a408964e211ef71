package loyalty

import (
	"context"

	"tableside/internal/domain"
)

type Repository interface {
	GetCustomerByPhone(ctx context.Context, storeID, phone, normalizedPhone string) (*domain.Customer, error)
	GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)
	GetReward(ctx context.Context, storeID, rewardID string) (*domain.LoyaltyReward, error)
	ListRewards(ctx context.Context, storeID string) ([]domain.LoyaltyReward, error)
	// Debit subtracts points only while the balance covers them and writes the
	// ledger row in the same transaction. ErrNotFound means the balance guard
	// failed.
	Debit(ctx context.Context, customerID string, points int, rewardID, orderID string) error
	// Credit adds points and writes the ledger row.
	Credit(ctx context.Context, customerID string, points int, orderID, reason string) error
}
