// Package loyalty handles point balances and reward redemption against the
// points ledger.
package loyalty

import (
	"context"
	"errors"

	"tableside/internal/domain"
)

type loyaltyRepo interface {
	GetCustomerByPhone(ctx context.Context, storeID, phone, normalizedPhone string) (*domain.Customer, error)
	GetCustomerByID(ctx context.Context, customerID string) (*domain.Customer, error)
	// Debit subtracts points only while the balance covers them and writes
	// the ledger row in the same transaction. ErrNotFound means the guard
	// failed.
	Debit(ctx context.Context, customerID string, points int, rewardID, orderID string) error
	// Credit adds points and writes the ledger row.
	Credit(ctx context.Context, customerID string, points int, orderID, reason string) error
	GetReward(ctx context.Context, storeID, rewardID string) (*domain.LoyaltyReward, error)
}

type Service struct {
	repo loyaltyRepo
}

func New(repo loyaltyRepo) *Service {
	return &Service{repo: repo}
}

// Balance looks a customer up by phone (raw or digit-normalized form).
func (s *Service) Balance(ctx context.Context, storeID, phone string) (*domain.Customer, error) {
	c, err := s.repo.GetCustomerByPhone(ctx, storeID, phone, digits(phone))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.Validationf("no loyalty account for %s", phone)
		}
		return nil, domain.Integration("lookup customer", err)
	}
	return c, nil
}

// Validate checks that the customer can afford the reward. The reward is
// only referenced here; the cart engine applies its discount and the debit
// happens after the order exists.
func (s *Service) Validate(ctx context.Context, storeID, phone, rewardID string) (*domain.LoyaltyReward, *domain.Customer, error) {
	reward, err := s.repo.GetReward(ctx, storeID, rewardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.Validationf("reward not found")
		}
		return nil, nil, domain.Integration("lookup reward", err)
	}
	if !reward.Active {
		return nil, nil, domain.Validationf("reward %s is no longer available", reward.Name)
	}
	customer, err := s.Balance(ctx, storeID, phone)
	if err != nil {
		return nil, nil, err
	}
	if customer.PointsBalance < reward.PointsCost {
		return nil, nil, domain.Validationf("not enough points for %s", reward.Name)
	}
	return reward, customer, nil
}

// CommitRedemption debits the points and logs the transaction after the
// order is durably created.
func (s *Service) CommitRedemption(ctx context.Context, customerID string, reward domain.LoyaltyReward, orderID string) error {
	if err := s.repo.Debit(ctx, customerID, reward.PointsCost, reward.ID, orderID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Conflictf("points balance no longer covers %s", reward.Name)
		}
		return domain.Integration("debit points", err)
	}
	return nil
}

// PointsPerCurrencyUnit converts an order total into earned points: one
// point per whole currency unit paid.
const PointsPerCurrencyUnit = 100

// Accrue credits the points earned by a paid order. The customer is resolved
// by id when the session already knows it, by phone otherwise; a phone with
// no loyalty account is not an error, accrual only applies to enrolled
// customers.
func (s *Service) Accrue(ctx context.Context, storeID, customerID, phone string, totalCents int64, orderID string) error {
	points := int(totalCents / PointsPerCurrencyUnit)
	if points <= 0 {
		return nil
	}

	var (
		customer *domain.Customer
		err      error
	)
	switch {
	case customerID != "":
		customer, err = s.repo.GetCustomerByID(ctx, customerID)
	case phone != "":
		customer, err = s.repo.GetCustomerByPhone(ctx, storeID, phone, digits(phone))
	default:
		return nil
	}
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return domain.Integration("lookup customer", err)
	}

	if err := s.repo.Credit(ctx, customer.ID, points, orderID, "accrual"); err != nil {
		return domain.Integration("credit points", err)
	}
	return nil
}

func digits(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			out = append(out, r)
		}
	}
	return string(out)
}
