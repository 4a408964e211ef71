package domain

import "time"

// Customer is the loyalty-facing customer record, looked up by phone or
// document number.
type Customer struct {
	ID            string    `json:"id"`
	StoreID       string    `json:"-"`
	Name          string    `json:"name"`
	Phone         string    `json:"phone"`
	Document      string    `json:"document,omitempty"`
	PointsBalance int       `json:"pointsBalance"`
	CreatedAt     time.Time `json:"createdAt"`
}

type LoyaltyReward struct {
	ID            string `json:"id"`
	StoreID       string `json:"-"`
	Name          string `json:"name"`
	PointsCost    int    `json:"pointsCost"`
	DiscountCents int64  `json:"discountCents"`
	Active        bool   `json:"active"`
}

// LoyaltyTransaction is one row in the points ledger. Points are positive for
// accrual and negative for redemption.
type LoyaltyTransaction struct {
	ID         string    `json:"id"`
	CustomerID string    `json:"customerId"`
	Points     int       `json:"points"`
	RewardID   *string   `json:"rewardId,omitempty"`
	OrderID    *string   `json:"orderId,omitempty"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"createdAt"`
}
