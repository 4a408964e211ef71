package domain

import "time"

// Store is one restaurant tenant. Its settings drive the delivery fee layer
// and the kitchen auto-print behavior.
type Store struct {
	ID               string    `json:"id"`
	Key              string    `json:"key"`
	Name             string    `json:"name"`
	DeliveryFeeCents int64     `json:"deliveryFeeCents"`
	AutoPrint        bool      `json:"autoPrint"`
	PrintDestination string    `json:"printDestination,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}
