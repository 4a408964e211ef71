package domain

import "time"

// Status is the canonical order status. The kitchen board and the customer
// tracker each render a subset of these; the flow definitions live with the
// status machine.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusPreparing  Status = "preparing"
	StatusReady      Status = "ready"
	StatusDelivering Status = "delivering"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ServiceType is how the order reaches the customer.
type ServiceType string

const (
	ServiceDelivery ServiceType = "delivery"
	ServicePickup   ServiceType = "pickup"
	ServiceDineIn   ServiceType = "dine_in"
)

// Order is an immutable snapshot taken at submission time. Only Status and
// UpdatedAt change afterwards.
type Order struct {
	ID               string        `json:"id"`
	StoreID          string        `json:"-"`
	Sequence         int64         `json:"sequence"`
	Status           Status        `json:"status"`
	Service          ServiceType   `json:"service"`
	PaymentMethod    string        `json:"paymentMethod"`
	CustomerName     string        `json:"customerName"`
	CustomerPhone    string        `json:"customerPhone,omitempty"`
	Address          string        `json:"address,omitempty"`
	TableRef         string        `json:"tableRef,omitempty"`
	Items            []OrderItem   `json:"items"`
	SubtotalCents    int64         `json:"subtotalCents"`
	DeliveryFeeCents int64         `json:"deliveryFeeCents"`
	DiscountCents    int64         `json:"discountCents"`
	TotalCents       int64         `json:"totalCents"`
	CouponCode       string        `json:"couponCode,omitempty"`
	Split            *SplitPayment `json:"split,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

type OrderItem struct {
	ID             string          `json:"id"`
	OrderID        string          `json:"-"`
	Name           string          `json:"name"`
	VariationName  string          `json:"variationName,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPriceCents int64           `json:"unitPriceCents"`
	TotalCents     int64           `json:"totalCents"`
	Modifiers      []OrderModifier `json:"modifiers,omitempty"`
	Notes          string          `json:"notes,omitempty"`
}

// OrderModifier is a complement captured on the order snapshot.
type OrderModifier struct {
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	PriceCents int64  `json:"priceCents"`
}

// StatusChange is one row of the order status log.
type StatusChange struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	Status    Status    `json:"status"`
	ChangedBy string    `json:"changedBy,omitempty"`
	ChangedAt time.Time `json:"changedAt"`
}

// OrderEvent is the payload fanned out to realtime subscribers whenever an
// order is created or its status changes. Handlers apply it by order id, so
// redelivery is harmless.
type OrderEvent struct {
	OrderID  string    `json:"orderId"`
	StoreID  string    `json:"storeId"`
	Sequence int64     `json:"sequence"`
	Status   Status    `json:"status"`
	At       time.Time `json:"at"`
}
