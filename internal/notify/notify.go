// Package notify defines the dispatcher contracts for kitchen printing and
// customer notification. The core only decides when a side effect fires and
// with what payload; transports implement these interfaces.
package notify

import (
	"context"
	"strconv"

	"tableside/internal/domain"
)

// Ticket is the structured payload handed to a print dispatcher: the order
// snapshot flattened into printable lines with formatted amounts.
type Ticket struct {
	OrderID       string       `json:"orderId"`
	Sequence      int64        `json:"sequence"`
	CustomerName  string       `json:"customerName"`
	CustomerPhone string       `json:"customerPhone,omitempty"`
	Service       string       `json:"service"`
	Address       string       `json:"address,omitempty"`
	TableRef      string       `json:"tableRef,omitempty"`
	PaymentMethod string       `json:"paymentMethod"`
	Items         []TicketItem `json:"items"`
	Subtotal      string       `json:"subtotal"`
	DeliveryFee   string       `json:"deliveryFee"`
	Discount      string       `json:"discount"`
	Total         string       `json:"total"`
}

type TicketItem struct {
	Quantity  int      `json:"quantity"`
	Name      string   `json:"name"`
	Modifiers []string `json:"modifiers,omitempty"`
	Notes     string   `json:"notes,omitempty"`
	Total     string   `json:"total"`
}

// BuildTicket builds the print payload from an order snapshot.
func BuildTicket(o domain.Order) Ticket {
	items := make([]TicketItem, 0, len(o.Items))
	for _, it := range o.Items {
		name := it.Name
		if it.VariationName != "" {
			name = name + " (" + it.VariationName + ")"
		}
		var mods []string
		for _, m := range it.Modifiers {
			label := m.Name
			if m.Quantity > 1 {
				label = label + " x" + strconv.Itoa(m.Quantity)
			}
			mods = append(mods, label)
		}
		items = append(items, TicketItem{
			Quantity:  it.Quantity,
			Name:      name,
			Modifiers: mods,
			Notes:     it.Notes,
			Total:     domain.FormatCents(it.TotalCents),
		})
	}
	return Ticket{
		OrderID:       o.ID,
		Sequence:      o.Sequence,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Service:       string(o.Service),
		Address:       o.Address,
		TableRef:      o.TableRef,
		PaymentMethod: o.PaymentMethod,
		Items:         items,
		Subtotal:      domain.FormatCents(o.SubtotalCents),
		DeliveryFee:   domain.FormatCents(o.DeliveryFeeCents),
		Discount:      domain.FormatCents(o.DiscountCents),
		Total:         domain.FormatCents(o.TotalCents),
	}
}

// Printer dispatches a ticket to a destination device. The returned error's
// message is shown verbatim to the operator.
type Printer interface {
	Print(ctx context.Context, destination string, t Ticket) error
}

// Notifier tells the customer about a status change.
type Notifier interface {
	Notify(ctx context.Context, o domain.Order, status domain.Status) error
}
