// Package realtime fans order events out to every connected viewer (kitchen
// boards, customer trackers) and provides the optimistic-update combinator
// used by the point of sale.
package realtime

import (
	"sync"

	"tableside/internal/domain"
)

// Hub is an in-process publish/subscribe bus. No ordering is guaranteed
// across different orders; handlers must apply events by order id against
// the authoritative store, never by arrival sequence, so redelivery and
// drops are both harmless.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	// store topic -> subscriber id -> channel
	stores map[string]map[int]chan domain.OrderEvent
	// order topic -> subscriber id -> channel
	orders map[string]map[int]chan domain.OrderEvent
}

func NewHub() *Hub {
	return &Hub{
		stores: make(map[string]map[int]chan domain.OrderEvent),
		orders: make(map[string]map[int]chan domain.OrderEvent),
	}
}

// Subscription is one viewer's attachment to a topic.
type Subscription struct {
	C      <-chan domain.OrderEvent
	cancel func()
}

// Close detaches the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.cancel()
}

const subscriberBuffer = 16

// SubscribeStore attaches to every event of a store (kitchen board).
func (h *Hub) SubscribeStore(storeID string) *Subscription {
	return h.subscribe(h.stores, storeID)
}

// SubscribeOrder attaches to one order's events (customer tracker).
func (h *Hub) SubscribeOrder(orderID string) *Subscription {
	return h.subscribe(h.orders, orderID)
}

func (h *Hub) subscribe(topics map[string]map[int]chan domain.OrderEvent, key string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	ch := make(chan domain.OrderEvent, subscriberBuffer)
	if topics[key] == nil {
		topics[key] = make(map[int]chan domain.OrderEvent)
	}
	topics[key][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs, ok := topics[key]; ok {
				delete(subs, id)
				if len(subs) == 0 {
					delete(topics, key)
				}
			}
			close(ch)
		})
	}
	return &Subscription{C: ch, cancel: cancel}
}

// Publish delivers the event to the store topic and the order topic. A full
// subscriber buffer drops the event for that subscriber rather than blocking
// the publisher; the subscriber reconciles from the store on its next read.
func (h *Hub) Publish(event domain.OrderEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.stores[event.StoreID] {
		select {
		case ch <- event:
		default:
		}
	}
	for _, ch := range h.orders[event.OrderID] {
		select {
		case ch <- event:
		default:
		}
	}
}
