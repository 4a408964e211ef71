package realtime

import (
	"testing"
	"time"

	"tableside/internal/domain"
)

func event(orderID, storeID string, status domain.Status) domain.OrderEvent {
	return domain.OrderEvent{
		OrderID: orderID,
		StoreID: storeID,
		Status:  status,
		At:      time.Now(),
	}
}

func recv(t *testing.T, sub *Subscription) domain.OrderEvent {
	t.Helper()
	select {
	case e := <-sub.C:
		return e
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return domain.OrderEvent{}
	}
}

func TestStoreAndOrderTopicsBothDeliver(t *testing.T) {
	hub := NewHub()
	board := hub.SubscribeStore("store-1")
	defer board.Close()
	tracker := hub.SubscribeOrder("order-1")
	defer tracker.Close()

	hub.Publish(event("order-1", "store-1", domain.StatusPreparing))

	if e := recv(t, board); e.OrderID != "order-1" {
		t.Fatalf("board got %+v", e)
	}
	if e := recv(t, tracker); e.Status != domain.StatusPreparing {
		t.Fatalf("tracker got %+v", e)
	}
}

func TestTopicsAreIsolated(t *testing.T) {
	hub := NewHub()
	other := hub.SubscribeStore("store-2")
	defer other.Close()
	tracker := hub.SubscribeOrder("order-2")
	defer tracker.Close()

	hub.Publish(event("order-1", "store-1", domain.StatusReady))

	select {
	case e := <-other.C:
		t.Fatalf("foreign store received %+v", e)
	case e := <-tracker.C:
		t.Fatalf("foreign order received %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	hub := NewHub()
	sub := hub.SubscribeStore("store-1")
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*3; i++ {
			hub.Publish(event("order-1", "store-1", domain.StatusPreparing))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
}

func TestCloseIsIdempotentAndStopsDelivery(t *testing.T) {
	hub := NewHub()
	sub := hub.SubscribeStore("store-1")
	sub.Close()
	sub.Close()

	// Publishing after close must not panic on the closed channel.
	hub.Publish(event("order-1", "store-1", domain.StatusReady))
}
