package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"tableside/internal/domain"
)

// OrderEventsChannel is the NOTIFY channel the order store emits on.
const OrderEventsChannel = "order_events"

// Listener bridges Postgres NOTIFY payloads into the hub so every API
// instance sees order events regardless of which instance wrote them.
type Listener struct {
	pool   *pgxpool.Pool
	hub    *Hub
	logger *log.Logger
}

func NewListener(pool *pgxpool.Pool, hub *Hub, logger *log.Logger) *Listener {
	return &Listener{pool: pool, hub: hub, logger: logger}
}

// Run blocks listening for notifications until ctx is cancelled. The
// connection is re-acquired with backoff after any failure; missed events
// during a gap are recovered by viewers reloading from the store.
func (l *Listener) Run(ctx context.Context) error {
	for {
		if err := l.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logger.Printf("order event listener: %v, reconnecting", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+OrderEventsChannel); err != nil {
		return err
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}
		var event domain.OrderEvent
		if err := json.Unmarshal([]byte(notification.Payload), &event); err != nil {
			l.logger.Printf("order event payload unreadable: %v", err)
			continue
		}
		l.hub.Publish(event)
	}
}
