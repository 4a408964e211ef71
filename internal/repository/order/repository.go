package order

import (
	"context"

	"tableside/internal/domain"
)

type Repository interface {
	// Create writes the order and its items in one transaction, assigns the
	// store-scoped sequence number and emits the creation event on the
	// realtime channel before committing.
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, storeID, id string) (*domain.Order, error)
	// ListActive returns the store's non-terminal orders, oldest first.
	ListActive(ctx context.Context, storeID string) ([]domain.Order, error)
	// UpdateStatus performs the transition only while the stored status still
	// equals from, returning ErrNotFound when the guard fails. The status log
	// row and the realtime notification ride the same transaction.
	UpdateStatus(ctx context.Context, orderID string, from, to domain.Status, changedBy string) (*domain.Order, error)
	StatusHistory(ctx context.Context, orderID string) ([]domain.StatusChange, error)
}
