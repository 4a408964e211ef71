package catalog

import (
	"context"

	"tableside/internal/domain"
)

type Repository interface {
	ListActiveItems(ctx context.Context, storeID string) ([]domain.CatalogItem, error)
	GetItem(ctx context.Context, storeID, itemID string) (*domain.CatalogItem, error)
	ListGroupsByCategory(ctx context.Context, storeID, categoryID string) ([]domain.OptionGroup, error)
	UpsertItem(ctx context.Context, item domain.CatalogItem) (*domain.CatalogItem, error)
	// ReplaceVariations swaps an item's variation list wholesale, keeping
	// the given display order.
	ReplaceVariations(ctx context.Context, itemID string, variations []domain.Variation) error
}
