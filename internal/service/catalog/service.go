// Package catalog serves the store-scoped menu: items with their variations
// and the option groups of each category.
package catalog

import (
	"context"

	"tableside/internal/domain"
	catalogrepo "tableside/internal/repository/catalog"
)

type Service struct {
	repo catalogrepo.Repository
}

func New(repo catalogrepo.Repository) *Service {
	return &Service{repo: repo}
}

// ListItems returns the store's active items in display order.
func (s *Service) ListItems(ctx context.Context, storeID string) ([]domain.CatalogItem, error) {
	return s.repo.ListActiveItems(ctx, storeID)
}

// GetItem returns one item with its variations.
func (s *Service) GetItem(ctx context.Context, storeID, itemID string) (*domain.CatalogItem, error) {
	return s.repo.GetItem(ctx, storeID, itemID)
}

// GroupsForItem returns the option groups of an item's category in display
// order, each with its active option items. Stock items have none.
func (s *Service) GroupsForItem(ctx context.Context, storeID string, item domain.CatalogItem) ([]domain.OptionGroup, error) {
	if item.Origin == domain.OriginStock || item.CategoryID == "" {
		return nil, nil
	}
	return s.repo.ListGroupsByCategory(ctx, storeID, item.CategoryID)
}
