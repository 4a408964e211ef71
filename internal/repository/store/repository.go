package store

import (
	"context"

	"tableside/internal/domain"
)

type Repository interface {
	GetByKey(ctx context.Context, key string) (*domain.Store, error)
	GetByID(ctx context.Context, id string) (*domain.Store, error)
}
