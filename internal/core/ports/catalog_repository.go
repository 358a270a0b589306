package ports

import (
	"context"

	"github.com/playhouse/roomhub/internal/core/domain"
)

// CatalogRepository reads product definitions.
type CatalogRepository interface {
	Create(ctx context.Context, item *domain.CatalogItem) error
	FindByID(ctx context.Context, id string) (*domain.CatalogItem, error)
	List(ctx context.Context) ([]*domain.CatalogItem, error)
}

// InventoryRepository persists owned items.
type InventoryRepository interface {
	// FindStack returns the user's row for itemID, or domain.ErrInventoryNotFound.
	FindStack(ctx context.Context, userID, itemID string) (*domain.InventoryItem, error)
	Create(ctx context.Context, item *domain.InventoryItem) error
	Save(ctx context.Context, item *domain.InventoryItem) error
	ListByUser(ctx context.Context, userID string) ([]*domain.InventoryItem, error)
}
