package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/playhouse/roomhub/internal/core/domain"
	"github.com/playhouse/roomhub/internal/core/ports"
)

// InventoryService grants catalog items to users.
type InventoryService struct {
	catalog   ports.CatalogRepository
	inventory ports.InventoryRepository
	locker    ports.Locker
	log       zerolog.Logger
}

func NewInventoryService(catalog ports.CatalogRepository, inventory ports.InventoryRepository, locker ports.Locker, log zerolog.Logger) *InventoryService {
	return &InventoryService{catalog: catalog, inventory: inventory, locker: locker, log: log}
}

// Grant gives quantity units of itemID to the user. A stackable item the
// user already owns is incremented in place; anything else gets a new row.
func (s *InventoryService) Grant(ctx context.Context, userID, itemID string, quantity int) (*domain.InventoryItem, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("grant: %w", domain.ErrInvalidAmount)
	}

	item, err := s.catalog.FindByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("grant: %w", err)
	}

	ctx, release, err := s.locker.Acquire(ctx, inventoryKey(userID))
	if err != nil {
		return nil, fmt.Errorf("grant: %w", err)
	}
	defer release()

	now := time.Now().UTC()

	if item.Stackable {
		stack, err := s.inventory.FindStack(ctx, userID, itemID)
		switch {
		case err == nil:
			stack.Quantity += quantity
			stack.UpdatedAt = now
			if err := s.inventory.Save(ctx, stack); err != nil {
				return nil, fmt.Errorf("grant: save stack: %w", err)
			}
			s.log.Debug().Str("user_id", userID).Str("item_id", itemID).Int("quantity", stack.Quantity).Msg("stack incremented")
			return stack, nil
		case !errors.Is(err, domain.ErrInventoryNotFound):
			return nil, fmt.Errorf("grant: %w", err)
		}
	}

	row := &domain.InventoryItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		ItemID:    itemID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.inventory.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("grant: create row: %w", err)
	}
	s.log.Debug().Str("user_id", userID).Str("item_id", itemID).Str("inventory_id", row.ID).Msg("item granted")
	return row, nil
}

// List returns everything the user owns.
func (s *InventoryService) List(ctx context.Context, userID string) ([]*domain.InventoryItem, error) {
	items, err := s.inventory.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list inventory: %w", err)
	}
	return items, nil
}
