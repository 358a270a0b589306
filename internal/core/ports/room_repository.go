package ports

import (
	"context"

	"github.com/playhouse/roomhub/internal/core/domain"
)

// RoomRepository persists rooms (without their members).
type RoomRepository interface {
	Create(ctx context.Context, r *domain.Room) error
	FindByID(ctx context.Context, id string) (*domain.Room, error)
	// Save overwrites the stored room (last write wins).
	Save(ctx context.Context, r *domain.Room) error
	ListByStatus(ctx context.Context, status domain.RoomStatus) ([]*domain.Room, error)
}
