package ports

import (
	"context"

	"github.com/playhouse/roomhub/internal/core/domain"
)

// CharacterRepository persists characters. Room membership is answered
// from here: a room's members are the characters pointing at it.
type CharacterRepository interface {
	Create(ctx context.Context, c *domain.Character) error
	FindByID(ctx context.Context, id string) (*domain.Character, error)
	FindByUserID(ctx context.Context, userID string) (*domain.Character, error)
	// SetRoom overwrites the character's room reference ("" clears it).
	SetRoom(ctx context.Context, id, roomID string) error
	ListByRoom(ctx context.Context, roomID string) ([]*domain.Character, error)
	CountByRoom(ctx context.Context, roomID string) (int64, error)
}
