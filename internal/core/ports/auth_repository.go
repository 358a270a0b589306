package ports

import (
	"context"

	"github.com/playhouse/roomhub/internal/core/domain"
)

// AuthRepository defines the interface for user account persistence.
type AuthRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Delete removes a user that never got a character.
	Delete(ctx context.Context, id string) error
}
