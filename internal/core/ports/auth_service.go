package ports

import (
	"context"

	"github.com/playhouse/roomhub/internal/core/domain"
)

// RegisterInput carries the data needed to open an account.
type RegisterInput struct {
	Username string
	Password string
	Email    string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, *domain.Character, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Profile(ctx context.Context, userID string) (*domain.User, *domain.Character, error)
}
