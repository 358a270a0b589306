package ports

import (
	"context"

	"github.com/playhouse/roomhub/internal/core/domain"
)

// UserRepository is the ledger's view of user rows.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// SetBalance overwrites the stored balance. Callers hold the user lock.
	SetBalance(ctx context.Context, id string, balance int64) error
}
