package ports

import (
	"context"

	"github.com/playhouse/roomhub/internal/core/domain"
)

// PurchaseRepository is the durable purchase-attempt log keyed by request id.
type PurchaseRepository interface {
	// Insert records a new attempt; domain.ErrDuplicateRequest if the
	// request id is already known.
	Insert(ctx context.Context, a *domain.PurchaseAttempt) error
	FindByRequestID(ctx context.Context, requestID string) (*domain.PurchaseAttempt, error)
	Save(ctx context.Context, a *domain.PurchaseAttempt) error
	ListByStatus(ctx context.Context, status domain.AttemptStatus) ([]*domain.PurchaseAttempt, error)
}
