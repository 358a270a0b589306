package ports

import (
	"context"

	"github.com/playhouse/roomhub/internal/core/domain"
)

// LedgerService owns user balances. Balances never go negative.
type LedgerService interface {
	Deduct(ctx context.Context, userID string, amount int64) (int64, error)
	Add(ctx context.Context, userID string, amount int64) (int64, error)
	Balance(ctx context.Context, userID string) (int64, error)
}

// InventoryService owns inventory rows and stacking.
type InventoryService interface {
	Grant(ctx context.Context, userID, itemID string, quantity int) (*domain.InventoryItem, error)
	List(ctx context.Context, userID string) ([]*domain.InventoryItem, error)
}

// BuyInput is one purchase request. RequestID deduplicates retries; when
// empty a fresh one is generated and the request is not replayable.
type BuyInput struct {
	UserID    string
	ItemID    string
	RequestID string
}

// PurchaseResult describes a purchase whose debit went through.
type PurchaseResult struct {
	RequestID     string
	Outcome       domain.PurchaseOutcome
	InventoryItem *domain.InventoryItem
	NewBalance    int64
	// Replayed is true when the result came from the attempt log.
	Replayed bool
}

// PurchaseService coordinates a debit and a grant as one buy.
//
// Rejections before the debit (unknown item, insufficient funds) return a
// nil result. Once money moved, a result is always returned, with an error
// for the rolled-back and needs-reconciliation outcomes.
type PurchaseService interface {
	Buy(ctx context.Context, input BuyInput) (*PurchaseResult, error)
	Unreconciled(ctx context.Context) ([]*domain.PurchaseAttempt, error)
}

// CatalogService exposes catalog reads and admin writes.
type CatalogService interface {
	List(ctx context.Context) ([]*domain.CatalogItem, error)
	Add(ctx context.Context, name string, price int64, stackable bool) (*domain.CatalogItem, error)
}
