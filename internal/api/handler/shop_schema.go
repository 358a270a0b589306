package handler

import "github.com/playhouse/roomhub/internal/core/domain"

// AddCatalogItemRequest is the body for POST /v1/catalog.
type AddCatalogItemRequest struct {
	Name      string `json:"name"      validate:"required,min=1,max=64"`
	Price     int64  `json:"price"     validate:"required,gt=0"`
	Stackable bool   `json:"stackable"`
}

// BuyRequest is the body for POST /v1/purchases. The request id comes from
// the Idempotency-Key header.
type BuyRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

// CreditRequest is the body for POST /v1/users/:id/credit.
type CreditRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

// PurchaseResponse is returned by POST /v1/purchases.
type PurchaseResponse struct {
	RequestID  string                 `json:"request_id"`
	Outcome    domain.PurchaseOutcome `json:"outcome"`
	Item       *domain.InventoryItem  `json:"item,omitempty"`
	NewBalance int64                  `json:"new_balance"`
	Replayed   bool                   `json:"replayed,omitempty"`
}

// BalanceResponse reports a user's balance after a ledger movement.
type BalanceResponse struct {
	UserID  string `json:"user_id"`
	Balance int64  `json:"balance"`
}
