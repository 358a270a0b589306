package domain

import "time"

// PurchaseOutcome tags how a purchase saga ended once the debit went through.
type PurchaseOutcome string

const (
	OutcomeSuccess             PurchaseOutcome = "success"
	OutcomeRolledBack          PurchaseOutcome = "rolled_back"
	OutcomeNeedsReconciliation PurchaseOutcome = "needs_reconciliation"
)

// AttemptStatus is the state of a recorded purchase attempt.
type AttemptStatus string

const (
	AttemptPending             AttemptStatus = "pending"
	AttemptSucceeded           AttemptStatus = "succeeded"
	AttemptRejected            AttemptStatus = "rejected"
	AttemptRolledBack          AttemptStatus = "rolled_back"
	AttemptNeedsReconciliation AttemptStatus = "needs_reconciliation"
)

// Final reports whether the attempt committed money movement that must not
// be repeated.
func (s AttemptStatus) Final() bool {
	return s == AttemptSucceeded || s == AttemptNeedsReconciliation
}

// Retryable reports whether the attempt left no side effects behind and
// may be executed again under the same request id.
func (s AttemptStatus) Retryable() bool {
	return s == AttemptRejected || s == AttemptRolledBack
}

// PurchaseAttempt is the audit record of one buy request, keyed by RequestID.
type PurchaseAttempt struct {
	RequestID  string         `json:"request_id" bson:"_id"`
	UserID     string         `json:"user_id" bson:"user_id"`
	ItemID     string         `json:"item_id" bson:"item_id"`
	Price      int64          `json:"price" bson:"price"`
	Status     AttemptStatus  `json:"status" bson:"status"`
	Reason     string         `json:"reason,omitempty" bson:"reason,omitempty"`
	NewBalance int64          `json:"new_balance" bson:"new_balance"`
	Item       *InventoryItem `json:"item,omitempty" bson:"item,omitempty"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" bson:"updated_at"`
}
