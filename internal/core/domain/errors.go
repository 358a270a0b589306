package domain

import "errors"

// Not found.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrCharacterNotFound = errors.New("character not found")
	ErrRoomNotFound      = errors.New("room not found")
	ErrItemNotFound      = errors.New("catalog item not found")
	ErrInventoryNotFound = errors.New("inventory item not found")
	ErrPurchaseNotFound  = errors.New("purchase attempt not found")
)

// Caller preconditions.
var (
	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrDuplicateRequest   = errors.New("purchase request already recorded")
	ErrForbidden          = errors.New("access forbidden")
)

// Business-rule rejections. These are expected outcomes, not bugs.
var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrRoomFull             = errors.New("room is full")
	ErrRoomClosed           = errors.New("room is closed")
	ErrAlreadyInAnotherRoom = errors.New("character is already in another room")
)

// Purchase saga failures.
var (
	// ErrGrantFailed means the item could not be granted and the payment
	// was refunded.
	ErrGrantFailed = errors.New("item grant failed, payment refunded")
	// ErrCompensationFailed means the payment was taken but the item was not
	// granted and the refund did not go through. Needs reconciliation.
	ErrCompensationFailed = errors.New("payment taken but item not granted")
)

// ErrBusy is returned when a per-key lock could not be acquired in time.
// The operation had no effect and may be retried.
var ErrBusy = errors.New("resource busy, retry later")

// IsRetryable reports whether err is a contention failure the caller can
// simply retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBusy)
}
