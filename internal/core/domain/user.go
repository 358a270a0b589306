package domain

import "time"

const (
	RoleAdmin  = "admin"
	RolePlayer = "player"
)

// User models an account. Balance is the in-game currency and is only
// changed through the ledger.
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email,omitempty" bson:"email,omitempty"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Role         string    `json:"role" bson:"role"`
	Balance      int64     `json:"balance" bson:"balance"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// CanAfford reports whether the balance covers amount.
func (u *User) CanAfford(amount int64) bool {
	return u.Balance >= amount
}
