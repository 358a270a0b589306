package domain

import "time"

// Character is the in-world avatar of a user (one per user). RoomID points
// at the room the character currently occupies; empty means none.
type Character struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Name      string    `json:"name" bson:"name"`
	RoomID    string    `json:"room_id,omitempty" bson:"room_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// InRoom reports whether the character currently occupies any room.
func (c *Character) InRoom() bool {
	return c.RoomID != ""
}
