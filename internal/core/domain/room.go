package domain

import (
	"fmt"
	"time"
)

// RoomStatus represents the lifecycle state of a room.
type RoomStatus string

const (
	StatusWaiting RoomStatus = "waiting"
	StatusInGame  RoomStatus = "in_game"
	StatusClosed  RoomStatus = "closed"
)

// DefaultMaxPlayers is used when a room is created without a capacity.
const DefaultMaxPlayers = 4

// validTransitions defines the allowed room lifecycle transitions.
// in_game is terminal.
var validTransitions = map[RoomStatus][]RoomStatus{
	StatusWaiting: {StatusInGame, StatusClosed},
	StatusClosed:  {StatusWaiting},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s RoomStatus) CanTransitionTo(next RoomStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Room is a hosted space characters can join. Its members are not stored on
// the room: they are the characters whose RoomID points here.
type Room struct {
	ID         string     `json:"id" bson:"_id"`
	Name       string     `json:"name" bson:"name"`
	HostUserID string     `json:"host_user_id" bson:"host_user_id"`
	Status     RoomStatus `json:"status" bson:"status"`
	MaxPlayers int        `json:"max_players" bson:"max_players"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" bson:"updated_at"`
}

// NewRoom returns a room in the waiting state.
func NewRoom(id, name, hostUserID string, maxPlayers int, now time.Time) *Room {
	if maxPlayers <= 0 {
		maxPlayers = DefaultMaxPlayers
	}
	return &Room{
		ID:         id,
		Name:       name,
		HostUserID: hostUserID,
		Status:     StatusWaiting,
		MaxPlayers: maxPlayers,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// TransitionTo moves the room to next, or fails with ErrInvalidTransition.
func (r *Room) TransitionTo(next RoomStatus, now time.Time) error {
	if !r.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w (from %s to %s)", ErrInvalidTransition, r.Status, next)
	}
	r.Status = next
	r.UpdatedAt = now
	return nil
}

// Close transitions an empty room to closed. Rooms with members cannot close.
func (r *Room) Close(members int, now time.Time) error {
	if members > 0 {
		return fmt.Errorf("%w (room %s still has %d members)", ErrInvalidTransition, r.ID, members)
	}
	return r.TransitionTo(StatusClosed, now)
}

// Revive reopens a closed room for a joining character. Only empty rooms
// are revived.
func (r *Room) Revive(members int, now time.Time) error {
	if members > 0 {
		return ErrRoomClosed
	}
	return r.TransitionTo(StatusWaiting, now)
}

// HasSeatFor reports whether a room with the given occupancy can take one more.
func (r *Room) HasSeatFor(members int) bool {
	return members < r.MaxPlayers
}

// RoomView is a room together with its current members.
type RoomView struct {
	Room    *Room        `json:"room"`
	Members []*Character `json:"members"`
}

// Occupancy returns the number of members.
func (v *RoomView) Occupancy() int {
	return len(v.Members)
}

// HasMember reports whether characterID is among the members.
func (v *RoomView) HasMember(characterID string) bool {
	for _, m := range v.Members {
		if m.ID == characterID {
			return true
		}
	}
	return false
}
