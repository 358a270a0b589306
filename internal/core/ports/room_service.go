package ports

import (
	"context"

	"github.com/playhouse/roomhub/internal/core/domain"
)

// CreateRoomInput carries the data needed to host a room.
type CreateRoomInput struct {
	Name       string
	HostUserID string
	// MaxPlayers falls back to the configured default when zero.
	MaxPlayers int
}

// RoomSummary is an entry of the active-rooms listing.
type RoomSummary struct {
	Room    *domain.Room
	Members int
}

// RoomService owns room lifecycle.
type RoomService interface {
	Create(ctx context.Context, input CreateRoomInput) (*domain.Room, error)
	StartGame(ctx context.Context, roomID string) (*domain.Room, error)
	Active(ctx context.Context) ([]RoomSummary, error)
	Get(ctx context.Context, roomID string) (*domain.RoomView, error)
}

// JoinResult is the authoritative state after a join.
type JoinResult struct {
	View      *domain.RoomView
	Character *domain.Character
	// Revived is true when the join reopened a closed room.
	Revived bool
	// AlreadyMember is true for an idempotent re-join.
	AlreadyMember bool
}

// LeaveResult reports a leave. Left is false when the character was not in
// any room, which is a no-op rather than an error.
type LeaveResult struct {
	Character *domain.Character
	Room      *domain.Room
	Left      bool
	Closed    bool
}

// PresenceService moves characters in and out of rooms.
type PresenceService interface {
	Join(ctx context.Context, roomID, characterID string) (*JoinResult, error)
	Leave(ctx context.Context, characterID string) (*LeaveResult, error)
}
