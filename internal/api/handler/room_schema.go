package handler

import "github.com/playhouse/roomhub/internal/core/domain"

// CreateRoomRequest is the body for POST /v1/rooms. A zero MaxPlayers
// selects the server default.
type CreateRoomRequest struct {
	Name       string `json:"name"        validate:"required,min=1,max=64"`
	MaxPlayers int    `json:"max_players" validate:"omitempty,min=1,max=64"`
}

// RoomResponse is a room together with its members.
type RoomResponse struct {
	*domain.Room
	Members []*domain.Character `json:"members"`
}

// ActiveRoomResponse is one entry of GET /v1/rooms.
type ActiveRoomResponse struct {
	*domain.Room
	Occupancy int `json:"occupancy"`
}

// JoinResponse is returned by POST /v1/rooms/:id/join.
type JoinResponse struct {
	Room          RoomResponse `json:"room"`
	Revived       bool         `json:"revived,omitempty"`
	AlreadyMember bool         `json:"already_member,omitempty"`
}

// LeaveResponse is returned by POST /v1/presence/leave.
type LeaveResponse struct {
	Left       bool   `json:"left"`
	RoomID     string `json:"room_id,omitempty"`
	RoomClosed bool   `json:"room_closed,omitempty"`
}

func toRoomResponse(v *domain.RoomView) RoomResponse {
	members := v.Members
	if members == nil {
		members = []*domain.Character{}
	}
	return RoomResponse{Room: v.Room, Members: members}
}
