package ports

import (
	"context"
	"time"

	"github.com/playhouse/roomhub/internal/core/domain"
)

// RoomEventType names a presence change.
type RoomEventType string

const (
	EventMemberJoined  RoomEventType = "member_joined"
	EventMemberLeft    RoomEventType = "member_left"
	EventStatusChanged RoomEventType = "status_changed"
)

// RoomEvent is published after a presence change has been persisted.
type RoomEvent struct {
	Type        RoomEventType     `json:"type"`
	RoomID      string            `json:"room_id"`
	CharacterID string            `json:"character_id,omitempty"`
	Status      domain.RoomStatus `json:"status"`
	Members     int               `json:"members"`
	At          time.Time         `json:"at"`
}

// RoomEventPublisher fans room events out to listeners. Publish must not block.
type RoomEventPublisher interface {
	Publish(ctx context.Context, event RoomEvent)
}
