package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/playhouse/roomhub/internal/core/domain"
	"github.com/playhouse/roomhub/internal/core/ports"
	"github.com/playhouse/roomhub/internal/pkg/metrics"
)

// leaveAttempts bounds how often Leave chases a character that keeps
// changing rooms between the lookup and the lock.
const leaveAttempts = 3

// PresenceService moves characters in and out of rooms.
//
// Join and Leave hold the room lock and then the character lock for the
// whole read-decide-write, so concurrent joins cannot overfill a room and a
// character never ends up in two rooms.
type PresenceService struct {
	rooms      ports.RoomRepository
	characters ports.CharacterRepository
	locker     ports.Locker
	events     ports.RoomEventPublisher
	log        zerolog.Logger
}

func NewPresenceService(
	rooms ports.RoomRepository,
	characters ports.CharacterRepository,
	locker ports.Locker,
	events ports.RoomEventPublisher,
	log zerolog.Logger,
) *PresenceService {
	if events == nil {
		events = nopPublisher{}
	}
	return &PresenceService{rooms: rooms, characters: characters, locker: locker, events: events, log: log}
}

// Join puts characterID into roomID.
func (s *PresenceService) Join(ctx context.Context, roomID, characterID string) (*ports.JoinResult, error) {
	ctx, releaseRoom, err := s.locker.Acquire(ctx, roomKey(roomID))
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}
	defer releaseRoom()

	ctx, releaseCharacter, err := s.locker.Acquire(ctx, characterKey(characterID))
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}
	defer releaseCharacter()

	res, err := s.join(ctx, roomID, characterID)
	metrics.RoomJoinsTotal.WithLabelValues(joinResultLabel(res, err)).Inc()
	return res, err
}

func (s *PresenceService) join(ctx context.Context, roomID, characterID string) (*ports.JoinResult, error) {
	now := time.Now().UTC()

	// 1. Room and current members.
	view, err := loadRoomView(ctx, s.rooms, s.characters, roomID)
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}
	room := view.Room

	// 2. A closed room reopens for a join only when empty.
	revived := false
	if room.Status == domain.StatusClosed {
		if err := room.Revive(view.Occupancy(), now); err != nil {
			return nil, fmt.Errorf("join room %s: %w", roomID, err)
		}
		revived = true
	}

	// 3. Capacity.
	if !revived && !room.HasSeatFor(view.Occupancy()) {
		return nil, fmt.Errorf("join room %s (%d/%d): %w", roomID, view.Occupancy(), room.MaxPlayers, domain.ErrRoomFull)
	}

	// 4. Character.
	character, err := s.characters.FindByID(ctx, characterID)
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}

	// 5. Re-join is a no-op.
	if character.RoomID == roomID {
		return &ports.JoinResult{View: view, Character: character, AlreadyMember: true}, nil
	}

	// 6. One room at a time; the caller must leave first.
	if character.InRoom() {
		return nil, fmt.Errorf("join room %s: character %s is in %s: %w", roomID, characterID, character.RoomID, domain.ErrAlreadyInAnotherRoom)
	}

	// 7. Persist and reload.
	if revived {
		if err := s.rooms.Save(ctx, room); err != nil {
			return nil, fmt.Errorf("join: save room: %w", err)
		}
	}
	if err := s.characters.SetRoom(ctx, characterID, roomID); err != nil {
		if revived {
			s.reclose(ctx, room)
		}
		return nil, fmt.Errorf("join: save character: %w", err)
	}
	character.RoomID = roomID
	character.UpdatedAt = now

	fresh, err := loadRoomView(ctx, s.rooms, s.characters, roomID)
	if err != nil {
		return nil, fmt.Errorf("join: %w", err)
	}

	if revived {
		s.publish(ctx, ports.EventStatusChanged, fresh, "")
	}
	s.publish(ctx, ports.EventMemberJoined, fresh, characterID)

	s.log.Info().
		Str("room_id", roomID).
		Str("character_id", characterID).
		Bool("revived", revived).
		Int("members", fresh.Occupancy()).
		Msg("character joined room")

	return &ports.JoinResult{View: fresh, Character: character, Revived: revived}, nil
}

// Leave takes characterID out of whatever room it is in.
func (s *PresenceService) Leave(ctx context.Context, characterID string) (*ports.LeaveResult, error) {
	for i := 0; i < leaveAttempts; i++ {
		character, err := s.characters.FindByID(ctx, characterID)
		if err != nil {
			metrics.RoomLeavesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("leave: %w", err)
		}
		if !character.InRoom() {
			metrics.RoomLeavesTotal.WithLabelValues("noop").Inc()
			return &ports.LeaveResult{Character: character}, nil
		}

		res, moved, err := s.leave(ctx, character.RoomID, characterID)
		if moved {
			continue
		}
		metrics.RoomLeavesTotal.WithLabelValues(leaveResultLabel(res, err)).Inc()
		return res, err
	}
	metrics.RoomLeavesTotal.WithLabelValues("error").Inc()
	return nil, fmt.Errorf("leave: character %s kept moving: %w", characterID, domain.ErrBusy)
}

// leave runs under the room and character locks. moved reports that the
// character was no longer in roomID once the locks were held.
func (s *PresenceService) leave(ctx context.Context, roomID, characterID string) (res *ports.LeaveResult, moved bool, err error) {
	ctx, releaseRoom, err := s.locker.Acquire(ctx, roomKey(roomID))
	if err != nil {
		return nil, false, fmt.Errorf("leave: %w", err)
	}
	defer releaseRoom()

	ctx, releaseCharacter, err := s.locker.Acquire(ctx, characterKey(characterID))
	if err != nil {
		return nil, false, fmt.Errorf("leave: %w", err)
	}
	defer releaseCharacter()

	character, err := s.characters.FindByID(ctx, characterID)
	if err != nil {
		return nil, false, fmt.Errorf("leave: %w", err)
	}
	if character.RoomID != roomID {
		if character.InRoom() {
			return nil, true, nil
		}
		return &ports.LeaveResult{Character: character}, false, nil
	}

	now := time.Now().UTC()
	if err := s.characters.SetRoom(ctx, characterID, ""); err != nil {
		return nil, false, fmt.Errorf("leave: save character: %w", err)
	}
	character.RoomID = ""
	character.UpdatedAt = now

	room, err := s.rooms.FindByID(ctx, roomID)
	if errors.Is(err, domain.ErrRoomNotFound) {
		s.log.Warn().Str("room_id", roomID).Str("character_id", characterID).Msg("character pointed at a missing room")
		return &ports.LeaveResult{Character: character, Left: true}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("leave: %w", err)
	}

	remaining, err := s.characters.CountByRoom(ctx, roomID)
	if err != nil {
		return nil, false, fmt.Errorf("leave: count members: %w", err)
	}

	closed := false
	if remaining == 0 && room.Status.CanTransitionTo(domain.StatusClosed) {
		if err := room.Close(0, now); err != nil {
			return nil, false, fmt.Errorf("leave: %w", err)
		}
		if err := s.rooms.Save(ctx, room); err != nil {
			return nil, false, fmt.Errorf("leave: save room: %w", err)
		}
		closed = true
	}

	view := &domain.RoomView{Room: room}
	s.publishCount(ctx, ports.EventMemberLeft, view, int(remaining), characterID)
	if closed {
		s.publishCount(ctx, ports.EventStatusChanged, view, 0, "")
	}

	s.log.Info().
		Str("room_id", roomID).
		Str("character_id", characterID).
		Int64("members", remaining).
		Bool("closed", closed).
		Msg("character left room")

	return &ports.LeaveResult{Character: character, Room: room, Left: true, Closed: closed}, false, nil
}

// reclose undoes a revival whose join could not be saved.
func (s *PresenceService) reclose(ctx context.Context, room *domain.Room) {
	if err := room.Close(0, time.Now().UTC()); err != nil {
		return
	}
	if err := s.rooms.Save(ctx, room); err != nil {
		s.log.Warn().Err(err).Str("room_id", room.ID).Msg("failed to re-close room after aborted join")
	}
}

func (s *PresenceService) publish(ctx context.Context, typ ports.RoomEventType, view *domain.RoomView, characterID string) {
	s.publishCount(ctx, typ, view, view.Occupancy(), characterID)
}

func (s *PresenceService) publishCount(ctx context.Context, typ ports.RoomEventType, view *domain.RoomView, members int, characterID string) {
	s.events.Publish(ctx, ports.RoomEvent{
		Type:        typ,
		RoomID:      view.Room.ID,
		CharacterID: characterID,
		Status:      view.Room.Status,
		Members:     members,
		At:          time.Now().UTC(),
	})
}

func joinResultLabel(res *ports.JoinResult, err error) string {
	switch {
	case err == nil && res.AlreadyMember:
		return "rejoined"
	case err == nil && res.Revived:
		return "revived"
	case err == nil:
		return "joined"
	case errors.Is(err, domain.ErrRoomFull):
		return "full"
	case errors.Is(err, domain.ErrRoomClosed):
		return "closed"
	case errors.Is(err, domain.ErrAlreadyInAnotherRoom):
		return "other_room"
	default:
		return "error"
	}
}

func leaveResultLabel(res *ports.LeaveResult, err error) string {
	switch {
	case err != nil:
		return "error"
	case res.Closed:
		return "closed"
	case res.Left:
		return "left"
	default:
		return "noop"
	}
}
