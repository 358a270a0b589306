package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/playhouse/roomhub/internal/core/domain"
	"github.com/playhouse/roomhub/internal/core/ports"
	"github.com/playhouse/roomhub/internal/pkg/metrics"
)

// RoomService owns room lifecycle: hosting, starting and listing rooms.
type RoomService struct {
	rooms      ports.RoomRepository
	characters ports.CharacterRepository
	locker     ports.Locker
	events     ports.RoomEventPublisher
	log        zerolog.Logger

	defaultMaxPlayers int
}

func NewRoomService(
	rooms ports.RoomRepository,
	characters ports.CharacterRepository,
	locker ports.Locker,
	events ports.RoomEventPublisher,
	defaultMaxPlayers int,
	log zerolog.Logger,
) *RoomService {
	if defaultMaxPlayers <= 0 {
		defaultMaxPlayers = domain.DefaultMaxPlayers
	}
	if events == nil {
		events = nopPublisher{}
	}
	return &RoomService{
		rooms:             rooms,
		characters:        characters,
		locker:            locker,
		events:            events,
		log:               log,
		defaultMaxPlayers: defaultMaxPlayers,
	}
}

// Create hosts a new room in the waiting state.
func (s *RoomService) Create(ctx context.Context, input ports.CreateRoomInput) (*domain.Room, error) {
	maxPlayers := input.MaxPlayers
	if maxPlayers <= 0 {
		maxPlayers = s.defaultMaxPlayers
	}

	room := domain.NewRoom(uuid.NewString(), input.Name, input.HostUserID, maxPlayers, time.Now().UTC())
	if err := s.rooms.Create(ctx, room); err != nil {
		s.log.Error().Err(err).Msg("failed to create room")
		return nil, err
	}

	metrics.RoomsCreatedTotal.Inc()
	s.log.Info().Str("room_id", room.ID).Str("host_user_id", room.HostUserID).Int("max_players", room.MaxPlayers).Msg("room created")
	return room, nil
}

// StartGame moves a waiting room to in_game.
func (s *RoomService) StartGame(ctx context.Context, roomID string) (*domain.Room, error) {
	ctx, release, err := s.locker.Acquire(ctx, roomKey(roomID))
	if err != nil {
		return nil, fmt.Errorf("start game: %w", err)
	}
	defer release()

	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("start game: %w", err)
	}
	if err := room.TransitionTo(domain.StatusInGame, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("start game: %w", err)
	}
	if err := s.rooms.Save(ctx, room); err != nil {
		return nil, fmt.Errorf("start game: save room: %w", err)
	}

	members, err := s.characters.CountByRoom(ctx, roomID)
	if err != nil {
		s.log.Warn().Err(err).Str("room_id", roomID).Msg("failed to count members")
	}
	s.events.Publish(ctx, ports.RoomEvent{
		Type:    ports.EventStatusChanged,
		RoomID:  roomID,
		Status:  room.Status,
		Members: int(members),
		At:      room.UpdatedAt,
	})

	s.log.Info().Str("room_id", roomID).Msg("game started")
	return room, nil
}

// Active lists rooms that are waiting and still have a free seat.
func (s *RoomService) Active(ctx context.Context) ([]ports.RoomSummary, error) {
	rooms, err := s.rooms.ListByStatus(ctx, domain.StatusWaiting)
	if err != nil {
		return nil, fmt.Errorf("list active rooms: %w", err)
	}

	active := make([]ports.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		n, err := s.characters.CountByRoom(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("list active rooms: count %s: %w", r.ID, err)
		}
		if r.HasSeatFor(int(n)) {
			active = append(active, ports.RoomSummary{Room: r, Members: int(n)})
		}
	}
	return active, nil
}

// Get returns a room with its members.
func (s *RoomService) Get(ctx context.Context, roomID string) (*domain.RoomView, error) {
	return loadRoomView(ctx, s.rooms, s.characters, roomID)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ports.RoomEvent) {}

func loadRoomView(ctx context.Context, rooms ports.RoomRepository, characters ports.CharacterRepository, roomID string) (*domain.RoomView, error) {
	room, err := rooms.FindByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("load room %s: %w", roomID, err)
	}
	members, err := characters.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("load room %s members: %w", roomID, err)
	}
	return &domain.RoomView{Room: room, Members: members}, nil
}
