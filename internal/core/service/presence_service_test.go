package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playhouse/roomhub/internal/core/domain"
	"github.com/playhouse/roomhub/internal/core/ports"
)

func newTestPresenceService(store *memStore, events ports.RoomEventPublisher) *PresenceService {
	return NewPresenceService(stubRoomRepo{store}, stubCharacterRepo{store}, newTestLocker(), events, discardLogger)
}

// Two seats, four characters: fill, overflow, leave, refill, empty out.
func TestPresenceService_Lifecycle(t *testing.T) {
	store := newMemStore()
	store.seedRoom("r1", 2, domain.StatusWaiting)
	for _, c := range []string{"A", "B", "C", "D"} {
		store.seedCharacter(c, "user-"+c, "")
	}
	events := &recordingPublisher{}
	svc := newTestPresenceService(store, events)
	ctx := context.Background()

	if _, err := svc.Join(ctx, "r1", "A"); err != nil {
		t.Fatalf("join A: %v", err)
	}
	res, err := svc.Join(ctx, "r1", "B")
	if err != nil {
		t.Fatalf("join B: %v", err)
	}
	if res.View.Occupancy() != 2 {
		t.Fatalf("expected 2 members, got %d", res.View.Occupancy())
	}

	if _, err := svc.Join(ctx, "r1", "C"); !errors.Is(err, domain.ErrRoomFull) {
		t.Fatalf("join C: expected ErrRoomFull, got %v", err)
	}
	if store.roomOf("C") != "" {
		t.Fatalf("C should not be in a room")
	}

	left, err := svc.Leave(ctx, "A")
	if err != nil {
		t.Fatalf("leave A: %v", err)
	}
	if !left.Left || left.Closed {
		t.Fatalf("unexpected leave result: %+v", left)
	}

	if _, err := svc.Join(ctx, "r1", "C"); err != nil {
		t.Fatalf("join C after A left: %v", err)
	}

	if _, err := svc.Leave(ctx, "B"); err != nil {
		t.Fatalf("leave B: %v", err)
	}
	last, err := svc.Leave(ctx, "C")
	if err != nil {
		t.Fatalf("leave C: %v", err)
	}
	if !last.Closed {
		t.Fatalf("expected the room to close when the last member left")
	}
	if store.roomStatus("r1") != domain.StatusClosed {
		t.Fatalf("expected closed, got %s", store.roomStatus("r1"))
	}

	revived, err := svc.Join(ctx, "r1", "D")
	if err != nil {
		t.Fatalf("join D into closed empty room: %v", err)
	}
	if !revived.Revived || revived.View.Room.Status != domain.StatusWaiting {
		t.Fatalf("expected revival to waiting, got %+v", revived)
	}
	if revived.View.Occupancy() != 1 || !revived.View.HasMember("D") {
		t.Fatalf("unexpected members after revival: %+v", revived.View.Members)
	}

	got := events.types()
	if got[len(got)-2] != ports.EventStatusChanged || got[len(got)-1] != ports.EventMemberJoined {
		t.Fatalf("expected status_changed then member_joined on revival, got %v", got)
	}
}

func TestPresenceService_Join_Errors(t *testing.T) {
	store := newMemStore()
	store.seedRoom("r1", 4, domain.StatusWaiting)
	store.seedRoom("r2", 4, domain.StatusWaiting)
	store.seedRoom("closed", 4, domain.StatusClosed)
	store.seedCharacter("A", "u1", "r2")
	store.seedCharacter("B", "u2", "closed")
	store.seedCharacter("C", "u3", "")
	svc := newTestPresenceService(store, nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		room      string
		character string
		want      error
	}{
		{"unknown room", "missing", "C", domain.ErrRoomNotFound},
		{"unknown character", "r1", "ghost", domain.ErrCharacterNotFound},
		{"already in another room", "r1", "A", domain.ErrAlreadyInAnotherRoom},
		{"closed room with members", "closed", "C", domain.ErrRoomClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Join(ctx, tt.room, tt.character); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if store.roomOf("A") != "r2" || store.roomOf("C") != "" {
		t.Fatalf("membership changed by rejected joins")
	}
}

func TestPresenceService_Join_Idempotent(t *testing.T) {
	store := newMemStore()
	store.seedRoom("r1", 4, domain.StatusWaiting)
	store.seedCharacter("A", "u1", "")
	events := &recordingPublisher{}
	svc := newTestPresenceService(store, events)
	ctx := context.Background()

	if _, err := svc.Join(ctx, "r1", "A"); err != nil {
		t.Fatalf("first join: %v", err)
	}
	res, err := svc.Join(ctx, "r1", "A")
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if !res.AlreadyMember || res.View.Occupancy() != 1 {
		t.Fatalf("expected idempotent re-join, got %+v", res)
	}
	if n := len(events.types()); n != 1 {
		t.Fatalf("expected a single member_joined event, got %d", n)
	}
}

func TestPresenceService_Join_InGameRoom(t *testing.T) {
	store := newMemStore()
	store.seedRoom("r1", 2, domain.StatusInGame)
	store.seedCharacter("A", "u1", "")
	svc := newTestPresenceService(store, nil)

	if _, err := svc.Join(context.Background(), "r1", "A"); err != nil {
		t.Fatalf("join in_game room with a free seat: %v", err)
	}
}

func TestPresenceService_Join_SaveFailureRecloses(t *testing.T) {
	store := newMemStore()
	store.seedRoom("r1", 2, domain.StatusClosed)
	store.seedCharacter("A", "u1", "")
	store.setRoomErr = errStorageDown
	svc := newTestPresenceService(store, nil)

	if _, err := svc.Join(context.Background(), "r1", "A"); !errors.Is(err, errStorageDown) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if store.roomStatus("r1") != domain.StatusClosed {
		t.Fatalf("expected room to stay closed, got %s", store.roomStatus("r1"))
	}
}

func TestPresenceService_Leave_NotInRoom(t *testing.T) {
	store := newMemStore()
	store.seedCharacter("A", "u1", "")
	events := &recordingPublisher{}
	svc := newTestPresenceService(store, events)

	res, err := svc.Leave(context.Background(), "A")
	if err != nil {
		t.Fatalf("Leave returned error: %v", err)
	}
	if res.Left || res.Closed {
		t.Fatalf("expected no-op, got %+v", res)
	}
	if len(events.types()) != 0 {
		t.Fatalf("expected no events")
	}

	if _, err := svc.Leave(context.Background(), "ghost"); !errors.Is(err, domain.ErrCharacterNotFound) {
		t.Fatalf("expected ErrCharacterNotFound, got %v", err)
	}
}

func TestPresenceService_Leave_InGameRoomStaysOpen(t *testing.T) {
	store := newMemStore()
	store.seedRoom("r1", 2, domain.StatusInGame)
	store.seedCharacter("A", "u1", "r1")
	svc := newTestPresenceService(store, nil)

	res, err := svc.Leave(context.Background(), "A")
	if err != nil {
		t.Fatalf("Leave returned error: %v", err)
	}
	if res.Closed || store.roomStatus("r1") != domain.StatusInGame {
		t.Fatalf("in_game room should not close, got %s", store.roomStatus("r1"))
	}
}

func TestPresenceService_Leave_MissingRoom(t *testing.T) {
	store := newMemStore()
	store.seedCharacter("A", "u1", "gone")
	svc := newTestPresenceService(store, nil)

	res, err := svc.Leave(context.Background(), "A")
	if err != nil {
		t.Fatalf("Leave returned error: %v", err)
	}
	if !res.Left || store.roomOf("A") != "" {
		t.Fatalf("expected the dangling reference to be cleared, got %+v", res)
	}
}

func TestPresenceService_ConcurrentJoinsRespectCapacity(t *testing.T) {
	const n = 12
	store := newMemStore()
	store.latency = 200 * time.Microsecond
	store.seedRoom("r1", n-1, domain.StatusWaiting)
	for i := 0; i < n; i++ {
		store.seedCharacter(fmt.Sprintf("c%02d", i), fmt.Sprintf("u%02d", i), "")
	}
	svc := newTestPresenceService(store, nil)

	var (
		wg     sync.WaitGroup
		joined atomic.Int64
		full   atomic.Int64
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.Join(context.Background(), "r1", id)
			switch {
			case err == nil:
				joined.Add(1)
			case errors.Is(err, domain.ErrRoomFull):
				full.Add(1)
			default:
				assert.NoError(t, err)
			}
		}(fmt.Sprintf("c%02d", i))
	}
	wg.Wait()

	require.Equal(t, int64(n-1), joined.Load())
	require.Equal(t, int64(1), full.Load())
	require.Equal(t, n-1, store.members("r1"))
}

func TestPresenceService_ConcurrentJoinsIntoDifferentRooms(t *testing.T) {
	store := newMemStore()
	store.latency = 200 * time.Microsecond
	store.seedRoom("r1", 4, domain.StatusWaiting)
	store.seedRoom("r2", 4, domain.StatusWaiting)
	store.seedCharacter("A", "u1", "")
	svc := newTestPresenceService(store, nil)

	var (
		wg    sync.WaitGroup
		ok    atomic.Int64
		other atomic.Int64
	)
	for _, room := range []string{"r1", "r2"} {
		wg.Add(1)
		go func(room string) {
			defer wg.Done()
			_, err := svc.Join(context.Background(), room, "A")
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrAlreadyInAnotherRoom):
				other.Add(1)
			default:
				assert.NoError(t, err)
			}
		}(room)
	}
	wg.Wait()

	require.Equal(t, int64(1), ok.Load())
	require.Equal(t, int64(1), other.Load())
	require.Equal(t, 1, store.members("r1")+store.members("r2"))
}

func TestPresenceService_ChurnKeepsMembershipConsistent(t *testing.T) {
	store := newMemStore()
	rooms := []string{"r1", "r2", "r3"}
	for _, r := range rooms {
		store.seedRoom(r, 3, domain.StatusWaiting)
	}
	const characters = 10
	for i := 0; i < characters; i++ {
		store.seedCharacter(fmt.Sprintf("c%d", i), fmt.Sprintf("u%d", i), "")
	}
	svc := newTestPresenceService(store, nil)

	var wg sync.WaitGroup
	for i := 0; i < characters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			for round := 0; round < 20; round++ {
				room := rooms[(i+round)%len(rooms)]
				_, err := svc.Join(context.Background(), room, id)
				if err != nil && !errors.Is(err, domain.ErrRoomFull) && !errors.Is(err, domain.ErrAlreadyInAnotherRoom) {
					assert.NoError(t, err)
					return
				}
				_, err = svc.Leave(context.Background(), id)
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	for _, r := range rooms {
		require.LessOrEqual(t, store.members(r), 3)
		if store.members(r) == 0 {
			require.Equal(t, domain.StatusClosed, store.roomStatus(r), "empty room %s should be closed", r)
		}
	}
	for i := 0; i < characters; i++ {
		require.Empty(t, store.roomOf(fmt.Sprintf("c%d", i)))
	}
}
