package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/playhouse/roomhub/internal/core/domain"
	"github.com/playhouse/roomhub/internal/core/ports"
)

func dialRoom(t *testing.T, hub *Hub, roomID string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, roomID, "u-"+roomID)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.Connections(roomID) >= 1 }, time.Second, 5*time.Millisecond)
	return conn
}

func TestHub_PublishReachesRoomSubscribers(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	r1 := dialRoom(t, hub, "r1")
	dialRoom(t, hub, "r2")

	hub.Publish(context.Background(), ports.RoomEvent{Type: ports.EventMemberLeft, RoomID: "r2", Members: 0})
	hub.Publish(context.Background(), ports.RoomEvent{
		Type:        ports.EventMemberJoined,
		RoomID:      "r1",
		CharacterID: "c1",
		Status:      domain.StatusWaiting,
		Members:     1,
	})

	require.NoError(t, r1.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := r1.ReadMessage()
	require.NoError(t, err)

	var got ports.RoomEvent
	require.NoError(t, json.Unmarshal(msg, &got))
	require.Equal(t, ports.EventMemberJoined, got.Type)
	require.Equal(t, "r1", got.RoomID)
	require.Equal(t, "c1", got.CharacterID)
	require.Equal(t, 1, got.Members)
}

func TestHub_DisconnectUnsubscribes(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := dialRoom(t, hub, "r1")

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Connections("r1") == 0 }, 2*time.Second, 5*time.Millisecond)

	// Publishing to a room with no subscribers is a no-op.
	hub.Publish(context.Background(), ports.RoomEvent{Type: ports.EventStatusChanged, RoomID: "r1"})
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	conn := dialRoom(t, hub, "r1")

	hub.Close()
	require.Equal(t, 0, hub.Connections("r1"))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "expected normal close, got %v", err)
}
