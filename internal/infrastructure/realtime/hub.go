// Package realtime pushes room events to connected websocket clients.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/playhouse/roomhub/internal/core/ports"
	"github.com/playhouse/roomhub/internal/pkg/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 32
)

// Hub fans room events out to the websocket clients subscribed to that
// room. It implements ports.RoomEventPublisher. Publish never blocks: a
// client whose buffer is full misses the event.
type Hub struct {
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

type client struct {
	hub    *Hub
	roomID string
	userID string
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		rooms: make(map[string]map[*client]struct{}),
	}
}

// Publish implements ports.RoomEventPublisher.
func (h *Hub) Publish(_ context.Context, event ports.RoomEvent) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("room_id", event.RoomID).Msg("failed to encode room event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[event.RoomID] {
		select {
		case c.send <- msg:
		default:
			metrics.RealtimeDroppedTotal.Inc()
			h.log.Warn().Str("room_id", event.RoomID).Str("user_id", c.userID).Msg("client send buffer full, event dropped")
		}
	}
}

// ServeWS upgrades the request and subscribes the connection to roomID
// until the client goes away. Authorization is the caller's job.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, roomID, userID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{hub: h, roomID: roomID, userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)

	go c.writePump()
	go c.readPump()

	h.log.Info().Str("room_id", roomID).Str("user_id", userID).Msg("websocket connected")
	return nil
}

// Connections returns how many clients are subscribed to roomID.
func (h *Hub) Connections(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for roomID, clients := range h.rooms {
		for c := range clients {
			c.closeSend()
			metrics.RealtimeConnections.Dec()
		}
		delete(h.rooms, roomID)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[c.roomID] == nil {
		h.rooms[c.roomID] = make(map[*client]struct{})
	}
	h.rooms[c.roomID][c] = struct{}{}
	metrics.RealtimeConnections.Inc()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.rooms[c.roomID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.rooms, c.roomID)
	}
	c.closeSend()
	metrics.RealtimeConnections.Dec()
}

func (c *client) closeSend() {
	c.once.Do(func() { close(c.send) })
}

// readPump only services control frames; clients do not send commands.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Debug().Err(err).Str("room_id", c.roomID).Msg("websocket read error")
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
