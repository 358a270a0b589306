package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/playhouse/roomhub/internal/core/domain"
	"github.com/playhouse/roomhub/internal/core/ports"
)

// RoomFeed streams room events to a websocket client.
type RoomFeed interface {
	ServeWS(w http.ResponseWriter, r *http.Request, roomID, userID string) error
}

// RoomHandler exposes room lifecycle and presence. Calls act on the
// caller's own character.
type RoomHandler struct {
	rooms    ports.RoomService
	presence ports.PresenceService
	profiles ports.AuthService
	feed     RoomFeed
}

func NewRoomHandler(rooms ports.RoomService, presence ports.PresenceService, profiles ports.AuthService, feed RoomFeed) *RoomHandler {
	return &RoomHandler{rooms: rooms, presence: presence, profiles: profiles, feed: feed}
}

// Create godoc
//
// @Summary      Host a new room
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      CreateRoomRequest  true  "Room"
// @Success      201   {object}  domain.Room
// @Failure      400   {object}  map[string]string
// @Router       /v1/rooms [post]
func (h *RoomHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req CreateRoomRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	room, err := h.rooms.Create(c.Request().Context(), ports.CreateRoomInput{
		Name:       req.Name,
		HostUserID: id.UserID,
		MaxPlayers: req.MaxPlayers,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, room)
}

// Active godoc
//
// @Summary      Rooms waiting for players with a free seat
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  ActiveRoomResponse
// @Router       /v1/rooms [get]
func (h *RoomHandler) Active(c echo.Context) error {
	summaries, err := h.rooms.Active(c.Request().Context())
	if err != nil {
		return err
	}

	out := make([]ActiveRoomResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, ActiveRoomResponse{Room: s.Room, Occupancy: s.Members})
	}
	return c.JSON(http.StatusOK, out)
}

// Get godoc
//
// @Summary      Room with its members
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Room ID"
// @Success      200  {object}  RoomResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/rooms/{id} [get]
func (h *RoomHandler) Get(c echo.Context) error {
	view, err := h.rooms.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoomResponse(view))
}

// Start godoc
//
// @Summary      Start the game (host or admin)
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Room ID"
// @Success      200  {object}  domain.Room
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/rooms/{id}/start [post]
func (h *RoomHandler) Start(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	view, err := h.rooms.Get(ctx, c.Param("id"))
	if err != nil {
		return err
	}
	if view.Room.HostUserID != id.UserID && id.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}

	room, err := h.rooms.StartGame(ctx, view.Room.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, room)
}

// Join godoc
//
// @Summary      Put the caller's character into a room
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Room ID"
// @Success      200  {object}  JoinResponse
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /v1/rooms/{id}/join [post]
func (h *RoomHandler) Join(c echo.Context) error {
	character, err := h.callerCharacter(c)
	if err != nil {
		return err
	}

	res, err := h.presence.Join(c.Request().Context(), c.Param("id"), character.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, JoinResponse{
		Room:          toRoomResponse(res.View),
		Revived:       res.Revived,
		AlreadyMember: res.AlreadyMember,
	})
}

// Leave godoc
//
// @Summary      Take the caller's character out of its room
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  LeaveResponse
// @Failure      503  {object}  map[string]string
// @Router       /v1/presence/leave [post]
func (h *RoomHandler) Leave(c echo.Context) error {
	character, err := h.callerCharacter(c)
	if err != nil {
		return err
	}

	res, err := h.presence.Leave(c.Request().Context(), character.ID)
	if err != nil {
		return err
	}

	out := LeaveResponse{Left: res.Left, RoomClosed: res.Closed}
	if res.Room != nil {
		out.RoomID = res.Room.ID
	}
	return c.JSON(http.StatusOK, out)
}

// Stream godoc
//
// @Summary      Websocket feed of room events (members only)
// @Tags         rooms
// @Security     BearerAuth
// @Param        id   path  string  true  "Room ID"
// @Success      101
// @Failure      403  {object}  map[string]string
// @Router       /v1/rooms/{id}/ws [get]
func (h *RoomHandler) Stream(c echo.Context) error {
	character, err := h.callerCharacter(c)
	if err != nil {
		return err
	}

	view, err := h.rooms.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !view.HasMember(character.ID) {
		return domain.ErrForbidden
	}

	return h.feed.ServeWS(c.Response(), c.Request(), view.Room.ID, character.UserID)
}

func (h *RoomHandler) callerCharacter(c echo.Context) (*domain.Character, error) {
	id, err := ctxIdentity(c)
	if err != nil {
		return nil, err
	}
	_, character, err := h.profiles.Profile(c.Request().Context(), id.UserID)
	if err != nil {
		return nil, err
	}
	return character, nil
}
