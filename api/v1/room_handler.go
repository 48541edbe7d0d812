package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tally/api/middleware"
	"tally/apperrors"
	"tally/service"
)

// RoomHandler exposes the room directory operations
type RoomHandler struct {
	rooms service.RoomService
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms service.RoomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// RegisterRoutes mounts the authenticated room routes
func (h *RoomHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateRoom)
	g.GET("", h.GetMyRooms)
	g.POST("/join", h.JoinRoomByCode)
	g.GET("/:id", h.GetRoomByID)
	g.DELETE("/:id/members/:userId", h.KickUser)
}

type createRoomRequest struct {
	Name string `json:"name"`
}

type joinRoomRequest struct {
	Code string `json:"code"`
}

// CreateRoom creates a room owned by the caller
func (h *RoomHandler) CreateRoom(c echo.Context) error {
	var req createRoomRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewInvalidInput("invalid request")
	}

	room, err := h.rooms.CreateRoom(c.Request().Context(), middleware.UserID(c), req.Name)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, room)
}

// GetMyRooms lists the caller's rooms with their role
func (h *RoomHandler) GetMyRooms(c echo.Context) error {
	rooms, err := h.rooms.GetMyRooms(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rooms)
}

// JoinRoomByCode joins the caller to a room via its invite code
func (h *RoomHandler) JoinRoomByCode(c echo.Context) error {
	var req joinRoomRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewInvalidInput("invalid request")
	}

	room, err := h.rooms.JoinRoomByCode(c.Request().Context(), middleware.UserID(c), req.Code)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, room)
}

// GetRoomByID returns the full room view for a member
func (h *RoomHandler) GetRoomByID(c echo.Context) error {
	detail, err := h.rooms.GetRoomByID(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, detail)
}

// KickUser removes a member from a room on behalf of its owner
func (h *RoomHandler) KickUser(c echo.Context) error {
	err := h.rooms.KickUser(c.Request().Context(), middleware.UserID(c), c.Param("id"), c.Param("userId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, successResponse{Success: true})
}
