package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tally/api/middleware"
	"tally/apperrors"
	"tally/models"
	"tally/service"
)

// RoundHandler exposes the round ledger operations
type RoundHandler struct {
	rounds service.RoundService
}

// NewRoundHandler creates a new round handler
func NewRoundHandler(rounds service.RoundService) *RoundHandler {
	return &RoundHandler{rounds: rounds}
}

// RegisterRoutes mounts the authenticated round routes. Sessions hang off
// rooms; round submission hangs off sessions.
func (h *RoundHandler) RegisterRoutes(rooms, sessions *echo.Group) {
	rooms.POST("/:id/sessions", h.StartGameSession)
	rooms.GET("/:id/sessions", h.ListGameSessions)
	sessions.POST("/:id/rounds", h.SubmitRound)
}

type submitRoundRequest struct {
	Entries []models.RoundEntry `json:"entries"`
}

// StartGameSession opens a new game session in a room
func (h *RoundHandler) StartGameSession(c echo.Context) error {
	session, err := h.rounds.StartGameSession(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, session)
}

// ListGameSessions lists a room's sessions, newest first
func (h *RoundHandler) ListGameSessions(c echo.Context) error {
	sessions, err := h.rounds.ListGameSessions(c.Request().Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sessions)
}

// SubmitRound records the round entries and applies every balance delta
func (h *RoundHandler) SubmitRound(c echo.Context) error {
	var req submitRoundRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewInvalidInput("invalid request")
	}

	err := h.rounds.SubmitRound(c.Request().Context(), middleware.UserID(c), c.Param("id"), req.Entries)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, successResponse{Success: true})
}
