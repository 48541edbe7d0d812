package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tally/api/middleware"
	"tally/apperrors"
	"tally/service"
)

// UserHandler exposes the current-user and username operations
type UserHandler struct {
	users service.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes mounts the authenticated user routes
func (h *UserHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/me", h.GetCurrentUser)
	g.PUT("/me/username", h.UpdateUsername)
}

type currentUserResponse struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Username *string `json:"username"`
}

type updateUsernameRequest struct {
	Username string `json:"username"`
}

type successResponse struct {
	Success bool `json:"success"`
}

// GetCurrentUser returns the caller's identity fields, or null when the
// account no longer exists
func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	user, err := h.users.GetCurrentUser(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	if user == nil {
		return c.JSON(http.StatusOK, nil)
	}

	return c.JSON(http.StatusOK, currentUserResponse{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
}

// UpdateUsername claims a username for the caller
func (h *UserHandler) UpdateUsername(c echo.Context) error {
	var req updateUsernameRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewInvalidInput("invalid request")
	}

	if err := h.users.UpdateUsername(c.Request().Context(), middleware.UserID(c), req.Username); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, successResponse{Success: true})
}
