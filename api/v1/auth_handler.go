package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"tally/apperrors"
	"tally/auth"
	"tally/service"
)

// AuthHandler exposes registration and login
type AuthHandler struct {
	users  service.UserService
	tokens *auth.TokenManager
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users service.UserService, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// RegisterRoutes mounts the public auth routes
func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

type registerRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Username *string `json:"username"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Register creates an account and returns a session token
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewInvalidInput("invalid request")
	}

	user, err := h.users.Register(c.Request().Context(), req.Email, req.Password, req.Username)
	if err != nil {
		return err
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, tokenResponse{Token: token})
}

// Login verifies credentials and returns a session token
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.NewInvalidInput("invalid request")
	}

	user, err := h.users.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenResponse{Token: token})
}
