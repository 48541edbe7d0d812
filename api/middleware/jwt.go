package middleware

import (
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"tally/apperrors"
	"tally/auth"
)

// JWT returns the middleware protecting authenticated routes. A missing or
// invalid token fails with Unauthenticated before any business logic runs.
func JWT(tokens *auth.TokenManager) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: tokens.Secret(),
		NewClaimsFunc: func(c echo.Context) jwtlib.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.Wrap(apperrors.KindUnauthenticated, "missing or invalid token", err)
		},
	})
}

// UserID extracts the authenticated caller's user id from the request
// context populated by the JWT middleware
func UserID(c echo.Context) string {
	token, ok := c.Get("user").(*jwtlib.Token)
	if !ok {
		return ""
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok {
		return ""
	}
	return claims.Subject
}
