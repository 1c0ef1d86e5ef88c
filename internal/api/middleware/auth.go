package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

// Context keys set by Auth.
const (
	KeyClaims      = "claims"
	KeyPrincipalID = "principal_id"
	KeyRole        = "role"
	KeyEmail       = "email"
	KeyToken       = "token"
)

// TokenValidator is the part of the token service Auth needs.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*ports.TokenClaims, error)
}

// Auth validates the bearer token and injects its claims into the context.
// Every rejection is domain.ErrUnauthorized.
func Auth(tokens TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return domain.ErrUnauthorized
			}

			claims, err := tokens.Validate(c.Request().Context(), token)
			if err != nil {
				return domain.ErrUnauthorized
			}

			c.Set(KeyClaims, claims)
			c.Set(KeyPrincipalID, claims.PrincipalID)
			c.Set(KeyRole, claims.Role)
			c.Set(KeyEmail, claims.Email)
			c.Set(KeyToken, token)

			return next(c)
		}
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
