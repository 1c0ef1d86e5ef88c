package handler

import (
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/supportdesk/support-system/internal/api/middleware"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

// ctxActor extracts the identity injected by the Auth middleware. A missing or
// empty claim set means the route was mounted without Auth: reject with 401.
func ctxActor(c echo.Context) (domain.Actor, error) {
	claims, ok := c.Get(middleware.KeyClaims).(*ports.TokenClaims)
	if !ok || claims == nil || claims.PrincipalID == "" || !claims.Role.Valid() {
		return domain.Actor{}, domain.ErrUnauthorized
	}
	return claims.Actor(), nil
}

// bind decodes the request and runs struct validation. Malformed payloads are
// validation failures.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrValidation)
	}
	return c.Validate(req)
}

type messageResponse struct {
	Message string `json:"message"`
}
