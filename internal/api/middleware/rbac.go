package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/supportdesk/support-system/internal/core/domain"
)

// RBAC gates a route group on the caller's role. It runs after Auth; the
// services still make the fine-grained ownership decision.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(KeyRole).(domain.Role)
			if _, ok := allowed[role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
