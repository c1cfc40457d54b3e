package middleware

import (
	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/apperr"
	"github.com/labstack/echo/v4"
)

// AdminHeader is the header the admin cache-purge endpoint checks (spec §6).
const AdminHeader = "X-Admin-Key"

// RequireAdminKey gates a route behind a shared secret configured via
// ADMIN_API_KEY. An unconfigured key is a server misconfiguration and
// answers 500; a missing or wrong key answers 403.
func RequireAdminKey(expected string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if expected == "" {
				return apperr.New(apperr.Internal, "admin API key is not configured")
			}
			if c.Request().Header.Get(AdminHeader) != expected {
				return apperr.New(apperr.Forbidden, "invalid or missing admin key")
			}
			return next(c)
		}
	}
}
