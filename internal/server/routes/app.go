package routes

import (
	"context"
	"time"

	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/apperr"
	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/server/middleware"
	"github.com/labstack/echo/v4"
)

// requestDeadline is spec §5's overall per-request cap; individual
// upstream calls additionally obey WLO_TIMEOUT, but this is the effective
// ceiling regardless of how that's configured.
const requestDeadline = 55 * time.Second

// appFrom extracts the App bundle from an AppContext, or panics if this
// handler was reached outside AppContextMiddleware — a wiring bug, not a
// request-time condition.
func appFrom(c echo.Context) *middleware.App {
	return c.(*middleware.AppContext).App
}

// checkRateLimit enforces spec §9's validate -> rate-limit ordering: it is
// called by detect handlers only after body binding and validation
// succeed, never as a blanket middleware.
func checkRateLimit(c echo.Context, app *middleware.App) error {
	if !app.RateLimiter.Allow(middleware.ClientIP(c.Request())) {
		return apperr.New(apperr.RateLimited, "rate limit exceeded, try again later")
	}
	return nil
}

func withRequestDeadline(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestDeadline)
}
