package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandler answers the liveness probe (spec §6). It is deliberately
// dependency-free: it does not touch the pipeline, cache, or rate limiter.
func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
