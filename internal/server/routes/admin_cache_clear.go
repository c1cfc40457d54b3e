package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// AdminCacheClearHandler implements POST /admin/cache/clear, gated by
// middleware.RequireAdminKey (spec §6).
func AdminCacheClearHandler(c echo.Context) error {
	app := appFrom(c)
	n := app.Cache.Clear()
	return c.JSON(http.StatusOK, map[string]int{"entries_removed": n})
}
