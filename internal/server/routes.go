package server

import (
	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/server/middleware"
	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/server/routes"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires the four endpoints named in spec §6. /health and
// the admin route are exempt from the per-IP rate limiter; the two detect
// routes enforce it internally after body validation (see routes.appFrom
// and checkRateLimit).
func RegisterRoutes(e *echo.Echo, adminAPIKey string) {
	e.GET("/health", routes.HealthHandler)

	e.POST("/detect/hash/by-node", routes.DetectByNodeHandler)
	e.POST("/detect/hash/by-metadata", routes.DetectByMetadataHandler)

	e.POST("/admin/cache/clear", routes.AdminCacheClearHandler, middleware.RequireAdminKey(adminAPIKey))
}
