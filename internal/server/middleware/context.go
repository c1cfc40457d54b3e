package middleware

import (
	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/config"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/cache"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/pipeline"

	"github.com/labstack/echo/v4"
)

// App holds the process-wide, request-independent dependencies every
// handler needs: the detection pipeline, the by-metadata response cache,
// and the resolved configuration.
type App struct {
	Pipeline    *pipeline.Pipeline
	Cache       *cache.Cache
	RateLimiter *RateLimiter
	Config      config.Config
}

// AppContext threads App through Echo's per-request context, the way the
// teacher's AppContext threads its own dependency bundle.
type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware injects app into every request as an AppContext.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app}
			return next(cc)
		}
	}
}
