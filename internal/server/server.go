package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/apperr"
	"github.com/OFFIS-RIT/wlo-dupe-detect/internal/config"
	mid "github.com/OFFIS-RIT/wlo-dupe-detect/internal/server/middleware"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/cache"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/minhash"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/pipeline"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/dedupe/upstream"
	"github.com/OFFIS-RIT/wlo-dupe-detect/pkg/logger"

	"github.com/go-playground/validator"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// httpErrorHandler is Echo's central error sink: every handler and
// middleware error is mapped through apperr.Kind to the status codes spec
// §6/§7 name, except a bare echo.HTTPError (unknown route, body limit),
// which keeps its own status code and answers "malformed request".
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	kind := apperr.As(err)
	status := apperr.StatusCode(kind)
	message := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		message = "malformed request"
		kind = apperr.InvalidRequest
	}

	logger.Error("request failed", "kind", kind, "status", status, "err", err)
	if writeErr := c.JSON(status, map[string]string{"error": message}); writeErr != nil {
		logger.Error("failed to write error response", "err", writeErr)
	}
}

// Init assembles the upstream client, MinHash engine, detection pipeline,
// response cache, and per-IP rate limiter, then starts the Echo server
// with a graceful shutdown on SIGTERM/SIGINT, the way the teacher's Init
// bootstraps its own dependency set. cfg is loaded once by the caller,
// after the logger has been built, and Init does not load it again.
func Init(cfg config.Config) {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}
	e.HTTPErrorHandler = httpErrorHandler

	client := upstream.NewHTTPClient(cfg.WLOBaseURL, time.Duration(cfg.WLOTimeout)*time.Second, cfg.WLOMaxRetries)
	engine := minhash.New()
	pipe := pipeline.New(client, engine, cfg.MaxCandidates)
	respCache := cache.New(time.Duration(cfg.CacheTTL)*time.Second, cfg.CacheMaxSize)
	limiter := mid.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	app := &mid.App{
		Pipeline:    pipe,
		Cache:       respCache,
		RateLimiter: limiter,
		Config:      cfg,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:       true,
		LogProtocol:      false,
		LogRemoteIP:      true,
		LogHost:          true,
		LogMethod:        true,
		LogURI:           true,
		LogURIPath:       false,
		LogRoutePath:     false,
		LogRequestID:     true,
		LogReferer:       false,
		LogUserAgent:     true,
		LogStatus:        true,
		LogError:         true,
		LogContentLength: true,
		LogResponseSize:  true,
		LogHeaders:       nil,
		LogQueryParams:   nil,
		LogFormValues:    nil,
		HandleError:      true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error == nil {
				slog.LogAttrs(context.Background(), slog.LevelInfo, "REQUEST",
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.Duration("latency", v.Latency),
					slog.String("host", v.Host),
					slog.String("bytes_in", v.ContentLength),
					slog.Int64("bytes_out", v.ResponseSize),
					slog.String("user_agent", v.UserAgent),
					slog.String("remote_ip", v.RemoteIP),
					slog.String("request_id", v.RequestID),
				)
			} else {
				slog.LogAttrs(context.Background(), slog.LevelError, "REQUEST_ERROR",
					slog.String("method", v.Method),
					slog.String("uri", v.URI),
					slog.Int("status", v.Status),
					slog.Duration("latency", v.Latency),
					slog.String("host", v.Host),
					slog.String("bytes_in", v.ContentLength),
					slog.Int64("bytes_out", v.ResponseSize),
					slog.String("user_agent", v.UserAgent),
					slog.String("remote_ip", v.RemoteIP),
					slog.String("request_id", v.RequestID),
					slog.String("error", v.Error.Error()),
				)
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	RegisterRoutes(e, cfg.AdminAPIKey)

	go func() {
		logger.Info("starting server", "port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "err", err)
	}
}
