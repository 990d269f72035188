package http

import (
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	middleware "todo-api.com/todo-api/internal/http/middlewares"
)

type ServerOptions struct {
	APIPrefix          string
	RateLimitPerMinute int
	LimiterStore       middleware.LimiterStore
}

func NewServer(h *Handler, opts ServerOptions) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Printf("%s %s %d %s id=%s", v.Method, v.URI, v.Status, v.Latency.Round(time.Microsecond), v.RequestID)
			return nil
		},
	}))

	if opts.LimiterStore != nil && opts.RateLimitPerMinute > 0 {
		e.Use(middleware.RateLimiter(opts.LimiterStore, opts.RateLimitPerMinute, time.Minute))
	}

	Register(e, h, opts.APIPrefix)
	return e
}
