package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/event-ticket-reservation/internal/config"
	"github.com/iliyamo/event-ticket-reservation/internal/handler"
	"github.com/iliyamo/event-ticket-reservation/internal/middleware"
)

// Deps carries everything the routes need.  Redis may be nil, which turns
// off rate limiting and response caching.
type Deps struct {
	Config       config.Config
	Log          *slog.Logger
	Redis        *redis.Client
	DB           handler.Pinger
	Auth         middleware.Authenticator
	AuthH        *handler.AuthHandler
	Events       *handler.EventHandler
	Reservations *handler.ReservationHandler
}

// New builds the Echo instance with global middleware and all routes.
func New(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Recover())
	e.Use(requestLogger(d.Log))

	Register(e, d)
	return e
}

// Register maps every endpoint.  Login and the health check are public;
// everything else under /v1 requires a bearer token and passes through
// the rate limiter and the response cache, in that order.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health(d.DB))

	e.POST("/v1/login", d.AuthH.Login)

	v1 := e.Group("/v1")
	v1.Use(middleware.Authenticate(d.Auth))
	v1.Use(middleware.NewTokenBucket(d.Config.RateLimit, d.Redis, d.Log))
	v1.Use(middleware.NewRedisCache(d.Config.Cache, d.Redis, d.Log))

	v1.POST("/logout", d.AuthH.Logout)
	v1.POST("/register", d.AuthH.Register)
	v1.GET("/me", d.AuthH.Me)

	v1.GET("/events", d.Events.List)
	v1.POST("/events", d.Events.Create)
	v1.GET("/events/:id", d.Events.Get)
	v1.PUT("/events/:id", d.Events.Update)
	v1.PATCH("/events/:id", d.Events.Update)
	v1.DELETE("/events/:id", d.Events.Delete)

	v1.GET("/reservations", d.Reservations.List)
	v1.POST("/reservations", d.Reservations.Create)
	v1.GET("/reservations/:id", d.Reservations.Get)
	v1.PUT("/reservations/:id", d.Reservations.Update)
	v1.PATCH("/reservations/:id", d.Reservations.Update)
	v1.DELETE("/reservations/:id", d.Reservations.Delete)
}

func requestLogger(log *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				log.Error("request", append(attrs, "err", v.Error)...)
				return nil
			}
			log.Info("request", attrs...)
			return nil
		},
	})
}
