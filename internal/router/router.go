// Package router wires HTTP routes onto an echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/vivekyarra/moviesbyvivek/internal/config"
	"github.com/vivekyarra/moviesbyvivek/internal/handler"
	"github.com/vivekyarra/moviesbyvivek/internal/logger"
	"github.com/vivekyarra/moviesbyvivek/internal/middleware"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Showtimes *handler.ShowtimeHandler
	Orders    *handler.OrderHandler
	Bookings  *handler.BookingHandler
	Admin     *handler.AdminHandler
}

// Options carries the middleware settings.  A nil Redis disables rate
// limiting and response caching.
type Options struct {
	JWTSecret string
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Redis     *redis.Client
	Log       *logger.Logger
}

// RegisterRoutes registers the health check only.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterPublic registers unauthenticated showtime reads.  The list,
// detail and layout answers go through the response cache; occupancy
// has its own cache that settlement invalidates.
func RegisterPublic(e *echo.Echo, h *handler.ShowtimeHandler, opts Options) {
	cached := e.Group("/v1/showtimes", middleware.NewRedisCache(opts.Cache, opts.Redis))
	cached.GET("", h.List)
	cached.GET("/:id", h.Get)
	cached.GET("/:id/layout", h.Layout)
	e.GET("/v1/showtimes/:id/occupied", h.Occupied)
}

// RegisterCustomer registers checkout and booking history.  Every route
// needs a valid token; order creation and confirmation are rate limited.
func RegisterCustomer(e *echo.Echo, hs Handlers, opts Options) {
	g := e.Group("/v1",
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RequireRole(middleware.RoleCustomer, middleware.RoleAdmin),
	)
	limit := middleware.NewTokenBucket(opts.RateLimit, opts.Redis, opts.Log)

	g.POST("/orders", hs.Orders.Create, limit)
	g.GET("/orders/:id", hs.Orders.Get)
	g.DELETE("/orders/:id", hs.Orders.Cancel)
	g.POST("/orders/:id/confirm", hs.Orders.Confirm, limit)
	g.POST("/payments/verify", hs.Orders.Verify, limit)

	g.GET("/bookings", hs.Bookings.List)
	g.GET("/bookings/:id", hs.Bookings.Get)
}

// RegisterAdmin registers showtime scheduling for the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, opts Options) {
	g := e.Group("/v1/admin",
		middleware.JWTAuth(opts.JWTSecret),
		middleware.RequireRole(middleware.RoleAdmin),
	)
	g.POST("/showtimes", h.CreateShowtime)
	g.PUT("/showtimes/:id/layout", h.ReplaceLayout)
}

// Register wires every route group.
func Register(e *echo.Echo, hs Handlers, opts Options) {
	RegisterRoutes(e)
	RegisterPublic(e, hs.Showtimes, opts)
	RegisterCustomer(e, hs, opts)
	RegisterAdmin(e, hs.Admin, opts)
}
