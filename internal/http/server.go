// README: HTTP router; wires handlers, middleware, and routes.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"tamarind/internal/config"
	"tamarind/internal/http/handlers"
	"tamarind/internal/http/middleware"
	"tamarind/internal/livesync"
	"tamarind/internal/modules/booking"
	"tamarind/internal/modules/driver"
	"tamarind/internal/modules/route"
	"tamarind/internal/modules/session"
)

type ServerDeps struct {
	Bookings *booking.Service
	Routes   *route.Service
	Sessions *session.Service
	Drivers  *driver.Service
	ETA      *route.Estimator
	Sync     *livesync.Poller
	Config   config.Config
	Log      *zap.Logger
}

func NewRouter(deps ServerDeps) http.Handler {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.Logging(deps.Log))

	bookingHandler := handlers.NewBookingHandler(deps.Bookings)
	routeHandler := handlers.NewRouteHandler(deps.Routes, deps.ETA, deps.Sync)
	catalogHandler := handlers.NewCatalogHandler(deps.Sessions)
	adminHandler := handlers.NewAdminHandler(deps.Sessions)
	driverHandler := handlers.NewDriverHandler(deps.Drivers)

	catalogCache := gocache.New(deps.Config.Catalog.CacheTTL, 2*deps.Config.Catalog.CacheTTL)
	r.GET("/api/sessions", middleware.Cache(catalogCache, deps.Config.Catalog.CacheTTL), catalogHandler.List)
	r.GET("/api/availability", bookingHandler.Availability)

	limit := middleware.RateLimiter(rate.Limit(deps.Config.Booking.RateLimitPerSec), deps.Config.Booking.RateLimitBurst)
	r.POST("/api/bookings", limit, bookingHandler.Create)
	r.GET("/api/bookings/:id", bookingHandler.Get)
	r.POST("/api/bookings/:id/cancel", bookingHandler.Cancel)
	r.POST("/api/bookings/:id/advance", routeHandler.Advance)
	r.POST("/api/bookings/:id/reassign", routeHandler.Reassign)
	r.POST("/api/bookings/:id/route-order", bookingHandler.SetRouteOrder)

	r.GET("/api/routes", routeHandler.List)
	r.GET("/api/routes/etas", routeHandler.ETAs)
	r.GET("/api/routes/stream", routeHandler.Stream)

	r.GET("/api/drivers", driverHandler.List)
	r.POST("/api/drivers/:id/duty", driverHandler.SetDuty)

	r.PUT("/api/admin/overrides", adminHandler.PutOverride)
	r.DELETE("/api/admin/overrides", adminHandler.DeleteOverride)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
