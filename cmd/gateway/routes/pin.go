package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/justicantus/mediagate/cmd/gateway/container"
	"github.com/justicantus/mediagate/cmd/gateway/handlers"
	"github.com/justicantus/mediagate/common/middleware"
)

// RegisterPinRoutes registers the ingest endpoint
func RegisterPinRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewPinHandler(c.Components, c.Ingest)

	g := e.Group("/pin")
	if c.RateLimiter != nil {
		g.Use(middleware.GlobalRateLimit(c.RateLimiter, c.Components.Config.RateLimit.GlobalLimit))
	}
	g.POST("", h.Pin) // POST /pin
}
