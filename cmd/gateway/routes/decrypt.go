package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/justicantus/mediagate/cmd/gateway/container"
	"github.com/justicantus/mediagate/cmd/gateway/handlers"
	"github.com/justicantus/mediagate/common/middleware"
)

// RegisterDecryptRoutes registers the egress endpoint
func RegisterDecryptRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewDecryptHandler(c.Components, c.Egress)

	g := e.Group("/decrypt")
	if c.RateLimiter != nil {
		g.Use(middleware.GlobalRateLimit(c.RateLimiter, c.Components.Config.RateLimit.GlobalLimit))
		g.Use(middleware.AccountRateLimit(c.RateLimiter, c.Components.Config.RateLimit.AccountLimit))
	}
	g.GET("", h.Decrypt) // GET /decrypt?cid=&account=&signature=
}
