package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/justicantus/mediagate/cmd/gateway/container"
	"github.com/justicantus/mediagate/cmd/gateway/routes"
	"github.com/justicantus/mediagate/common/bootstrap"
	"github.com/justicantus/mediagate/common/server"
)

func main() {
	// Bootstrap common components (config, logger)
	components, err := bootstrap.Setup("gateway")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap gateway: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown()

	// Initialize service container (all clients and services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	// Initialize Echo server
	e := setupEcho()

	// Setup middleware
	setupMiddleware(e, serviceContainer)

	// Setup health check
	setupHealthCheck(e)

	// Register all routes
	registerRoutes(e, serviceContainer)

	// Start server with graceful shutdown
	srv := server.New("gateway", components.Config.Service.Port, e, components.Logger)
	if err := srv.Start(); err != nil {
		components.Logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server.
// CORS is restricted to the configured origins; only the two endpoint
// methods (plus preflight) are allowed cross-origin.
func setupMiddleware(e *echo.Echo, c *container.Container) {
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: c.Components.Config.CORS.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "gateway",
		})
	})
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	routes.RegisterPinRoutes(e, serviceContainer)
	routes.RegisterDecryptRoutes(e, serviceContainer)
}
