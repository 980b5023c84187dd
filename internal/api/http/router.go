package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/joey603/sidour-avoda/internal/api/http/handlers"
	"github.com/joey603/sidour-avoda/internal/auth"
	"github.com/joey603/sidour-avoda/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Sites          *handlers.SitesHandler
	Public         *handlers.PublicHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	app.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	director := app.Group("/director", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleDirector))
	director.Get("/sites/", cfg.Sites.List)
	director.Post("/sites/", cfg.Sites.Create)
	director.Delete("/sites/:id", cfg.Sites.Delete)

	public := app.Group("/public")
	public.Get("/sites/:id/info", cfg.Public.SiteInfo)
	public.Post("/sites/:id/register", cfg.Public.RegisterWorker)
}
