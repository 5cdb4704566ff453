package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/optinhub/optin-manager/internal/api/http/handlers"
	"github.com/optinhub/optin-manager/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Session        *handlers.SessionHandler
	Phone          *handlers.PhoneHandler
	Users          *handlers.UsersHandler
	Campaigns      *handlers.CampaignsHandler
	Providers      *handlers.ProvidersHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)
	app.Get("/session", cfg.Session.Get)
	app.Post("/phone/normalize", cfg.Phone.Normalize)

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	users := protected.Group("/users")
	users.Get("", auth.RequireSupportOrAdmin(), cfg.Users.List)
	users.Post("", auth.RequireAdmin(), cfg.Users.Create)
	users.Delete("/:id", auth.RequireAdmin(), cfg.Users.Delete)

	campaigns := protected.Group("/campaigns")
	campaigns.Get("", auth.RequireSupportOrAdmin(), cfg.Campaigns.List)
	campaigns.Post("", auth.RequireAdmin(), cfg.Campaigns.Create)

	providers := protected.Group("/providers", auth.RequireAdmin())
	providers.Get("/:name", cfg.Providers.Status)
	providers.Put("/:name/credentials", cfg.Providers.SaveCredentials)
	providers.Post("/:name/test", cfg.Providers.Test)
}
