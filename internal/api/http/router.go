package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-portal/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-portal/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Stats          *handlers.StatsHandler
	Export         *handlers.ExportHandler
	Auth           *handlers.AuthHandler
	AuthMiddleware *auth.Middleware
}

// RegisterRoutes wires HTTP routes. Submission and tracking are public; the
// dashboard requires a staff session.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)

	app.Post("/tickets", cfg.Tickets.Submit)
	app.Get("/tickets/track", cfg.Tickets.Track)
	app.Get("/lookups", cfg.Stats.Lookups)

	dashboard := app.Group("/dashboard", cfg.AuthMiddleware.Handle)
	dashboard.Get("/tickets", cfg.Tickets.List)
	dashboard.Get("/tickets/:id", cfg.Tickets.Get)
	dashboard.Patch("/tickets/:id", cfg.Tickets.Update)
	dashboard.Post("/tickets/bulk", cfg.Tickets.BulkUpdate)
	dashboard.Delete("/tickets/:id", cfg.Tickets.Delete)
	dashboard.Post("/refresh", cfg.Tickets.Refresh)
	dashboard.Get("/stats", cfg.Stats.Statistics)
	dashboard.Get("/state", cfg.Stats.State)
	dashboard.Get("/export.csv", cfg.Export.CSV)
	dashboard.Get("/export.xlsx", cfg.Export.XLSX)
}
