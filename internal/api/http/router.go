package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fleetops/sts-service/internal/api/http/handlers"
	"github.com/fleetops/sts-service/internal/auth"
	"github.com/fleetops/sts-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Tickets        *handlers.TicketsHandler
	SlaAdmin       *handlers.SlaAdminHandler
	Cases          *handlers.CasesHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Accounts.Register)
	authGroup.Post("/login", cfg.Accounts.Login)
	authGroup.Post("/password/reset/request", cfg.Accounts.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Accounts.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireRole(), cfg.Accounts.ChangePassword)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireRole())
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Post("/:id/status", auth.RequireRole(domain.RoleTechnician, domain.RoleAdmin), cfg.Tickets.ChangeStatus)
	tickets.Post("/:id/assign", auth.RequireRole(domain.RoleTechnician, domain.RoleAdmin), cfg.Tickets.Assign)

	admin := app.Group("/admin/sla", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	admin.Put("/policies", cfg.SlaAdmin.UpsertPolicies)
	admin.Get("/policies", cfg.SlaAdmin.ListPolicies)
	admin.Delete("/policies/:id", cfg.SlaAdmin.DeletePolicy)
	admin.Post("/windows", cfg.SlaAdmin.CreateWindow)
	admin.Get("/windows", cfg.SlaAdmin.ListWindows)
	admin.Delete("/windows/:id", cfg.SlaAdmin.DeleteWindow)

	internal := app.Group("/internal", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin))
	internal.Post("/cases/:caseId/close-tickets", cfg.Cases.CloseTickets)
}
