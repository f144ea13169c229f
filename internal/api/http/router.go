package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/participa-df/ouvidoria-service/internal/api/http/handlers"
	"github.com/participa-df/ouvidoria-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Subjects       *handlers.SubjectsHandler
	Complaints     *handlers.ComplaintsHandler
	Protocols      *handlers.ProtocolsHandler
	Messages       *handlers.MessagesHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
	UploadDir      string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	if cfg.UploadDir != "" {
		app.Static("/uploads", cfg.UploadDir)
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/registrar", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)

	authProtected := authGroup.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	authProtected.Get("/perfil", cfg.Auth.Profile)
	authProtected.Patch("/perfil", cfg.Auth.UpdateProfile)
	authProtected.Post("/notificacoes/visto", cfg.Auth.MarkNotificationsSeen)

	subjects := api.Group("/assuntos")
	subjects.Get("/", cfg.AuthMiddleware.HandleOptional, cfg.Subjects.List)
	subjects.Get("/:id", cfg.Subjects.Get)
	subjectsAdmin := subjects.Group("", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	subjectsAdmin.Post("/", cfg.Subjects.Create)
	subjectsAdmin.Put("/:id", cfg.Subjects.Update)
	subjectsAdmin.Delete("/:id", cfg.Subjects.Delete)

	complaints := api.Group("/manifestacoes")
	complaints.Post("/", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Complaints.Submit)
	complaints.Get("/admin/todas", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Complaints.ListAll)
	complaints.Patch("/:id/status", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Complaints.UpdateStatus)
	complaints.Get("/", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Complaints.List)
	complaints.Get("/:protocolo", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Complaints.GetByProtocol)

	api.Get("/protocolos/:numero", cfg.Protocols.Track)

	messages := api.Group("/movimentacoes", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	messages.Get("/:manifestacaoID", cfg.Messages.List)
	messages.Post("/:manifestacaoID", cfg.Messages.Create)

	api.Get("/notificacoes", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Notifications.Summary)
}
