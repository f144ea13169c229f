package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/participa-df/ouvidoria-service/internal/auth"
	"github.com/participa-df/ouvidoria-service/internal/service"
	apperrors "github.com/participa-df/ouvidoria-service/pkg/util"
)

// NotificationsHandler serves the derived notification feed.
type NotificationsHandler struct {
	service *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{service: notificationService}
}

// Summary GET /api/notificacoes.
func (h *NotificationsHandler) Summary(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	summary, err := h.service.Summary(c.UserContext(), principal.User)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}
