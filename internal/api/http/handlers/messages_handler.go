package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/participa-df/ouvidoria-service/internal/api/dto"
	"github.com/participa-df/ouvidoria-service/internal/auth"
	"github.com/participa-df/ouvidoria-service/internal/domain"
	"github.com/participa-df/ouvidoria-service/internal/service"
	apperrors "github.com/participa-df/ouvidoria-service/pkg/util"
)

// MessagesHandler serves the complaint conversation thread.
type MessagesHandler struct {
	service *service.ConversationService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(conversationService *service.ConversationService) *MessagesHandler {
	return &MessagesHandler{service: conversationService}
}

// List GET /api/movimentacoes/:manifestacaoID.
func (h *MessagesHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	msgs, err := h.service.ListMessages(c.UserContext(), c.Params("manifestacaoID"), principal.User)
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, messageResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Create POST /api/movimentacoes/:manifestacaoID.
func (h *MessagesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	msg, err := h.service.PostMessage(c.UserContext(), service.PostMessageInput{
		ComplaintID:  c.Params("manifestacaoID"),
		Text:         req.Text,
		Internal:     req.Internal,
		StatusChange: req.StatusChange,
		Author:       principal.User,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": messageResponse(msg)})
}

func messageResponse(msg *domain.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:          msg.ID,
		ComplaintID: msg.ComplaintID,
		AuthorID:    msg.AuthorID,
		AuthorName:  msg.AuthorName,
		AuthorAdmin: msg.AuthorAdmin,
		Text:        msg.Text,
		Internal:    msg.Internal,
		CreatedAt:   msg.CreatedAt,
	}
}
