package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/participa-df/ouvidoria-service/internal/api/dto"
	"github.com/participa-df/ouvidoria-service/internal/service"
)

// ProtocolsHandler serves public protocol tracking. No authentication is
// required; the projection never exposes narrative or submitter data.
type ProtocolsHandler struct {
	service *service.ComplaintService
}

// NewProtocolsHandler constructs handler.
func NewProtocolsHandler(complaintService *service.ComplaintService) *ProtocolsHandler {
	return &ProtocolsHandler{service: complaintService}
}

// Track GET /api/protocolos/:numero.
func (h *ProtocolsHandler) Track(c *fiber.Ctx) error {
	row, err := h.service.Track(c.UserContext(), c.Params("numero"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TrackingResponse{
		Number:        row.Number,
		Status:        row.Status,
		DailySequence: row.DailySequence,
		IssuedAt:      row.IssuedAt,
		ExpiresAt:     row.ExpiresAt,
		UpdatedAt:     row.UpdatedAt,
		CompletedAt:   row.CompletedAt,
	}})
}
