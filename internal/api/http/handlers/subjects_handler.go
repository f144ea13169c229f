package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/participa-df/ouvidoria-service/internal/api/dto"
	"github.com/participa-df/ouvidoria-service/internal/auth"
	"github.com/participa-df/ouvidoria-service/internal/domain"
	"github.com/participa-df/ouvidoria-service/internal/service"
	apperrors "github.com/participa-df/ouvidoria-service/pkg/util"
)

// SubjectsHandler manages the complaint category catalog.
type SubjectsHandler struct {
	service *service.SubjectService
}

// NewSubjectsHandler constructs handler.
func NewSubjectsHandler(subjectService *service.SubjectService) *SubjectsHandler {
	return &SubjectsHandler{service: subjectService}
}

// List GET /api/assuntos. Citizens see active subjects only; admins may
// pass ?all=true to include deactivated ones.
func (h *SubjectsHandler) List(c *fiber.Ctx) error {
	activeOnly := true
	if c.Query("all") == "true" {
		principal, ok := auth.PrincipalFromContext(c)
		if ok && principal.IsAdmin() {
			activeOnly = false
		}
	}
	subjects, err := h.service.List(c.UserContext(), activeOnly)
	if err != nil {
		return err
	}
	items := make([]dto.SubjectResponse, 0, len(subjects))
	for i := range subjects {
		items = append(items, subjectResponse(&subjects[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /api/assuntos/:id.
func (h *SubjectsHandler) Get(c *fiber.Ctx) error {
	subject, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": subjectResponse(subject)})
}

// Create POST /api/assuntos (admin).
func (h *SubjectsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	subject, err := h.service.Create(c.UserContext(), service.SubjectInput{
		Name:        req.Name,
		Description: req.Description,
		Fields:      req.Fields,
		Active:      req.Active,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": subjectResponse(subject)})
}

// Update PUT /api/assuntos/:id (admin).
func (h *SubjectsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	subject, err := h.service.Update(c.UserContext(), c.Params("id"), service.SubjectInput{
		Name:        req.Name,
		Description: req.Description,
		Fields:      req.Fields,
		Active:      req.Active,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": subjectResponse(subject)})
}

// Delete DELETE /api/assuntos/:id (admin).
func (h *SubjectsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func subjectResponse(subject *domain.Subject) dto.SubjectResponse {
	fields := subject.Fields
	if fields == nil {
		fields = domain.FieldSchema{}
	}
	return dto.SubjectResponse{
		ID:          subject.ID,
		Name:        subject.Name,
		Description: subject.Description,
		Fields:      fields,
		Active:      subject.Active,
		CreatedAt:   subject.CreatedAt,
		UpdatedAt:   subject.UpdatedAt,
	}
}
