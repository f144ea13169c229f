package handlers

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/participa-df/ouvidoria-service/internal/api/dto"
	"github.com/participa-df/ouvidoria-service/internal/auth"
	"github.com/participa-df/ouvidoria-service/internal/domain"
	"github.com/participa-df/ouvidoria-service/internal/service"
	"github.com/participa-df/ouvidoria-service/internal/storage"
	apperrors "github.com/participa-df/ouvidoria-service/pkg/util"
)

// ComplaintsHandler serves manifestation intake and listing endpoints.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// Submit POST /api/manifestacoes. Accepts multipart form data so narrative,
// supplementary fields and attachments arrive in one request. A session is
// required even for anonymous submissions; the anonymity flag only suppresses
// the stored owner link.
func (h *ComplaintsHandler) Submit(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}

	input := service.SubmitInput{
		Narrative:      c.FormValue("narrative"),
		Classification: c.FormValue("classification"),
		SubjectID:      c.FormValue("subject_id"),
		Anonymous:      c.FormValue("anonymous") == "true",
		UserID:         &principal.User.ID,
	}

	if raw := c.FormValue("supplementary"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Supplementary); err != nil {
			return apperrors.NewValidationError("supplementary must be a JSON object", map[string]any{"field": "supplementary"})
		}
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, header := range form.File["files"] {
			upload, err := readUpload(header)
			if err != nil {
				return apperrors.NewValidationError("unreadable file upload", map[string]any{"file": header.Filename})
			}
			input.Files = append(input.Files, *upload)
		}
	}

	complaint, entry, err := h.service.Submit(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.SubmitComplaintResponse{
		ID:        complaint.ID,
		Protocol:  complaint.Protocol,
		Status:    string(complaint.Status),
		ExpiresAt: entry.ExpiresAt,
	}})
}

// List GET /api/manifestacoes. Citizens see their own complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	skip, limit := paginationQuery(c)
	items, total, err := h.service.List(c.UserContext(), skip, limit, &principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintListResponse(items, total, skip, limit)})
}

// ListAll GET /api/manifestacoes/admin/todas (admin).
func (h *ComplaintsHandler) ListAll(c *fiber.Ctx) error {
	skip, limit := paginationQuery(c)
	items, total, err := h.service.List(c.UserContext(), skip, limit, nil)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintListResponse(items, total, skip, limit)})
}

// GetByProtocol GET /api/manifestacoes/:protocolo. Owners and admins see
// the full record.
func (h *ComplaintsHandler) GetByProtocol(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	complaint, err := h.service.GetByProtocol(c.UserContext(), c.Params("protocolo"))
	if err != nil {
		return err
	}
	if complaint == nil {
		return apperrors.NewNotFound("complaint", map[string]any{"protocol": c.Params("protocolo")})
	}
	if !principal.IsAdmin() {
		if complaint.UserID == nil || *complaint.UserID != principal.User.ID {
			return apperrors.NewForbidden("complaint belongs to another user")
		}
	}
	return c.JSON(fiber.Map{"data": complaintDetail(complaint)})
}

// UpdateStatus PATCH /api/manifestacoes/:id/status (admin).
func (h *ComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}
	complaint, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), req.Status, &principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintDetail(complaint)})
}

func readUpload(header *multipart.FileHeader) (*storage.UploadInput, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &storage.UploadInput{
		FileName:    header.Filename,
		Body:        body,
		ContentType: header.Header.Get("Content-Type"),
	}, nil
}

func paginationQuery(c *fiber.Ctx) (skip, limit int) {
	skip = queryInt(c.Query("skip"), 0)
	limit = queryInt(c.Query("limit"), 10)
	if limit > 100 {
		limit = 100
	}
	return skip, limit
}

func queryInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}

func complaintListResponse(items []domain.Complaint, total, skip, limit int) dto.ComplaintListResponse {
	summaries := make([]dto.ComplaintSummary, 0, len(items))
	for i := range items {
		summaries = append(summaries, complaintSummary(&items[i]))
	}
	return dto.ComplaintListResponse{Items: summaries, Total: total, Skip: skip, Limit: limit}
}

func complaintSummary(complaint *domain.Complaint) dto.ComplaintSummary {
	return dto.ComplaintSummary{
		ID:             complaint.ID,
		Protocol:       complaint.Protocol,
		Classification: complaint.Classification,
		Status:         complaint.Status,
		SubjectID:      complaint.SubjectID,
		Anonymous:      complaint.Anonymous,
		CreatedAt:      complaint.CreatedAt,
		UpdatedAt:      complaint.UpdatedAt,
	}
}

func complaintDetail(complaint *domain.Complaint) dto.ComplaintDetail {
	attachments := make([]dto.AttachmentResponse, 0, len(complaint.Attachments))
	for _, att := range complaint.Attachments {
		attachments = append(attachments, dto.AttachmentResponse{
			ID:          att.ID,
			FileURL:     att.FileURL,
			ContentType: att.ContentType,
			SizeBytes:   att.SizeBytes,
			UploadedAt:  att.UploadedAt,
		})
	}

	detail := dto.ComplaintDetail{
		ID:             complaint.ID,
		Protocol:       complaint.Protocol,
		Narrative:      complaint.Narrative,
		Classification: complaint.Classification,
		Supplementary:  complaint.Supplementary,
		Anonymous:      complaint.Anonymous,
		Status:         complaint.Status,
		Attachments:    attachments,
		CreatedAt:      complaint.CreatedAt,
		UpdatedAt:      complaint.UpdatedAt,
		CompletedAt:    complaint.CompletedAt,
	}
	if complaint.Subject != nil {
		resp := subjectResponse(complaint.Subject)
		detail.Subject = &resp
	}
	return detail
}
