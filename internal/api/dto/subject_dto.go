package dto

import (
	"time"

	"github.com/participa-df/ouvidoria-service/internal/domain"
)

// CreateSubjectRequest payload.
type CreateSubjectRequest struct {
	Name        string             `json:"name"`
	Description *string            `json:"description"`
	Fields      domain.FieldSchema `json:"fields"`
	Active      *bool              `json:"active"`
}

// UpdateSubjectRequest payload. Zero-value fields are left untouched.
type UpdateSubjectRequest struct {
	Name        string             `json:"name"`
	Description *string            `json:"description"`
	Fields      domain.FieldSchema `json:"fields"`
	Active      *bool              `json:"active"`
}

// SubjectResponse projection.
type SubjectResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description *string            `json:"description,omitempty"`
	Fields      domain.FieldSchema `json:"fields"`
	Active      bool               `json:"active"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}
