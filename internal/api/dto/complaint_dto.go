package dto

import (
	"time"

	"github.com/participa-df/ouvidoria-service/internal/domain"
)

// ComplaintSummary is the listing projection.
type ComplaintSummary struct {
	ID             string                 `json:"id"`
	Protocol       string                 `json:"protocol"`
	Classification domain.Classification  `json:"classification"`
	Status         domain.ComplaintStatus `json:"status"`
	SubjectID      string                 `json:"subject_id"`
	Anonymous      bool                   `json:"anonymous"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      *time.Time             `json:"updated_at,omitempty"`
}

// ComplaintDetail is the full projection.
type ComplaintDetail struct {
	ID             string                 `json:"id"`
	Protocol       string                 `json:"protocol"`
	Narrative      string                 `json:"narrative"`
	Classification domain.Classification  `json:"classification"`
	Supplementary  map[string]any         `json:"supplementary,omitempty"`
	Anonymous      bool                   `json:"anonymous"`
	Status         domain.ComplaintStatus `json:"status"`
	Subject        *SubjectResponse       `json:"subject,omitempty"`
	Attachments    []AttachmentResponse   `json:"attachments"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      *time.Time             `json:"updated_at,omitempty"`
	CompletedAt    *time.Time             `json:"completed_at,omitempty"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID          string    `json:"id"`
	FileURL     string    `json:"file_url"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// ComplaintListResponse pages summaries.
type ComplaintListResponse struct {
	Items []ComplaintSummary `json:"items"`
	Total int                `json:"total"`
	Skip  int                `json:"skip"`
	Limit int                `json:"limit"`
}

// SubmitComplaintResponse acknowledges intake with the issued protocol.
type SubmitComplaintResponse struct {
	ID        string    `json:"id"`
	Protocol  string    `json:"protocol"`
	Status    string    `json:"status"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// TrackingResponse is the public protocol lookup projection. It carries no
// narrative or submitter data.
type TrackingResponse struct {
	Number        string                 `json:"number"`
	Status        domain.ComplaintStatus `json:"status"`
	DailySequence int                    `json:"daily_sequence"`
	IssuedAt      time.Time              `json:"issued_at"`
	ExpiresAt     time.Time              `json:"expires_at"`
	UpdatedAt     *time.Time             `json:"updated_at,omitempty"`
	CompletedAt   *time.Time             `json:"completed_at,omitempty"`
}
