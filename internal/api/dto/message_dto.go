package dto

import "time"

// CreateMessageRequest payload.
type CreateMessageRequest struct {
	Text         string  `json:"text"`
	Internal     bool    `json:"internal"`
	StatusChange *string `json:"status_change,omitempty"`
}

// MessageResponse projection.
type MessageResponse struct {
	ID          string    `json:"id"`
	ComplaintID string    `json:"complaint_id"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	AuthorAdmin bool      `json:"author_admin"`
	Text        string    `json:"text"`
	Internal    bool      `json:"internal"`
	CreatedAt   time.Time `json:"created_at"`
}
