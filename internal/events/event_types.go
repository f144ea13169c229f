package events

import (
	"time"

	"github.com/participa-df/ouvidoria-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintSubmitted     EventType = "complaint_submitted"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventMessagePosted          EventType = "message_posted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	ActorID     *string     `json:"actor_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintSubmittedPayload payload.
type ComplaintSubmittedPayload struct {
	Protocol       string                `json:"protocol"`
	SubjectID      string                `json:"subject_id"`
	Classification domain.Classification `json:"classification"`
	Anonymous      bool                  `json:"anonymous"`
	Attachments    int                   `json:"attachments"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
}

// MessagePostedPayload payload.
type MessagePostedPayload struct {
	MessageID   string `json:"message_id"`
	Internal    bool   `json:"internal"`
	AuthorAdmin bool   `json:"author_admin"`
	TextPreview string `json:"text_preview"`
}
