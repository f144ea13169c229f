package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/participa-df/ouvidoria-service/internal/domain"
	"github.com/participa-df/ouvidoria-service/internal/events"
	"github.com/participa-df/ouvidoria-service/internal/repository"
	apperrors "github.com/participa-df/ouvidoria-service/pkg/util"
)

// ConversationService manages the message thread attached to each complaint.
type ConversationService struct {
	complaints repository.ComplaintRepository
	messages   repository.MessageRepository
	dispatcher events.Dispatcher
}

// PostMessageInput describes a new thread entry.
type PostMessageInput struct {
	ComplaintID  string
	Text         string
	Internal     bool
	StatusChange *string
	Author       *domain.User
}

// NewConversationService builds the service.
func NewConversationService(complaints repository.ComplaintRepository, messages repository.MessageRepository, dispatcher events.Dispatcher) *ConversationService {
	return &ConversationService{complaints: complaints, messages: messages, dispatcher: dispatcher}
}

// ListMessages returns the thread for a complaint. Non-admin callers must
// own the complaint and never see internal notes.
func (s *ConversationService) ListMessages(ctx context.Context, complaintID string, viewer *domain.User) ([]domain.Message, error) {
	complaint, err := s.complaints.GetByID(ctx, complaintID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"id": complaintID})
		}
		return nil, apperrors.MapError(err)
	}

	if !viewer.Admin {
		if complaint.UserID == nil || *complaint.UserID != viewer.ID {
			return nil, apperrors.NewForbidden("complaint belongs to another user")
		}
	}

	msgs, err := s.messages.ListByComplaint(ctx, complaintID, viewer.Admin)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return msgs, nil
}

// PostMessage appends a message to the thread. Admins may mark it internal
// and move the complaint status in the same operation.
func (s *ConversationService) PostMessage(ctx context.Context, input PostMessageInput) (*domain.Message, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, apperrors.NewValidationError("text is required", map[string]any{"field": "text"})
	}
	if !input.Author.Admin {
		if input.Internal {
			return nil, apperrors.NewForbidden("internal notes are restricted to ombudsman staff")
		}
		if input.StatusChange != nil {
			return nil, apperrors.NewForbidden("status changes are restricted to ombudsman staff")
		}
	}

	complaint, err := s.complaints.GetByID(ctx, input.ComplaintID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"id": input.ComplaintID})
		}
		return nil, apperrors.MapError(err)
	}
	if !input.Author.Admin {
		if complaint.UserID == nil || *complaint.UserID != input.Author.ID {
			return nil, apperrors.NewForbidden("complaint belongs to another user")
		}
	}

	var statusChange *domain.ComplaintStatus
	if input.StatusChange != nil {
		next := domain.ComplaintStatus(*input.StatusChange)
		if !domain.ValidStatus(next) {
			return nil, apperrors.NewValidationError("unknown status", map[string]any{"field": "status_change", "value": *input.StatusChange})
		}
		if !complaint.Status.CanTransition(next) {
			return nil, apperrors.NewConflict(fmt.Sprintf("cannot move from %s to %s", complaint.Status, next), nil)
		}
		statusChange = &next
	}

	now := time.Now()
	msg := &domain.Message{
		ID:          uuid.NewString(),
		ComplaintID: complaint.ID,
		AuthorID:    input.Author.ID,
		AuthorName:  input.Author.Name,
		AuthorAdmin: input.Author.Admin,
		Text:        input.Text,
		Internal:    input.Internal,
		CreatedAt:   now,
	}
	if err := s.messages.Create(ctx, msg, statusChange); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	if s.dispatcher != nil {
		actorID := input.Author.ID
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventMessagePosted,
			ComplaintID: complaint.ID,
			ActorID:     &actorID,
			Timestamp:   now,
			Payload: events.MessagePostedPayload{
				MessageID:   msg.ID,
				Internal:    msg.Internal,
				AuthorAdmin: msg.AuthorAdmin,
				TextPreview: textPreview(msg.Text, 40),
			},
		})
		if statusChange != nil {
			_ = s.dispatcher.Publish(ctx, events.Event{
				ID:          uuid.NewString(),
				Type:        events.EventComplaintStatusChanged,
				ComplaintID: complaint.ID,
				ActorID:     &actorID,
				Timestamp:   now,
				Payload: events.ComplaintStatusChangedPayload{
					OldStatus: complaint.Status,
					NewStatus: *statusChange,
				},
			})
		}
	}
	return msg, nil
}

// textPreview truncates to max runes, appending an ellipsis when cut.
func textPreview(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
