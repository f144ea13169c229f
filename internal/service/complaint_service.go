package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/participa-df/ouvidoria-service/internal/config"
	"github.com/participa-df/ouvidoria-service/internal/domain"
	"github.com/participa-df/ouvidoria-service/internal/events"
	"github.com/participa-df/ouvidoria-service/internal/repository"
	"github.com/participa-df/ouvidoria-service/internal/storage"
	apperrors "github.com/participa-df/ouvidoria-service/pkg/util"
)

// ComplaintService handles intake, listing and status management.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	subjects   repository.SubjectRepository
	protocols  repository.ProtocolRepository
	files      storage.FileStore
	dispatcher events.Dispatcher
	protocol   config.ProtocolConfig
	logger     *zap.Logger
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	SubjectRepo   repository.SubjectRepository
	ProtocolRepo  repository.ProtocolRepository
	FileStore     storage.FileStore
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// SubmitInput is a fully parsed intake request.
type SubmitInput struct {
	Narrative      string
	Classification string
	SubjectID      string
	Supplementary  map[string]any
	Anonymous      bool
	UserID         *string
	Files          []storage.UploadInput
}

// NewComplaintService builds the service.
func NewComplaintService(cfg config.Config, deps ComplaintDependencies) *ComplaintService {
	return &ComplaintService{
		complaints: deps.ComplaintRepo,
		subjects:   deps.SubjectRepo,
		protocols:  deps.ProtocolRepo,
		files:      deps.FileStore,
		dispatcher: deps.Dispatcher,
		protocol:   cfg.Protocol,
		logger:     deps.Logger,
	}
}

// Submit validates and persists a new complaint, issuing its protocol number
// atomically with the complaint row.
func (s *ComplaintService) Submit(ctx context.Context, input SubmitInput) (*domain.Complaint, *domain.ProtocolEntry, error) {
	if strings.TrimSpace(input.Narrative) == "" {
		return nil, nil, apperrors.NewValidationError("narrative is required", map[string]any{"field": "narrative"})
	}
	classification := domain.Classification(input.Classification)
	if !domain.ValidClassification(classification) {
		return nil, nil, apperrors.NewValidationError("unknown classification", map[string]any{"field": "classification", "value": input.Classification})
	}
	if input.Anonymous {
		input.UserID = nil
	}

	subject, err := s.subjects.GetByID(ctx, input.SubjectID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, apperrors.NewValidationError("unknown subject", map[string]any{"field": "subject_id"})
		}
		return nil, nil, apperrors.MapError(err)
	}
	if !subject.Active {
		return nil, nil, apperrors.NewValidationError("subject is inactive", map[string]any{"field": "subject_id"})
	}
	if err := subject.Fields.ValidateData(input.Supplementary); err != nil {
		return nil, nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "supplementary"})
	}

	now := time.Now()
	complaintID := uuid.NewString()

	// Files are written before the DB transaction; a failed transaction
	// leaves orphan files on disk rather than a complaint without files.
	attachments := make([]domain.Attachment, 0, len(input.Files))
	for _, file := range input.Files {
		saved, err := s.files.Save(ctx, file)
		if err != nil {
			return nil, nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "files", "file": file.FileName})
		}
		attachments = append(attachments, domain.Attachment{
			ID:          uuid.NewString(),
			ComplaintID: complaintID,
			FileURL:     saved.URL,
			ContentType: file.ContentType,
			SizeBytes:   saved.SizeBytes,
			UploadedAt:  now,
		})
	}

	number := s.newProtocolNumber(now)
	complaint := &domain.Complaint{
		ID:             complaintID,
		Protocol:       number,
		Narrative:      input.Narrative,
		Classification: classification,
		Supplementary:  input.Supplementary,
		Anonymous:      input.Anonymous,
		Status:         domain.StatusPending,
		SubjectID:      subject.ID,
		UserID:         input.UserID,
		Attachments:    attachments,
		CreatedAt:      now,
	}
	entry := &domain.ProtocolEntry{
		Number:      number,
		ComplaintID: complaintID,
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.protocol.Deadline()),
	}

	if err := s.complaints.CreateWithProtocol(ctx, complaint, entry); err != nil {
		return nil, nil, apperrors.NewPersistenceError(err)
	}
	complaint.Subject = subject

	if s.logger != nil {
		s.logger.Info("complaint submitted",
			zap.String("protocol", number),
			zap.String("subject_id", subject.ID),
			zap.Bool("anonymous", input.Anonymous),
			zap.Int("attachments", len(attachments)),
		)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventComplaintSubmitted,
			ComplaintID: complaint.ID,
			ActorID:     input.UserID,
			Timestamp:   now,
			Payload: events.ComplaintSubmittedPayload{
				Protocol:       number,
				SubjectID:      subject.ID,
				Classification: classification,
				Anonymous:      input.Anonymous,
				Attachments:    len(attachments),
			},
		})
	}
	return complaint, entry, nil
}

// newProtocolNumber builds PREFIX-YYYYMMDD-SUFFIX where the suffix is an
// opaque six character uppercase token. The date part is the UTC calendar
// day, matching how the ledger groups daily sequences.
func (s *ComplaintService) newProtocolNumber(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", s.protocol.Prefix, at.UTC().Format("20060102"), suffix)
}

// GetByProtocol loads a complaint with subject and attachments. Returns
// (nil, nil) for an unknown protocol so callers can answer "not found"
// without treating it as a failure.
func (s *ComplaintService) GetByProtocol(ctx context.Context, protocol string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByProtocol(ctx, protocol)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaint, nil
}

// List pages complaints newest first. A non-nil ownerID restricts the
// result to that user's complaints.
func (s *ComplaintService) List(ctx context.Context, skip, limit int, ownerID *string) ([]domain.Complaint, int, error) {
	items, total, err := s.complaints.List(ctx, skip, limit, ownerID)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return items, total, nil
}

// Track answers a public protocol lookup.
func (s *ComplaintService) Track(ctx context.Context, number string) (*repository.TrackingRow, error) {
	// A malformed number cannot exist, so it answers the same way an
	// unknown one does.
	if !domain.ValidProtocolNumber(number) {
		return nil, apperrors.NewNotFound("protocol", map[string]any{"number": number})
	}
	row, err := s.protocols.Track(ctx, number)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("protocol", map[string]any{"number": number})
		}
		return nil, apperrors.MapError(err)
	}
	return row, nil
}

// UpdateStatus moves a complaint to a new status (admin operation).
func (s *ComplaintService) UpdateStatus(ctx context.Context, id string, status string, actorID *string) (*domain.Complaint, error) {
	next := domain.ComplaintStatus(status)
	if !domain.ValidStatus(next) {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"field": "status", "value": status})
	}

	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if !complaint.Status.CanTransition(next) {
		return nil, apperrors.NewConflict(fmt.Sprintf("cannot move from %s to %s", complaint.Status, next), nil)
	}

	now := time.Now()
	if err := s.complaints.UpdateStatus(ctx, id, next, now); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventComplaintStatusChanged,
			ComplaintID: complaint.ID,
			ActorID:     actorID,
			Timestamp:   now,
			Payload: events.ComplaintStatusChangedPayload{
				OldStatus: complaint.Status,
				NewStatus: next,
			},
		})
	}

	complaint.Status = next
	complaint.UpdatedAt = &now
	if next.IsTerminal() {
		complaint.CompletedAt = &now
	}
	return complaint, nil
}
