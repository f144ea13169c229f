package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/participa-df/ouvidoria-service/internal/domain"
	"github.com/participa-df/ouvidoria-service/internal/repository"
	apperrors "github.com/participa-df/ouvidoria-service/pkg/util"
)

const subjectCacheKey = "subjects:active"

// SubjectService manages the complaint category catalog. The active listing
// is cached in Redis because it is read on every intake form load.
type SubjectService struct {
	subjects repository.SubjectRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// SubjectInput carries create/update fields for a subject.
type SubjectInput struct {
	Name        string
	Description *string
	Fields      domain.FieldSchema
	Active      *bool
}

// NewSubjectService builds the service. cache may be nil in tests.
func NewSubjectService(subjects repository.SubjectRepository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *SubjectService {
	return &SubjectService{subjects: subjects, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Create adds a subject after checking the name is not taken.
func (s *SubjectService) Create(ctx context.Context, input SubjectInput) (*domain.Subject, error) {
	if input.Name == "" {
		return nil, apperrors.NewValidationError("name is required", map[string]any{"field": "name"})
	}
	if err := input.Fields.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "fields"})
	}

	if _, err := s.subjects.GetByName(ctx, input.Name); err == nil {
		return nil, apperrors.NewDuplicateName("subject name already exists")
	} else if err != pgx.ErrNoRows {
		return nil, apperrors.MapError(err)
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}
	subject := &domain.Subject{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Fields:      input.Fields,
		Active:      active,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	s.invalidateCache(ctx)
	return subject, nil
}

// Update modifies an existing subject.
func (s *SubjectService) Update(ctx context.Context, id string, input SubjectInput) (*domain.Subject, error) {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("subject", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}

	if input.Name != "" && input.Name != subject.Name {
		if _, err := s.subjects.GetByName(ctx, input.Name); err == nil {
			return nil, apperrors.NewDuplicateName("subject name already exists")
		} else if err != pgx.ErrNoRows {
			return nil, apperrors.MapError(err)
		}
		subject.Name = input.Name
	}
	if input.Description != nil {
		subject.Description = input.Description
	}
	if input.Fields != nil {
		if err := input.Fields.Validate(); err != nil {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "fields"})
		}
		subject.Fields = input.Fields
	}
	if input.Active != nil {
		subject.Active = *input.Active
	}

	if err := s.subjects.Update(ctx, subject); err != nil {
		return nil, apperrors.NewPersistenceError(err)
	}
	s.invalidateCache(ctx)
	return subject, nil
}

// Delete removes a subject. Subjects referenced by complaints cannot be
// deleted; deactivate them instead.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	count, err := s.subjects.CountComplaints(ctx, id)
	if err != nil {
		return apperrors.MapError(err)
	}
	if count > 0 {
		return apperrors.NewConflict("subject has complaints; deactivate it instead", map[string]any{"complaints": count})
	}

	if err := s.subjects.Delete(ctx, id); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("subject", map[string]any{"id": id})
		}
		return apperrors.MapError(err)
	}
	s.invalidateCache(ctx)
	return nil
}

// Get fetches one subject by id.
func (s *SubjectService) Get(ctx context.Context, id string) (*domain.Subject, error) {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("subject", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return subject, nil
}

// List returns subjects ordered by name. Active-only listings are served
// from cache when possible.
func (s *SubjectService) List(ctx context.Context, activeOnly bool) ([]domain.Subject, error) {
	if activeOnly && s.cache != nil {
		if raw, err := s.cache.Get(ctx, subjectCacheKey).Bytes(); err == nil {
			var cached []domain.Subject
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	subjects, err := s.subjects.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if activeOnly && s.cache != nil {
		if raw, err := json.Marshal(subjects); err == nil {
			if err := s.cache.Set(ctx, subjectCacheKey, raw, s.cacheTTL).Err(); err != nil && s.logger != nil {
				s.logger.Warn("subject cache write failed", zap.Error(err))
			}
		}
	}
	return subjects, nil
}

func (s *SubjectService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, subjectCacheKey).Err(); err != nil && s.logger != nil {
		s.logger.Warn("subject cache invalidation failed", zap.Error(err))
	}
}
