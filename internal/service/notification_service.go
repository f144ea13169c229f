package service

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/participa-df/ouvidoria-service/internal/domain"
	"github.com/participa-df/ouvidoria-service/internal/repository"
	apperrors "github.com/participa-df/ouvidoria-service/pkg/util"
)

const notificationListLimit = 5

// NotificationItem is one entry on a user's notification feed.
type NotificationItem struct {
	Kind      string    `json:"kind"`
	Protocol  string    `json:"protocol,omitempty"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// NotificationSummary is the unread badge plus recent items.
type NotificationSummary struct {
	Unread int                `json:"unread"`
	Items  []NotificationItem `json:"items"`
}

// NotificationService derives notifications from thread activity. There is
// no notification table; everything is computed against the user's
// watermark (last time they opened the feed, falling back to last login).
type NotificationService struct {
	users      repository.UserRepository
	messages   repository.MessageRepository
	complaints repository.ComplaintRepository
}

// NewNotificationService builds the service.
func NewNotificationService(users repository.UserRepository, messages repository.MessageRepository, complaints repository.ComplaintRepository) *NotificationService {
	return &NotificationService{users: users, messages: messages, complaints: complaints}
}

// Summary computes the unread count and the most recent items for a user.
// Admins additionally see complaints submitted since their watermark.
func (s *NotificationService) Summary(ctx context.Context, user *domain.User) (*NotificationSummary, error) {
	since := user.NotificationWatermark()

	unread, err := s.messages.CountUnreadSince(ctx, user.ID, since, user.Admin)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	rows, err := s.messages.ListUnreadSince(ctx, user.ID, since, user.Admin, notificationListLimit)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	items := make([]NotificationItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, NotificationItem{
			Kind:      "resposta",
			Protocol:  row.Protocol,
			Title:     "Nova resposta: " + textPreview(row.Text, 40),
			CreatedAt: row.CreatedAt,
		})
	}

	if user.Admin {
		newCount, err := s.complaints.CountCreatedAfter(ctx, since)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		unread += newCount

		newRows, err := s.complaints.ListCreatedAfter(ctx, since, notificationListLimit)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		for _, row := range newRows {
			items = append(items, NotificationItem{
				Kind:      "manifestacao",
				Protocol:  row.Protocol,
				Title:     "Nova: " + row.SubjectName,
				CreatedAt: row.CreatedAt,
			})
		}
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	if len(items) > notificationListLimit {
		items = items[:notificationListLimit]
	}

	return &NotificationSummary{Unread: unread, Items: items}, nil
}

// MarkSeen advances the user's watermark to now, zeroing the unread badge.
func (s *NotificationService) MarkSeen(ctx context.Context, userID string) error {
	if err := s.users.TouchNotificationsSeen(ctx, userID, time.Now()); err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.MapError(err)
	}
	return nil
}
