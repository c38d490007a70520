package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/repository"
	"github.com/yukikurage/points-api/internal/utils"
)

// NotificationService reads the notification store and lets admins write to it.
type NotificationService struct {
	repo     repository.NotificationRepository
	notifier Notifier
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo repository.NotificationRepository, notifier Notifier) *NotificationService {
	return &NotificationService{repo: repo, notifier: notifier}
}

// ListForUser returns a page of the user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.Notification, int64, error) {
	notifications, total, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, total, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint64) error {
	if err := s.repo.MarkRead(ctx, userID, notificationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// Send queues a notification for the given users and returns how many were targeted.
func (s *NotificationService) Send(ctx context.Context, userIDs []uint64, title, body string) (int, error) {
	ids := lo.Uniq(lo.Filter(userIDs, func(id uint64, _ int) bool { return id != 0 }))
	if len(ids) == 0 {
		return 0, ErrNoRecipients
	}
	if strings.TrimSpace(title) == "" {
		return 0, ErrEmptyMessage
	}

	s.notifier.NotifyMany(ctx, ids, strings.TrimSpace(title), body)
	return len(ids), nil
}
