package repository

import (
	"context"

	"github.com/yukikurage/points-api/internal/models"
	"github.com/yukikurage/points-api/internal/utils"
	"gorm.io/gorm"
)

const notificationBatchSize = 200

// GormNotificationRepository is a GORM implementation of NotificationRepository
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *GormNotificationRepository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(notifications, notificationBatchSize).Error
}

// ListByUser returns a user's notifications, newest first
func (r *GormNotificationRepository) ListByUser(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.Notification, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ?", userID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	notifications := []models.Notification{}
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Offset(params.Offset).
		Limit(params.Limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// MarkRead flags a notification as read; it is a no-op for an already read one
func (r *GormNotificationRepository) MarkRead(ctx context.Context, userID, id uint64) error {
	var notification models.Notification
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&notification).Error; err != nil {
		return err
	}
	if notification.Read {
		return nil
	}
	return r.db.WithContext(ctx).Model(&notification).Update("is_read", true).Error
}
