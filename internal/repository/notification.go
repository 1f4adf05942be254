package repository

import (
	"context"

	"samplepedia/internal/cache"
	"samplepedia/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]*models.Notification, error)
	TopUnread(ctx context.Context, recipientID uint, limit int) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
	MarkRead(ctx context.Context, id, recipientID uint) error
	MarkAllRead(ctx context.Context, recipientID uint) error
	Delete(ctx context.Context, id, recipientID uint) error
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUnreadCount(ctx, n.RecipientID)
	return nil
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID uint, limit, offset int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.WithContext(ctx).
		Preload("Actor").
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return notifications, nil
}

func (r *notificationRepository) TopUnread(ctx context.Context, recipientID uint, limit int) ([]*models.Notification, error) {
	var notifications []*models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND unread = ?", recipientID, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return notifications, nil
}

// UnreadCount serves from a short-lived cache entry; every write path for the
// recipient invalidates it, so the badge poll doesn't hammer Postgres.
func (r *notificationRepository) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := cache.Aside(ctx, cache.UnreadCountKey(recipientID), &count, cache.UnreadCountTTL, func() error {
		return r.db.WithContext(ctx).
			Model(&models.Notification{}).
			Where("recipient_id = ? AND unread = ?", recipientID, true).
			Count(&count).Error
	})
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// MarkRead is recipient-scoped; a notification id belonging to someone else
// is treated as not found.
func (r *notificationRepository) MarkRead(ctx context.Context, id, recipientID uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("unread", false)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	cache.InvalidateUnreadCount(ctx, recipientID)
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uint) error {
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND unread = ?", recipientID, true).
		Update("unread", false).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateUnreadCount(ctx, recipientID)
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, id, recipientID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	cache.InvalidateUnreadCount(ctx, recipientID)
	return nil
}
