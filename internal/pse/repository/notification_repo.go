package repository

import (
	"context"

	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"gorm.io/gorm"
)

// NotificationRepository stores in-app notifications.
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// FindRecent returns the newest notifications visible to userID: broadcast
// ones plus those addressed to the user.
func (r *NotificationRepository) FindRecent(ctx context.Context, userID string, limit int) ([]entity.Notification, error) {
	var items []entity.Notification
	query := r.db.WithContext(ctx).Model(&entity.Notification{})
	if userID != "" {
		query = query.Where("user_id IS NULL OR user_id = ?", userID)
	}
	err := query.Order("created_at DESC").Limit(limit).Find(&items).Error
	return items, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("is_read = ?", false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
