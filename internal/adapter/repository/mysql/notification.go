package mysql

import (
	"context"
	"errors"

	"chama-ledger/internal/domain/notification"

	"gorm.io/gorm"
)

type NotificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create fails with notification.ErrDuplicate when the event was already recorded.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	err := r.db.WithContext(ctx).Create(n).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return notification.ErrDuplicate
	}
	return err
}

func (r *NotificationRepository) ListByMember(ctx context.Context, memberID string, limit int) ([]notification.Notification, error) {
	var out []notification.Notification
	q := r.db.WithContext(ctx).Where("member_id = ?", memberID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
