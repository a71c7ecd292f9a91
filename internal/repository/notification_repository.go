package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"family-planner/internal/model"
)

// NotificationLogRepository stores delivery attempts. The log is append-only:
// there are no update or delete methods on purpose.
type NotificationLogRepository struct {
	db *gorm.DB
}

func NewNotificationLogRepository(db *gorm.DB) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

// Insert appends one delivery attempt. A violation of the dedup unique index
// surfaces as gorm.ErrDuplicatedKey for the caller to interpret.
func (r *NotificationLogRepository) Insert(ctx context.Context, entry *model.NotificationLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			return err
		}
		return fmt.Errorf("insert notification log: %w", err)
	}
	return nil
}

// CountSince counts attempts for (user, task, type) with sent_at >= since,
// regardless of status.
func (r *NotificationLogRepository) CountSince(ctx context.Context, userID, taskID, notificationType string, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.NotificationLogEntry{}).
		Where("user_id = ? AND task_id = ? AND notification_type = ? AND sent_at >= ?",
			userID, taskID, notificationType, since).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count notification log: %w", err)
	}
	return count, nil
}
