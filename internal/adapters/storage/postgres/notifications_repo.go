package postgres

import (
	"context"

	"gorm.io/gorm"

	"petrack/internal/domain/notifications"
)

type NotificationsRepo struct {
	db *gorm.DB
}

func NewNotificationsRepo(db *gorm.DB) *NotificationsRepo {
	return &NotificationsRepo{db: db}
}

func (r *NotificationsRepo) Create(ctx context.Context, n notifications.Notification) error {
	rec := fromNotification(n)
	return r.db.WithContext(ctx).Create(&rec).Error
}

// Update sólo persiste el flag de lectura; el resto es inmutable.
func (r *NotificationsRepo) Update(ctx context.Context, n notifications.Notification) error {
	res := r.db.WithContext(ctx).
		Model(&notificationRecord{ID: n.ID}).
		Update("is_read", n.IsRead)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notifications.ErrNotFound
	}
	return nil
}

func (r *NotificationsRepo) GetByID(ctx context.Context, id string) (notifications.Notification, error) {
	var rec notificationRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return notifications.Notification{}, notFound(err, notifications.ErrNotFound)
	}
	return rec.toDomain(), nil
}

func (r *NotificationsRepo) ListByUser(ctx context.Context, userID string) ([]notifications.Notification, error) {
	var recs []notificationRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id").Find(&recs).Error; err != nil {
		return nil, err
	}
	out := make([]notifications.Notification, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

func (r *NotificationsRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&notificationRecord{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return int(n), err
}
