package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, memberID, actorID string, typ model.NotificationType) error
	ListByMember(ctx context.Context, memberID string, offset, limit int) ([]model.Notification, error)
	MarkRead(ctx context.Context, memberID, notificationID string) (int64, error)
	CountUnread(ctx context.Context, memberID string) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, memberID, actorID string, typ model.NotificationType) error {
	n := &model.Notification{ID: uuid.New().String(), MemberID: memberID, ActorID: actorID, Type: typ}
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepository) ListByMember(ctx context.Context, memberID string, offset, limit int) ([]model.Notification, error) {
	var ns []model.Notification
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&ns).Error
	return ns, err
}

func (r *notificationRepository) MarkRead(ctx context.Context, memberID, notificationID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("id = ? AND member_id = ?", notificationID, memberID).
		Update("read", true)
	return res.RowsAffected, res.Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, memberID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("member_id = ? AND read = ?", memberID, false).
		Count(&cnt).Error
	return cnt, err
}
