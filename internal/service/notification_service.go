package service

import (
	"context"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
)

// NotificationService 通知查询与已读标记
type NotificationService struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationService(notificationRepo repository.NotificationRepository) *NotificationService {
	return &NotificationService{notificationRepo: notificationRepo}
}

// GetMyNotifications 按时间倒序分页
func (s *NotificationService) GetMyNotifications(ctx context.Context, loginID string, page, pageSize int) ([]model.Notification, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.notificationRepo.ListByMember(ctx, loginID, (page-1)*pageSize, pageSize)
}

// MarkRead 只能标记自己的通知，找不到按无效请求处理
func (s *NotificationService) MarkRead(ctx context.Context, loginID, notificationID string) error {
	rows, err := s.notificationRepo.MarkRead(ctx, loginID, notificationID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInvalidRequest
	}
	return nil
}

// CountUnread 未读数
func (s *NotificationService) CountUnread(ctx context.Context, loginID string) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, loginID)
}
