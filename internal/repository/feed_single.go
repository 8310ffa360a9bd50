package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/sns-service/internal/model"
)

// SingleFeedRepository 单表时间线仓储实现
type SingleFeedRepository struct {
	db *gorm.DB
}

// NewSingleFeedRepository 创建单表时间线仓储
func NewSingleFeedRepository(db *gorm.DB) FeedRepository {
	return &SingleFeedRepository{db: db}
}

func (r *SingleFeedRepository) AddBatch(ctx context.Context, items []model.Inbox) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&items).Error
}

func (r *SingleFeedRepository) GetTimeline(ctx context.Context, memberID string, limit int) ([]*model.Inbox, error) {
	var items []*model.Inbox
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("score DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *SingleFeedRepository) RemovePost(ctx context.Context, postID string) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&model.Inbox{}).Error
}

func (r *SingleFeedRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Inbox{}).Count(&count).Error
	return count, err
}

func (r *SingleFeedRepository) InitSchema() error {
	if err := r.db.AutoMigrate(&model.Inbox{}); err != nil {
		return fmt.Errorf("failed to migrate inbox table: %w", err)
	}
	return nil
}

func (r *SingleFeedRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
