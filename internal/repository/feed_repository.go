package repository

import (
	"context"

	"github.com/d60-Lab/sns-service/internal/model"
)

// FeedRepository 时间线 inbox 仓储接口
// 单表与分片实现共用，fanout worker 写入，feed 读取
type FeedRepository interface {
	// AddBatch 批量写入时间线项，重复 (member, post) 忽略
	AddBatch(ctx context.Context, items []model.Inbox) error

	// GetTimeline 按 score 倒序取某会员的时间线
	GetTimeline(ctx context.Context, memberID string, limit int) ([]*model.Inbox, error)

	// RemovePost 从所有时间线里移除某个帖子
	RemovePost(ctx context.Context, postID string) error

	// Count 统计时间线项总量
	Count(ctx context.Context) (int64, error)

	// InitSchema 初始化表结构
	InitSchema() error

	// Close 关闭底层连接
	Close() error
}
