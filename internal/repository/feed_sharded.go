package repository

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/sns-service/internal/model"
)

const (
	// FeedShardCount 分库数量
	FeedShardCount = 8
	// FeedTableCount 每库分表数量
	FeedTableCount = 8
)

// ShardedFeedRepository 分库分表时间线仓储实现
// 路由键为 member_id：一个会员的时间线永远落在同一张表
type ShardedFeedRepository struct {
	// shards[dbIndex][tableIndex] = *gorm.DB
	shards [][]*gorm.DB
}

// NewShardedFeedRepository 创建分库分表时间线仓储
func NewShardedFeedRepository(dbs []*gorm.DB) (FeedRepository, error) {
	if len(dbs) != FeedShardCount {
		return nil, fmt.Errorf("expected %d databases, got %d", FeedShardCount, len(dbs))
	}

	shards := make([][]*gorm.DB, FeedShardCount)
	for i := 0; i < FeedShardCount; i++ {
		shards[i] = make([]*gorm.DB, FeedTableCount)
		for j := 0; j < FeedTableCount; j++ {
			shards[i][j] = dbs[i]
		}
	}

	return &ShardedFeedRepository{shards: shards}, nil
}

// RouteByMemberID 根据会员ID路由到对应的分片
// 规则：哈希高位确定库，低位确定表
func RouteByMemberID(memberID string) (dbIndex, tableIndex int) {
	h := fnv.New32a()
	_, _ = h.Write([]byte(memberID))
	sum := h.Sum32()
	dbIndex = int((sum >> 8) % FeedShardCount)
	tableIndex = int(sum % FeedTableCount)
	return
}

// feedTableName 获取分表名称
func feedTableName(tableIndex int) string {
	return fmt.Sprintf("inbox_%d", tableIndex)
}

func (r *ShardedFeedRepository) AddBatch(ctx context.Context, items []model.Inbox) error {
	if len(items) == 0 {
		return nil
	}

	// 按分片分组后逐片批量写入
	type key struct{ db, tbl int }
	groups := make(map[key][]model.Inbox)
	for _, it := range items {
		dbIdx, tblIdx := RouteByMemberID(it.MemberID)
		k := key{dbIdx, tblIdx}
		groups[k] = append(groups[k], it)
	}

	for k, group := range groups {
		err := r.shards[k.db][k.tbl].WithContext(ctx).
			Table(feedTableName(k.tbl)).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&group).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *ShardedFeedRepository) GetTimeline(ctx context.Context, memberID string, limit int) ([]*model.Inbox, error) {
	dbIdx, tblIdx := RouteByMemberID(memberID)

	var items []*model.Inbox
	err := r.shards[dbIdx][tblIdx].WithContext(ctx).
		Table(feedTableName(tblIdx)).
		Where("member_id = ?", memberID).
		Order("score DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// RemovePost 帖子不带路由键，需要广播到所有分片
func (r *ShardedFeedRepository) RemovePost(ctx context.Context, postID string) error {
	var wg sync.WaitGroup
	errChan := make(chan error, FeedShardCount*FeedTableCount)

	for dbIdx := 0; dbIdx < FeedShardCount; dbIdx++ {
		for tblIdx := 0; tblIdx < FeedTableCount; tblIdx++ {
			wg.Add(1)
			go func(di, ti int) {
				defer wg.Done()

				err := r.shards[di][ti].WithContext(ctx).
					Table(feedTableName(ti)).
					Where("post_id = ?", postID).
					Delete(&model.Inbox{}).Error
				if err != nil {
					errChan <- err
				}
			}(dbIdx, tblIdx)
		}
	}

	wg.Wait()
	close(errChan)

	if len(errChan) > 0 {
		return <-errChan
	}
	return nil
}

func (r *ShardedFeedRepository) Count(ctx context.Context) (int64, error) {
	var totalCount int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	errChan := make(chan error, FeedShardCount*FeedTableCount)

	for dbIdx := 0; dbIdx < FeedShardCount; dbIdx++ {
		for tblIdx := 0; tblIdx < FeedTableCount; tblIdx++ {
			wg.Add(1)
			go func(di, ti int) {
				defer wg.Done()

				var count int64
				err := r.shards[di][ti].WithContext(ctx).
					Table(feedTableName(ti)).
					Count(&count).Error
				if err != nil {
					errChan <- err
					return
				}

				mu.Lock()
				totalCount += count
				mu.Unlock()
			}(dbIdx, tblIdx)
		}
	}

	wg.Wait()
	close(errChan)

	if len(errChan) > 0 {
		return 0, <-errChan
	}

	return totalCount, nil
}

// InitSchema 初始化所有分片的表结构
func (r *ShardedFeedRepository) InitSchema() error {
	for dbIdx := 0; dbIdx < FeedShardCount; dbIdx++ {
		db := r.shards[dbIdx][0]

		for tblIdx := 0; tblIdx < FeedTableCount; tblIdx++ {
			if err := db.Table(feedTableName(tblIdx)).AutoMigrate(&model.Inbox{}); err != nil {
				return fmt.Errorf("failed to migrate table %s in db %d: %w", feedTableName(tblIdx), dbIdx, err)
			}
		}
	}
	return nil
}

// Close 关闭所有数据库连接
func (r *ShardedFeedRepository) Close() error {
	// 同一个数据库被多个表引用，先去重
	dbMap := make(map[*gorm.DB]bool)
	for i := 0; i < FeedShardCount; i++ {
		dbMap[r.shards[i][0]] = true
	}

	for db := range dbMap {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err := sqlDB.Close(); err != nil {
			return err
		}
	}
	return nil
}
