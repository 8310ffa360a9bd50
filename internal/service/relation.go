package service

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/repository"
	"github.com/d60-Lab/sns-service/pkg/logger"
)

// BlockFollowRelation 拉黑与关注的交叉逻辑
// 自身无状态，只组合两个仓储的原语
type BlockFollowRelation struct {
	followRepo repository.FollowRepository
	blockRepo  repository.BlockRepository
	cache      *redis.Client
}

func NewBlockFollowRelation(followRepo repository.FollowRepository, blockRepo repository.BlockRepository, cache *redis.Client) *BlockFollowRelation {
	return &BlockFollowRelation{followRepo: followRepo, blockRepo: blockRepo, cache: cache}
}

// IsBlockedEitherWay 任一方向存在拉黑即为 true
func (s *BlockFollowRelation) IsBlockedEitherWay(ctx context.Context, a, b string) (bool, error) {
	return s.blockRepo.ExistsEitherWay(ctx, a, b)
}

// PurgeFollowBetween 删除双方之间两个方向的关注边，幂等
// tx 非 nil 时绑定到该事务；缓存失效由调用方在提交后触发
func (s *BlockFollowRelation) PurgeFollowBetween(ctx context.Context, tx *gorm.DB, a, b string) error {
	repo := s.followRepo
	if tx != nil {
		repo = repo.WithTx(tx)
	}
	return repo.DeleteBetween(ctx, a, b)
}

// invalidateRelationCaches 缓存失效失败不影响主流程，只记日志
func (s *BlockFollowRelation) invalidateRelationCaches(ctx context.Context, a, b string) {
	if s.cache == nil {
		return
	}
	keys := []string{
		followerCountKey(a), followerCountKey(b),
		followingCountKey(a), followingCountKey(b),
		followerIndexKey(a), followerIndexKey(b),
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("invalidate relation caches", zap.Error(err), zap.String("a", a), zap.String("b", b))
	}
}
