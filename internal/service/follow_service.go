package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
	"github.com/d60-Lab/sns-service/pkg/logger"
)

const countCacheTTL = 30 * time.Minute

// FollowService 关注服务
// 关注、取消关注、粉丝/关注列表、计数
type FollowService struct {
	followRepo    repository.FollowRepository
	memberRepo    repository.MemberRepository
	relation      *BlockFollowRelation
	accessPolicy  *AccessPolicy
	followerCache *FollowerListCache
	cache         *redis.Client
	notifier      *Notifier
}

func NewFollowService(
	followRepo repository.FollowRepository,
	memberRepo repository.MemberRepository,
	relation *BlockFollowRelation,
	accessPolicy *AccessPolicy,
	followerCache *FollowerListCache,
	cache *redis.Client,
	notifier *Notifier,
) *FollowService {
	return &FollowService{
		followRepo:    followRepo,
		memberRepo:    memberRepo,
		relation:      relation,
		accessPolicy:  accessPolicy,
		followerCache: followerCache,
		cache:         cache,
		notifier:      notifier,
	}
}

// findActiveMember 目标会员必须存在且 ACTIVE
func (s *FollowService) findActiveMember(ctx context.Context, memberID string) (*model.Member, error) {
	m, err := s.memberRepo.FindActiveByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundMember
		}
		return nil, err
	}
	return m, nil
}

// Follow 关注
// 任一方向已拉黑则不可关注；重复关注为冲突
func (s *FollowService) Follow(ctx context.Context, loginID, memberID string) error {
	if loginID == memberID {
		return ErrInvalidRequest
	}

	blocked, err := s.relation.IsBlockedEitherWay(ctx, loginID, memberID)
	if err != nil {
		return err
	}
	if blocked {
		return ErrBlockedMember
	}

	exists, err := s.followRepo.Exists(ctx, loginID, memberID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateFollow
	}

	if _, err := s.findActiveMember(ctx, memberID); err != nil {
		return err
	}

	if err := s.followRepo.Create(ctx, loginID, memberID); err != nil {
		// 并发重复由唯一键兜底，提交期冲突同样映射为冲突
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateFollow
		}
		return err
	}

	s.invalidateFollowCaches(ctx, loginID, memberID)

	if s.notifier != nil {
		s.notifier.EnqueueFollow(memberID, loginID)
	}
	return nil
}

// CancelFollow 取消关注，未关注时为无效请求
func (s *FollowService) CancelFollow(ctx context.Context, loginID, memberID string) error {
	if loginID == memberID {
		return ErrInvalidRequest
	}

	rows, err := s.followRepo.Delete(ctx, loginID, memberID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInvalidRequest
	}

	s.invalidateFollowCaches(ctx, loginID, memberID)
	return nil
}

// GetMyFollowerList 自己的粉丝列表，不走权限裁决
func (s *FollowService) GetMyFollowerList(ctx context.Context, loginID string, page, pageSize int) ([]repository.MemberSummary, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.followerCache.FetchFollowers(ctx, loginID, page, pageSize)
}

// GetFollowerList 他人粉丝列表，自查直接放行，否则走权限裁决
func (s *FollowService) GetFollowerList(ctx context.Context, loginID, memberID string, page, pageSize int) ([]repository.MemberSummary, error) {
	m, err := s.findActiveMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if loginID != memberID {
		if err := s.accessPolicy.Check(ctx, loginID, memberID, m.Visibility); err != nil {
			return nil, err
		}
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.followerCache.FetchFollowers(ctx, memberID, page, pageSize)
}

// GetMyFollowingList 自己的关注列表
func (s *FollowService) GetMyFollowingList(ctx context.Context, loginID string, page, pageSize int) ([]repository.MemberSummary, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.followRepo.ListFollowings(ctx, loginID, (page-1)*pageSize, pageSize)
}

// GetFollowingList 他人关注列表
func (s *FollowService) GetFollowingList(ctx context.Context, loginID, memberID string, page, pageSize int) ([]repository.MemberSummary, error) {
	m, err := s.findActiveMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if loginID != memberID {
		if err := s.accessPolicy.Check(ctx, loginID, memberID, m.Visibility); err != nil {
			return nil, err
		}
	}
	page, pageSize = normalizePage(page, pageSize)
	return s.followRepo.ListFollowings(ctx, memberID, (page-1)*pageSize, pageSize)
}

// GetFollowerCount 粉丝数，cache-aside
func (s *FollowService) GetFollowerCount(ctx context.Context, memberID string) (int64, error) {
	return s.cachedCount(ctx, followerCountKey(memberID), func() (int64, error) {
		return s.followRepo.CountFollowers(ctx, memberID)
	})
}

// GetFollowingCount 关注数，cache-aside
func (s *FollowService) GetFollowingCount(ctx context.Context, memberID string) (int64, error) {
	return s.cachedCount(ctx, followingCountKey(memberID), func() (int64, error) {
		return s.followRepo.CountFollowings(ctx, memberID)
	})
}

func (s *FollowService) cachedCount(ctx context.Context, key string, load func() (int64, error)) (int64, error) {
	if s.cache != nil {
		if v, err := s.cache.Get(ctx, key).Result(); err == nil {
			if n, pErr := strconv.ParseInt(v, 10, 64); pErr == nil {
				return n, nil
			}
		}
	}

	n, err := load()
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, strconv.FormatInt(n, 10), countCacheTTL).Err(); err != nil {
			logger.Warn("cache count", zap.Error(err), zap.String("key", key))
		}
	}
	return n, nil
}

func (s *FollowService) invalidateFollowCaches(ctx context.Context, followerID, followingID string) {
	if s.cache == nil {
		return
	}
	keys := []string{
		followingCountKey(followerID),
		followerCountKey(followingID),
		followerIndexKey(followingID),
	}
	if err := s.cache.Del(ctx, keys...).Err(); err != nil {
		logger.Warn("invalidate follow caches", zap.Error(err),
			zap.String("follower", followerID), zap.String("following", followingID))
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	return page, pageSize
}
