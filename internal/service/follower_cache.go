package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/sns-service/internal/repository"
	"github.com/d60-Lab/sns-service/pkg/logger"
)

// FollowerListCache caches follower pages with a Redis list index plus
// per-member snapshots, so a page read is LRANGE + MGET and only cache
// misses hit the primary store.
type FollowerListCache struct {
	followRepo repository.FollowRepository
	memberRepo repository.MemberRepository
	cache      *redis.Client
	ttl        time.Duration
}

func NewFollowerListCache(followRepo repository.FollowRepository, memberRepo repository.MemberRepository, cache *redis.Client, ttl time.Duration) *FollowerListCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &FollowerListCache{followRepo: followRepo, memberRepo: memberRepo, cache: cache, ttl: ttl}
}

// FetchFollowers returns one page of a member's followers, newest first.
func (s *FollowerListCache) FetchFollowers(ctx context.Context, memberID string, page, size int) ([]repository.MemberSummary, error) {
	if s.cache == nil {
		return s.followRepo.ListFollowers(ctx, memberID, (page-1)*size, size)
	}

	key := followerIndexKey(memberID)
	start := (page - 1) * size
	end := start + size - 1

	var ids []string
	if exists, _ := s.cache.Exists(ctx, key).Result(); exists > 0 {
		ids, _ = s.cache.LRange(ctx, key, int64(start), int64(end)).Result()
	}

	if len(ids) == 0 {
		allIDs, err := s.loadFollowerIDsAndCache(ctx, memberID)
		if err != nil {
			return nil, err
		}
		if start >= len(allIDs) {
			return []repository.MemberSummary{}, nil
		}
		endIdx := start + size
		if endIdx > len(allIDs) {
			endIdx = len(allIDs)
		}
		ids = allIDs[start:endIdx]
	}

	return s.loadSummaries(ctx, ids)
}

// loadFollowerIDsAndCache rebuilds the Redis list index from the follow store.
func (s *FollowerListCache) loadFollowerIDsAndCache(ctx context.Context, memberID string) ([]string, error) {
	// full index; follower lists are small relative to timeline data
	ids, err := s.followRepo.ListFollowerIDs(ctx, memberID, 0, 100000)
	if err != nil {
		return nil, err
	}

	key := followerIndexKey(memberID)
	if len(ids) > 0 {
		pipe := s.cache.Pipeline()
		pipe.Del(ctx, key)
		pipe.RPush(ctx, key, interfaceSlice(ids)...)
		pipe.Expire(ctx, key, s.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warn("cache follower index", zap.Error(err), zap.String("member", memberID))
		}
	}
	return ids, nil
}

// loadSummaries resolves ids to member snapshots, MGET first, bulk-loading
// and back-filling misses.
func (s *FollowerListCache) loadSummaries(ctx context.Context, ids []string) ([]repository.MemberSummary, error) {
	if len(ids) == 0 {
		return []repository.MemberSummary{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = memberSnapshotKey(id)
	}

	cached := make(map[string]repository.MemberSummary, len(ids))
	if vals, err := s.cache.MGet(ctx, keys...).Result(); err == nil {
		for i, v := range vals {
			if v == nil {
				continue
			}
			if str, ok := v.(string); ok {
				var snap repository.MemberSummary
				if uErr := json.Unmarshal([]byte(str), &snap); uErr == nil {
					cached[ids[i]] = snap
				}
			}
		}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		members, err := s.memberRepo.FindByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			snap := repository.MemberSummary{ID: m.ID, Nickname: m.Nickname}
			cached[m.ID] = snap
			if payload, err := json.Marshal(snap); err == nil {
				_ = s.cache.Set(ctx, memberSnapshotKey(m.ID), payload, s.ttl).Err()
			}
		}
	}

	result := make([]repository.MemberSummary, 0, len(ids))
	for _, id := range ids {
		if snap, ok := cached[id]; ok {
			result = append(result, snap)
		}
	}
	return result, nil
}

func interfaceSlice(strs []string) []interface{} {
	result := make([]interface{}, len(strs))
	for i, s := range strs {
		result[i] = s
	}
	return result
}
