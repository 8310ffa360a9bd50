package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
)

func newCacheFixture(t *testing.T) (*gorm.DB, *redis.Client, *FollowerListCache) {
	t.Helper()
	db := newTestDB(t)
	rdb := newTestRedis(t)
	cache := NewFollowerListCache(repository.NewFollowRepository(db), repository.NewMemberRepository(db), rdb, time.Minute)
	return db, rdb, cache
}

func seedFollowEdge(t *testing.T, db *gorm.DB, followerID, followingID string) {
	t.Helper()
	require.NoError(t, db.Create(&model.Follow{
		ID:          uuid.New().String(),
		FollowerID:  followerID,
		FollowingID: followingID,
	}).Error)
}

func TestFetchFollowersBuildsIndex(t *testing.T) {
	db, rdb, cache := newCacheFixture(t)
	ctx := context.Background()
	seedMember(t, db, "celeb", model.VisibilityPublic)
	for _, id := range []string{"f1", "f2", "f3"} {
		seedMember(t, db, id, model.VisibilityPublic)
		seedFollowEdge(t, db, id, "celeb")
	}

	page, err := cache.FetchFollowers(ctx, "celeb", 1, 10)
	require.NoError(t, err)
	require.Len(t, page, 3)
	for _, s := range page {
		assert.Equal(t, "nick-"+s.ID, s.Nickname)
	}

	// 首次读取之后索引和快照都应该就位
	n, err := rdb.Exists(ctx, followerIndexKey("celeb")).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, err = rdb.Exists(ctx, memberSnapshotKey("f1")).Result()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestFetchFollowersServedFromIndex(t *testing.T) {
	db, rdb, cache := newCacheFixture(t)
	ctx := context.Background()
	seedMember(t, db, "celeb", model.VisibilityPublic)
	seedMember(t, db, "f1", model.VisibilityPublic)
	seedFollowEdge(t, db, "f1", "celeb")

	page, err := cache.FetchFollowers(ctx, "celeb", 1, 10)
	require.NoError(t, err)
	require.Len(t, page, 1)

	// 绕过失效直接写库：索引还在，读到的仍是缓存页
	seedMember(t, db, "f2", model.VisibilityPublic)
	seedFollowEdge(t, db, "f2", "celeb")

	page, err = cache.FetchFollowers(ctx, "celeb", 1, 10)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	// 索引删除后重建，新粉丝可见
	require.NoError(t, rdb.Del(ctx, followerIndexKey("celeb")).Err())
	page, err = cache.FetchFollowers(ctx, "celeb", 1, 10)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestFetchFollowersPagination(t *testing.T) {
	db, _, cache := newCacheFixture(t)
	ctx := context.Background()
	seedMember(t, db, "celeb", model.VisibilityPublic)
	seedMember(t, db, "f1", model.VisibilityPublic)
	seedFollowEdge(t, db, "f1", "celeb")

	page, err := cache.FetchFollowers(ctx, "celeb", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestFetchFollowersWithoutRedis(t *testing.T) {
	db := newTestDB(t)
	cache := NewFollowerListCache(repository.NewFollowRepository(db), repository.NewMemberRepository(db), nil, time.Minute)
	ctx := context.Background()
	seedMember(t, db, "celeb", model.VisibilityPublic)
	seedMember(t, db, "f1", model.VisibilityPublic)
	seedFollowEdge(t, db, "f1", "celeb")

	page, err := cache.FetchFollowers(ctx, "celeb", 1, 10)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}
