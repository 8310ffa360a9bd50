package service

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
)

type followFixture struct {
	db        *gorm.DB
	rdb       *redis.Client
	followSvc *FollowService
	blockSvc  *BlockService
	blockRepo repository.BlockRepository
}

func newFollowFixture(t *testing.T) *followFixture {
	t.Helper()
	db := newTestDB(t)
	rdb := newTestRedis(t)

	memberRepo := repository.NewMemberRepository(db)
	followRepo := repository.NewFollowRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	relation := NewBlockFollowRelation(followRepo, blockRepo, rdb)
	policy := NewAccessPolicy(followRepo, relation)
	followerCache := NewFollowerListCache(followRepo, memberRepo, rdb, time.Minute)

	return &followFixture{
		db:        db,
		rdb:       rdb,
		followSvc: NewFollowService(followRepo, memberRepo, relation, policy, followerCache, rdb, nil),
		blockSvc:  NewBlockService(db, blockRepo, memberRepo, relation),
		blockRepo: blockRepo,
	}
}

func TestFollow(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "alice", model.VisibilityPublic)
	seedMember(t, f.db, "bob", model.VisibilityPublic)

	require.NoError(t, f.followSvc.Follow(ctx, "alice", "bob"))

	cnt, err := f.followSvc.GetFollowerCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cnt)

	// 关注是单向的
	cnt, err = f.followSvc.GetFollowerCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), cnt)
}

func TestFollowSelf(t *testing.T) {
	f := newFollowFixture(t)
	seedMember(t, f.db, "alice", model.VisibilityPublic)

	err := f.followSvc.Follow(context.Background(), "alice", "alice")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestFollowDuplicate(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "alice", model.VisibilityPublic)
	seedMember(t, f.db, "bob", model.VisibilityPublic)

	require.NoError(t, f.followSvc.Follow(ctx, "alice", "bob"))
	err := f.followSvc.Follow(ctx, "alice", "bob")
	assert.ErrorIs(t, err, ErrDuplicateFollow)
}

func TestFollowBlocked(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "alice", model.VisibilityPublic)
	seedMember(t, f.db, "bob", model.VisibilityPublic)

	// bob 拉黑 alice：alice 关注 bob 被拒，bob 关注 alice 同样被拒
	require.NoError(t, f.blockRepo.Create(ctx, "bob", "alice"))
	assert.ErrorIs(t, f.followSvc.Follow(ctx, "alice", "bob"), ErrBlockedMember)
	assert.ErrorIs(t, f.followSvc.Follow(ctx, "bob", "alice"), ErrBlockedMember)
}

func TestFollowUnknownMember(t *testing.T) {
	f := newFollowFixture(t)
	seedMember(t, f.db, "alice", model.VisibilityPublic)

	err := f.followSvc.Follow(context.Background(), "alice", "ghost")
	assert.ErrorIs(t, err, ErrNotFoundMember)
}

func TestCancelFollow(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "alice", model.VisibilityPublic)
	seedMember(t, f.db, "bob", model.VisibilityPublic)

	require.NoError(t, f.followSvc.Follow(ctx, "alice", "bob"))
	require.NoError(t, f.followSvc.CancelFollow(ctx, "alice", "bob"))

	// 取关后可重新关注
	require.NoError(t, f.followSvc.Follow(ctx, "alice", "bob"))
}

func TestCancelFollowNotFollowing(t *testing.T) {
	f := newFollowFixture(t)
	seedMember(t, f.db, "alice", model.VisibilityPublic)
	seedMember(t, f.db, "bob", model.VisibilityPublic)

	err := f.followSvc.CancelFollow(context.Background(), "alice", "bob")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestFollowerCountInvalidation(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "alice", model.VisibilityPublic)
	seedMember(t, f.db, "bob", model.VisibilityPublic)
	seedMember(t, f.db, "carol", model.VisibilityPublic)

	require.NoError(t, f.followSvc.Follow(ctx, "alice", "bob"))

	// 计数进缓存
	cnt, err := f.followSvc.GetFollowerCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cnt)

	// 新的关注要把缓存打掉，计数立即可见
	require.NoError(t, f.followSvc.Follow(ctx, "carol", "bob"))
	cnt, err = f.followSvc.GetFollowerCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(2), cnt)

	require.NoError(t, f.followSvc.CancelFollow(ctx, "carol", "bob"))
	cnt, err = f.followSvc.GetFollowerCount(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), cnt)
}

func TestGetFollowerListVisibility(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "alice", model.VisibilityPublic)
	target := seedMember(t, f.db, "bob", model.VisibilityFollowerOnly)
	seedMember(t, f.db, "carol", model.VisibilityPublic)

	require.NoError(t, f.followSvc.Follow(ctx, "carol", "bob"))

	// 非粉丝拒
	_, err := f.followSvc.GetFollowerList(ctx, "alice", "bob", 1, 10)
	assert.ErrorIs(t, err, ErrVisibilityFollowerOnly)

	// 粉丝放行
	list, err := f.followSvc.GetFollowerList(ctx, "carol", "bob", 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "carol", list[0].ID)

	// 自查不走裁决
	list, err = f.followSvc.GetFollowerList(ctx, "bob", "bob", 1, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	// PRIVATE 粉丝也不放行
	target.Visibility = model.VisibilityPrivate
	require.NoError(t, f.db.Save(target).Error)
	_, err = f.followSvc.GetFollowerList(ctx, "carol", "bob", 1, 10)
	assert.ErrorIs(t, err, ErrVisibilityPrivate)
}

func TestBlockPurgesFollowBothWays(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "alice", model.VisibilityPublic)
	seedMember(t, f.db, "bob", model.VisibilityPublic)

	require.NoError(t, f.followSvc.Follow(ctx, "alice", "bob"))
	require.NoError(t, f.followSvc.Follow(ctx, "bob", "alice"))

	require.NoError(t, f.blockSvc.BlockMember(ctx, "alice", "bob"))

	var cnt int64
	require.NoError(t, f.db.Model(&model.Follow{}).Count(&cnt).Error)
	assert.Zero(t, cnt, "两个方向的关注边都应被清除")

	// 拉黑期间无法重新关注
	assert.ErrorIs(t, f.followSvc.Follow(ctx, "alice", "bob"), ErrBlockedMember)

	// 解除拉黑不恢复关注
	require.NoError(t, f.blockSvc.CancelBlock(ctx, "alice", "bob"))
	require.NoError(t, f.db.Model(&model.Follow{}).Count(&cnt).Error)
	assert.Zero(t, cnt)

	// 解除后可重新建立
	require.NoError(t, f.followSvc.Follow(ctx, "alice", "bob"))
}
