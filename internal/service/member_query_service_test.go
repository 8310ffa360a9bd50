package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
)

type queryFixture struct {
	db        *gorm.DB
	followSvc *FollowService
	imageSvc  *ProfileImageService
	querySvc  *MemberQueryService
}

func newQueryFixture(t *testing.T) *queryFixture {
	t.Helper()
	db := newTestDB(t)
	rdb := newTestRedis(t)

	memberRepo := repository.NewMemberRepository(db)
	followRepo := repository.NewFollowRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	imageRepo := repository.NewProfileImageRepository(db)
	relation := NewBlockFollowRelation(followRepo, blockRepo, rdb)
	policy := NewAccessPolicy(followRepo, relation)
	followerCache := NewFollowerListCache(followRepo, memberRepo, rdb, time.Minute)
	followSvc := NewFollowService(followRepo, memberRepo, relation, policy, followerCache, rdb, nil)
	imageSvc := NewProfileImageService(db, imageRepo, memberRepo, policy, rdb)

	return &queryFixture{
		db:        db,
		followSvc: followSvc,
		imageSvc:  imageSvc,
		querySvc:  NewMemberQueryService(memberRepo, followSvc, imageSvc, policy),
	}
}

func TestGetMemberInfoComposition(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "alice", model.VisibilityPublic)
	seedMember(t, f.db, "bob", model.VisibilityPublic)
	seedMember(t, f.db, "carol", model.VisibilityPublic)

	require.NoError(t, f.followSvc.Follow(ctx, "bob", "alice"))
	require.NoError(t, f.followSvc.Follow(ctx, "carol", "alice"))
	require.NoError(t, f.followSvc.Follow(ctx, "alice", "bob"))
	require.NoError(t, f.imageSvc.SaveProfileImage(ctx, "alice", imageReq("face", true)))

	info, err := f.querySvc.GetMemberInfo(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", info.ID)
	assert.Equal(t, "nick-alice", info.Nickname)
	assert.EqualValues(t, 2, info.FollowerCount)
	assert.EqualValues(t, 1, info.FollowingCount)
	require.NotNil(t, info.RepresentImage)
	assert.Equal(t, "face", info.RepresentImage.OriginName)
}

func TestGetMemberInfoNoRepresentImage(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "alice", model.VisibilityPublic)

	info, err := f.querySvc.GetMyInfo(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, info.RepresentImage)
	assert.EqualValues(t, 0, info.FollowerCount)
}

func TestGetMemberInfoGuarded(t *testing.T) {
	f := newQueryFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "alice", model.VisibilityPrivate)
	seedMember(t, f.db, "bob", model.VisibilityPublic)

	_, err := f.querySvc.GetMemberInfo(ctx, "bob", "alice")
	assert.ErrorIs(t, err, ErrVisibilityPrivate)

	// 自查不走权限裁决
	info, err := f.querySvc.GetMemberInfo(ctx, "alice", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", info.ID)

	_, err = f.querySvc.GetMemberInfo(ctx, "bob", "ghost")
	assert.ErrorIs(t, err, ErrNotFoundMember)
}
