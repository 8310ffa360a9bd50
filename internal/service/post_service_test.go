package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
)

type postFixture struct {
	db      *gorm.DB
	postSvc *PostService
	fanout  *FanoutWorker
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	db := newTestDB(t)
	followRepo := repository.NewFollowRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	feedRepo := repository.NewSingleFeedRepository(db)
	relation := NewBlockFollowRelation(followRepo, blockRepo, nil)
	policy := NewAccessPolicy(followRepo, relation)
	return &postFixture{
		db:      db,
		postSvc: NewPostService(db, repository.NewPostRepository(db), feedRepo, repository.NewMemberRepository(db), policy),
		fanout:  NewFanoutWorker(db, followRepo, feedRepo, 1, 100, 10, 0),
	}
}

func follow(t *testing.T, db *gorm.DB, followerID, followingID string) {
	t.Helper()
	require.NoError(t, db.Create(&model.Follow{
		ID:          uuid.New().String(),
		FollowerID:  followerID,
		FollowingID: followingID,
	}).Error)
}

func TestPublishFanoutAndFeed(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "author", model.VisibilityPublic)
	seedMember(t, f.db, "fan1", model.VisibilityPublic)
	seedMember(t, f.db, "fan2", model.VisibilityPublic)
	follow(t, f.db, "fan1", "author")
	follow(t, f.db, "fan2", "author")

	postID, err := f.postSvc.Publish(ctx, "author", "hello", "first post")
	require.NoError(t, err)

	// 发布只落 post + pending outbox，不直接写粉丝时间线
	var pending int64
	require.NoError(t, f.db.Model(&model.Outbox{}).Where("status = ?", "pending").Count(&pending).Error)
	assert.EqualValues(t, 1, pending)

	feed, err := f.postSvc.GetFeed(ctx, "fan1", 20)
	require.NoError(t, err)
	assert.Empty(t, feed)

	require.NoError(t, f.fanout.ProcessOnce(ctx))

	for _, fan := range []string{"fan1", "fan2"} {
		feed, err = f.postSvc.GetFeed(ctx, fan, 20)
		require.NoError(t, err)
		require.Len(t, feed, 1)
		assert.Equal(t, postID, feed[0].PostID)
		assert.Equal(t, "author", feed[0].AuthorID)
		assert.Equal(t, "hello", feed[0].Title)
	}

	// 作者自己不在扇出范围内
	feed, err = f.postSvc.GetFeed(ctx, "author", 20)
	require.NoError(t, err)
	assert.Empty(t, feed)

	var done model.Outbox
	require.NoError(t, f.db.First(&done, "post_id = ?", postID).Error)
	assert.Equal(t, "done", done.Status)
	assert.EqualValues(t, 2, done.FanoutCount)
}

func TestDeletePostCleansTimelines(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "author", model.VisibilityPublic)
	seedMember(t, f.db, "fan1", model.VisibilityPublic)
	follow(t, f.db, "fan1", "author")

	postID, err := f.postSvc.Publish(ctx, "author", "bye", "soon gone")
	require.NoError(t, err)
	require.NoError(t, f.fanout.ProcessOnce(ctx))

	// 只有作者本人能删
	assert.ErrorIs(t, f.postSvc.Delete(ctx, "fan1", postID), ErrNotFoundPost)

	require.NoError(t, f.postSvc.Delete(ctx, "author", postID))
	assert.ErrorIs(t, f.postSvc.Delete(ctx, "author", postID), ErrNotFoundPost)

	feed, err := f.postSvc.GetFeed(ctx, "fan1", 20)
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestGetMemberPostsVisibility(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "author", model.VisibilityFollowerOnly)
	seedMember(t, f.db, "fan1", model.VisibilityPublic)
	seedMember(t, f.db, "other", model.VisibilityPublic)
	follow(t, f.db, "fan1", "author")

	_, err := f.postSvc.Publish(ctx, "author", "only fans", "content")
	require.NoError(t, err)

	posts, err := f.postSvc.GetMemberPosts(ctx, "fan1", "author", 1, 10)
	require.NoError(t, err)
	assert.Len(t, posts, 1)

	_, err = f.postSvc.GetMemberPosts(ctx, "other", "author", 1, 10)
	assert.ErrorIs(t, err, ErrVisibilityFollowerOnly)

	_, err = f.postSvc.GetMemberPosts(ctx, "", "author", 1, 10)
	assert.ErrorIs(t, err, ErrVisibilityFollowerOnly)

	// 自查放行
	posts, err = f.postSvc.GetMemberPosts(ctx, "author", "author", 1, 10)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}
