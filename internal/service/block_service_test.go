package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
)

func TestBlockMember(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "alice", model.VisibilityPublic)
	seedMember(t, f.db, "bob", model.VisibilityPublic)

	require.NoError(t, f.blockSvc.BlockMember(ctx, "alice", "bob"))

	list, err := f.blockSvc.GetBlockList(ctx, "alice", 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].ID)

	// 被拉黑方的列表为空，拉黑是单向记录
	list, err = f.blockSvc.GetBlockList(ctx, "bob", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBlockSelf(t *testing.T) {
	f := newFollowFixture(t)
	seedMember(t, f.db, "alice", model.VisibilityPublic)

	err := f.blockSvc.BlockMember(context.Background(), "alice", "alice")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestBlockDuplicate(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "alice", model.VisibilityPublic)
	seedMember(t, f.db, "bob", model.VisibilityPublic)

	require.NoError(t, f.blockSvc.BlockMember(ctx, "alice", "bob"))
	err := f.blockSvc.BlockMember(ctx, "alice", "bob")
	assert.ErrorIs(t, err, ErrDuplicateBlock)

	// 反方向是独立的边
	require.NoError(t, f.blockSvc.BlockMember(ctx, "bob", "alice"))
}

func TestBlockUnknownMember(t *testing.T) {
	f := newFollowFixture(t)
	seedMember(t, f.db, "alice", model.VisibilityPublic)

	err := f.blockSvc.BlockMember(context.Background(), "alice", "ghost")
	assert.ErrorIs(t, err, ErrNotFoundMember)
}

// 插入失败时整个事务回滚，关注边不能丢
type brokenBlockRepo struct {
	repository.BlockRepository
	err error
}

func (r *brokenBlockRepo) WithTx(_ *gorm.DB) repository.BlockRepository { return r }

func (r *brokenBlockRepo) Create(context.Context, string, string) error { return r.err }

func TestBlockFailureKeepsFollows(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "alice", model.VisibilityPublic)
	seedMember(t, f.db, "bob", model.VisibilityPublic)

	require.NoError(t, f.followSvc.Follow(ctx, "alice", "bob"))
	require.NoError(t, f.followSvc.Follow(ctx, "bob", "alice"))

	boom := errors.New("block insert failed")
	memberRepo := repository.NewMemberRepository(f.db)
	relation := NewBlockFollowRelation(repository.NewFollowRepository(f.db), f.blockRepo, f.rdb)
	broken := NewBlockService(f.db, &brokenBlockRepo{BlockRepository: f.blockRepo, err: boom}, memberRepo, relation)

	require.ErrorIs(t, broken.BlockMember(ctx, "alice", "bob"), boom)

	var follows, blocks int64
	require.NoError(t, f.db.Model(&model.Follow{}).Count(&follows).Error)
	require.NoError(t, f.db.Model(&model.Block{}).Count(&blocks).Error)
	assert.EqualValues(t, 2, follows)
	assert.EqualValues(t, 0, blocks)
}

func TestCancelBlockNotBlocked(t *testing.T) {
	f := newFollowFixture(t)
	seedMember(t, f.db, "alice", model.VisibilityPublic)
	seedMember(t, f.db, "bob", model.VisibilityPublic)

	err := f.blockSvc.CancelBlock(context.Background(), "alice", "bob")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestCancelBlockOnlyOwnDirection(t *testing.T) {
	f := newFollowFixture(t)
	ctx := context.Background()
	seedMember(t, f.db, "alice", model.VisibilityPublic)
	seedMember(t, f.db, "bob", model.VisibilityPublic)

	require.NoError(t, f.blockSvc.BlockMember(ctx, "alice", "bob"))
	require.NoError(t, f.blockSvc.BlockMember(ctx, "bob", "alice"))

	// alice 解除后 bob 的拉黑仍然生效
	require.NoError(t, f.blockSvc.CancelBlock(ctx, "alice", "bob"))
	assert.ErrorIs(t, f.followSvc.Follow(ctx, "alice", "bob"), ErrBlockedMember)
}
