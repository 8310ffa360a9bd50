package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
)

// MemberSummary 关系列表里展示的最小会员信息
type MemberSummary struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
}

type FollowRepository interface {
	// WithTx 返回绑定到事务的仓储
	WithTx(tx *gorm.DB) FollowRepository
	// Create 重复关注返回 gorm.ErrDuplicatedKey（唯一键为准，由 service 映射为冲突）
	Create(ctx context.Context, followerID, followingID string) error
	Delete(ctx context.Context, followerID, followingID string) (int64, error)
	// DeleteBetween 删除两个方向上的关注边，幂等
	DeleteBetween(ctx context.Context, a, b string) error
	Exists(ctx context.Context, followerID, followingID string) (bool, error)
	ListFollowers(ctx context.Context, memberID string, offset, limit int) ([]MemberSummary, error)
	ListFollowings(ctx context.Context, memberID string, offset, limit int) ([]MemberSummary, error)
	ListFollowerIDs(ctx context.Context, memberID string, offset, limit int) ([]string, error)
	CountFollowers(ctx context.Context, memberID string) (int64, error)
	CountFollowings(ctx context.Context, memberID string) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository { return &followRepository{db: db} }

func (r *followRepository) WithTx(tx *gorm.DB) FollowRepository {
	return &followRepository{db: tx}
}

func (r *followRepository) Create(ctx context.Context, followerID, followingID string) error {
	f := &model.Follow{ID: uuid.New().String(), FollowerID: followerID, FollowingID: followingID}
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *followRepository) Delete(ctx context.Context, followerID, followingID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.Follow{})
	return res.RowsAffected, res.Error
}

func (r *followRepository) DeleteBetween(ctx context.Context, a, b string) error {
	return r.db.WithContext(ctx).
		Where("(follower_id = ? AND following_id = ?) OR (follower_id = ? AND following_id = ?)", a, b, b, a).
		Delete(&model.Follow{}).Error
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *followRepository) ListFollowers(ctx context.Context, memberID string, offset, limit int) ([]MemberSummary, error) {
	var res []MemberSummary
	err := r.db.WithContext(ctx).
		Table("follows").
		Select("members.id", "members.nickname").
		Joins("JOIN members ON follows.follower_id = members.id").
		Where("follows.following_id = ?", memberID).
		Order("follows.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&res).Error
	return res, err
}

func (r *followRepository) ListFollowings(ctx context.Context, memberID string, offset, limit int) ([]MemberSummary, error) {
	var res []MemberSummary
	err := r.db.WithContext(ctx).
		Table("follows").
		Select("members.id", "members.nickname").
		Joins("JOIN members ON follows.following_id = members.id").
		Where("follows.follower_id = ?", memberID).
		Order("follows.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&res).Error
	return res, err
}

func (r *followRepository) ListFollowerIDs(ctx context.Context, memberID string, offset, limit int) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Follow{}).
		Select("follower_id").
		Where("following_id = ?", memberID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&ids).Error
	return ids, err
}

func (r *followRepository) CountFollowers(ctx context.Context, memberID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("following_id = ?", memberID).Count(&cnt).Error
	return cnt, err
}

func (r *followRepository) CountFollowings(ctx context.Context, memberID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).Where("follower_id = ?", memberID).Count(&cnt).Error
	return cnt, err
}
