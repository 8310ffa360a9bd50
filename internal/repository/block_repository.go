package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
)

type BlockRepository interface {
	// WithTx 返回绑定到事务的仓储
	WithTx(tx *gorm.DB) BlockRepository
	// Create 重复拉黑返回 gorm.ErrDuplicatedKey
	Create(ctx context.Context, blockerID, blockedID string) error
	Delete(ctx context.Context, blockerID, blockedID string) (int64, error)
	Exists(ctx context.Context, blockerID, blockedID string) (bool, error)
	// ExistsEitherWay 任一方向存在拉黑即为 true
	ExistsEitherWay(ctx context.Context, a, b string) (bool, error)
	ListBlocked(ctx context.Context, blockerID string, offset, limit int) ([]MemberSummary, error)
}

type blockRepository struct {
	db *gorm.DB
}

func NewBlockRepository(db *gorm.DB) BlockRepository { return &blockRepository{db: db} }

func (r *blockRepository) WithTx(tx *gorm.DB) BlockRepository {
	return &blockRepository{db: tx}
}

func (r *blockRepository) Create(ctx context.Context, blockerID, blockedID string) error {
	b := &model.Block{ID: uuid.New().String(), BlockerID: blockerID, BlockedID: blockedID}
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *blockRepository) Delete(ctx context.Context, blockerID, blockedID string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&model.Block{})
	return res.RowsAffected, res.Error
}

func (r *blockRepository) Exists(ctx context.Context, blockerID, blockedID string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *blockRepository) ExistsEitherWay(ctx context.Context, a, b string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).
		Model(&model.Block{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *blockRepository) ListBlocked(ctx context.Context, blockerID string, offset, limit int) ([]MemberSummary, error) {
	var res []MemberSummary
	err := r.db.WithContext(ctx).
		Table("blocks").
		Select("members.id", "members.nickname").
		Joins("JOIN members ON blocks.blocked_id = members.id").
		Where("blocks.blocker_id = ?", blockerID).
		Order("blocks.created_at DESC").
		Offset(offset).Limit(limit).
		Scan(&res).Error
	return res, err
}
