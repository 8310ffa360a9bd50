package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/repository"
)

// BlockService 拉黑服务
// 拉黑、取消拉黑、拉黑列表。拉黑成功时级联清除双方的关注边；
// 取消关注/取消拉黑互不级联
type BlockService struct {
	db         *gorm.DB
	blockRepo  repository.BlockRepository
	memberRepo repository.MemberRepository
	relation   *BlockFollowRelation
}

func NewBlockService(db *gorm.DB, blockRepo repository.BlockRepository, memberRepo repository.MemberRepository, relation *BlockFollowRelation) *BlockService {
	return &BlockService{db: db, blockRepo: blockRepo, memberRepo: memberRepo, relation: relation}
}

// BlockMember 拉黑会员
// 已存在关注（任一方向）则一并删除；清边与落块在同一事务里，
// 拉黑失败时关注边保持原样
func (s *BlockService) BlockMember(ctx context.Context, loginID, memberID string) error {
	if loginID == memberID {
		return ErrInvalidRequest
	}

	exists, err := s.blockRepo.Exists(ctx, loginID, memberID)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateBlock
	}

	if _, err := s.memberRepo.FindActiveByID(ctx, memberID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFoundMember
		}
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.relation.PurgeFollowBetween(ctx, tx, loginID, memberID); err != nil {
			return err
		}
		return s.blockRepo.WithTx(tx).Create(ctx, loginID, memberID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateBlock
		}
		return err
	}

	s.relation.invalidateRelationCaches(ctx, loginID, memberID)
	return nil
}

// CancelBlock 取消拉黑，未拉黑时为无效请求
func (s *BlockService) CancelBlock(ctx context.Context, loginID, memberID string) error {
	if loginID == memberID {
		return ErrInvalidRequest
	}

	rows, err := s.blockRepo.Delete(ctx, loginID, memberID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrInvalidRequest
	}
	return nil
}

// GetBlockList 自己拉黑的会员列表
func (s *BlockService) GetBlockList(ctx context.Context, loginID string, page, pageSize int) ([]repository.MemberSummary, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.blockRepo.ListBlocked(ctx, loginID, (page-1)*pageSize, pageSize)
}
