package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
)

type MemberRepository interface {
	Create(ctx context.Context, m *model.Member) error
	Save(ctx context.Context, m *model.Member) error
	FindByID(ctx context.Context, id string) (*model.Member, error)
	// FindActiveByID 只返回 ACTIVE 状态的会员
	FindActiveByID(ctx context.Context, id string) (*model.Member, error)
	FindByEmail(ctx context.Context, email string) (*model.Member, error)
	FindActiveByEmail(ctx context.Context, email string) (*model.Member, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Member, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository { return &memberRepository{db: db} }

func (r *memberRepository) Create(ctx context.Context, m *model.Member) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *memberRepository) Save(ctx context.Context, m *model.Member) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *memberRepository) FindByID(ctx context.Context, id string) (*model.Member, error) {
	var m model.Member
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepository) FindActiveByID(ctx context.Context, id string) (*model.Member, error) {
	var m model.Member
	err := r.db.WithContext(ctx).
		Where("id = ? AND activation = ?", id, model.ActivationActive).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepository) FindByEmail(ctx context.Context, email string) (*model.Member, error) {
	var m model.Member
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepository) FindActiveByEmail(ctx context.Context, email string) (*model.Member, error) {
	var m model.Member
	err := r.db.WithContext(ctx).
		Where("email = ? AND activation = ?", email, model.ActivationActive).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *memberRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var ms []model.Member
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&ms).Error
	return ms, err
}

func (r *memberRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.Member{}).Where("email = ?", email).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *memberRepository) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.Member{}).Where("nickname = ?", nickname).Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}
