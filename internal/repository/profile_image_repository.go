package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
)

type ProfileImageRepository interface {
	// WithTx 返回绑定到事务的仓储，用于降级+插入的原子段
	WithTx(tx *gorm.DB) ProfileImageRepository
	Insert(ctx context.Context, img *model.ProfileImage) error
	// UpdateRepresent 修改单张图片的代表位
	UpdateRepresent(ctx context.Context, imageID string, represent bool) error
	// DemoteRepresent 把该会员当前的代表图片（如有）置为 false，幂等
	DemoteRepresent(ctx context.Context, memberID string) error
	Delete(ctx context.Context, imageID string) (int64, error)
	// FindByMember 代表图优先，其后按创建时间倒序
	FindByMember(ctx context.Context, memberID string) ([]model.ProfileImage, error)
	FindRepresentByMember(ctx context.Context, memberID string) (*model.ProfileImage, error)
	FindNewestByMember(ctx context.Context, memberID string) (*model.ProfileImage, error)
	FindOwned(ctx context.Context, memberID, imageID string) (*model.ProfileImage, error)
}

type profileImageRepository struct {
	db *gorm.DB
}

func NewProfileImageRepository(db *gorm.DB) ProfileImageRepository {
	return &profileImageRepository{db: db}
}

func (r *profileImageRepository) WithTx(tx *gorm.DB) ProfileImageRepository {
	return &profileImageRepository{db: tx}
}

func (r *profileImageRepository) Insert(ctx context.Context, img *model.ProfileImage) error {
	return r.db.WithContext(ctx).Create(img).Error
}

func (r *profileImageRepository) UpdateRepresent(ctx context.Context, imageID string, represent bool) error {
	return r.db.WithContext(ctx).
		Model(&model.ProfileImage{}).
		Where("id = ?", imageID).
		Update("represent", represent).Error
}

func (r *profileImageRepository) DemoteRepresent(ctx context.Context, memberID string) error {
	return r.db.WithContext(ctx).
		Model(&model.ProfileImage{}).
		Where("member_id = ? AND represent = ?", memberID, true).
		Update("represent", false).Error
}

func (r *profileImageRepository) Delete(ctx context.Context, imageID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", imageID).Delete(&model.ProfileImage{})
	return res.RowsAffected, res.Error
}

func (r *profileImageRepository) FindByMember(ctx context.Context, memberID string) ([]model.ProfileImage, error) {
	var imgs []model.ProfileImage
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("represent DESC").
		Order("created_at DESC").
		Find(&imgs).Error
	return imgs, err
}

func (r *profileImageRepository) FindRepresentByMember(ctx context.Context, memberID string) (*model.ProfileImage, error) {
	var img model.ProfileImage
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND represent = ?", memberID, true).
		First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *profileImageRepository) FindNewestByMember(ctx context.Context, memberID string) (*model.ProfileImage, error) {
	var img model.ProfileImage
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC").
		First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *profileImageRepository) FindOwned(ctx context.Context, memberID, imageID string) (*model.ProfileImage, error) {
	var img model.ProfileImage
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND id = ?", memberID, imageID).
		First(&img).Error
	if err != nil {
		return nil, err
	}
	return &img, nil
}
