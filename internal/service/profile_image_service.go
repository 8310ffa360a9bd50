package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
	"github.com/d60-Lab/sns-service/pkg/logger"
)

const representCacheTTL = 30 * time.Minute

// ProfileImageRequest 上传头像入参
type ProfileImageRequest struct {
	ImageURL   string `json:"image_url" binding:"required,max=300"`
	OriginName string `json:"origin_name" binding:"required,max=100"`
	FileName   string `json:"file_name" binding:"required,max=100"`
	Represent  bool   `json:"represent"`
}

// RepresentImage 对外展示用的头像投影
type RepresentImage struct {
	ProfileImageID string `json:"profile_image_id"`
	ImageURL       string `json:"image_url"`
	OriginName     string `json:"origin_name"`
	FileName       string `json:"file_name"`
}

// ProfileImageService 头像服务
// 上传、列表、删除、代表头像设置与读取
//
// 不变式：同一会员提交后最多一张 represent=true。降级+插入/降级+提升
// 必须在同一事务里执行；部分唯一索引兜底并发竞态，撞键重试一次
type ProfileImageService struct {
	db           *gorm.DB
	imageRepo    repository.ProfileImageRepository
	memberRepo   repository.MemberRepository
	accessPolicy *AccessPolicy
	cache        *redis.Client
}

func NewProfileImageService(
	db *gorm.DB,
	imageRepo repository.ProfileImageRepository,
	memberRepo repository.MemberRepository,
	accessPolicy *AccessPolicy,
	cache *redis.Client,
) *ProfileImageService {
	return &ProfileImageService{db: db, imageRepo: imageRepo, memberRepo: memberRepo, accessPolicy: accessPolicy, cache: cache}
}

// SaveProfileImage 上传头像
// represent=true 时先降级当前代表图再插入，整体一个事务
func (s *ProfileImageService) SaveProfileImage(ctx context.Context, loginID string, req ProfileImageRequest) error {
	if _, err := s.memberRepo.FindByID(ctx, loginID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFoundMember
		}
		return err
	}

	img := &model.ProfileImage{
		ID:         uuid.New().String(),
		MemberID:   loginID,
		ImageURL:   req.ImageURL,
		OriginName: req.OriginName,
		FileName:   req.FileName,
		Represent:  req.Represent,
	}

	err := s.retryOnRepresentRace(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repo := s.imageRepo.WithTx(tx)
			if req.Represent {
				if err := repo.DemoteRepresent(ctx, loginID); err != nil {
					return err
				}
			}
			return repo.Insert(ctx, img)
		})
	})
	if err != nil {
		return err
	}

	s.invalidateRepresentCache(ctx, loginID)
	return nil
}

// UpdateRepresentImage 设置代表头像
// 目标必须是本人的图片；已是代表图时幂等
func (s *ProfileImageService) UpdateRepresentImage(ctx context.Context, loginID, imageID string) error {
	img, err := s.imageRepo.FindOwned(ctx, loginID, imageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFoundProfileImage
		}
		return err
	}
	if img.Represent {
		return nil
	}

	err = s.retryOnRepresentRace(func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repo := s.imageRepo.WithTx(tx)
			if err := repo.DemoteRepresent(ctx, loginID); err != nil {
				return err
			}
			return repo.UpdateRepresent(ctx, imageID, true)
		})
	})
	if err != nil {
		return err
	}

	s.invalidateRepresentCache(ctx, loginID)
	return nil
}

// DeleteProfileImage 删除头像
// 删除代表图后不自动提升，读取端按回退规则解析
func (s *ProfileImageService) DeleteProfileImage(ctx context.Context, loginID, imageID string) error {
	if _, err := s.imageRepo.FindOwned(ctx, loginID, imageID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFoundProfileImage
		}
		return err
	}

	if _, err := s.imageRepo.Delete(ctx, imageID); err != nil {
		return err
	}

	s.invalidateRepresentCache(ctx, loginID)
	return nil
}

// GetMyProfileImages 自己的头像列表
func (s *ProfileImageService) GetMyProfileImages(ctx context.Context, loginID string) ([]model.ProfileImage, error) {
	return s.imageRepo.FindByMember(ctx, loginID)
}

// GetProfileImages 他人头像列表，自查放行，否则走权限裁决
func (s *ProfileImageService) GetProfileImages(ctx context.Context, loginID, memberID string) ([]model.ProfileImage, error) {
	m, err := s.memberRepo.FindActiveByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundMember
		}
		return nil, err
	}
	if loginID != memberID {
		if err := s.accessPolicy.Check(ctx, loginID, memberID, m.Visibility); err != nil {
			return nil, err
		}
	}
	return s.imageRepo.FindByMember(ctx, memberID)
}

// GetRepresentImage 代表头像读取
// 代表图优先，没有则取最新一张，一张都没有返回 nil。cache-aside
func (s *ProfileImageService) GetRepresentImage(ctx context.Context, memberID string) (*RepresentImage, error) {
	key := representImageKey(memberID)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var out *RepresentImage
			if uErr := json.Unmarshal(data, &out); uErr == nil {
				return out, nil
			}
		}
	}

	out, err := s.resolveDisplayImage(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, mErr := json.Marshal(out); mErr == nil {
			if err := s.cache.Set(ctx, key, payload, representCacheTTL).Err(); err != nil {
				logger.Warn("cache represent image", zap.Error(err), zap.String("member", memberID))
			}
		}
	}
	return out, nil
}

func (s *ProfileImageService) resolveDisplayImage(ctx context.Context, memberID string) (*RepresentImage, error) {
	img, err := s.imageRepo.FindRepresentByMember(ctx, memberID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		img, err = s.imageRepo.FindNewestByMember(ctx, memberID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil
			}
			return nil, err
		}
	}
	return &RepresentImage{
		ProfileImageID: img.ID,
		ImageURL:       img.ImageURL,
		OriginName:     img.OriginName,
		FileName:       img.FileName,
	}, nil
}

// retryOnRepresentRace 部分唯一索引撞键说明并发对手刚提交，重试一次
func (s *ProfileImageService) retryOnRepresentRace(op func() error) error {
	err := op()
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = op()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateRepresentRace
		}
	}
	return err
}

func (s *ProfileImageService) invalidateRepresentCache(ctx context.Context, memberID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, representImageKey(memberID)).Err(); err != nil {
		logger.Warn("invalidate represent cache", zap.Error(err), zap.String("member", memberID))
	}
}
