package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
)

// MemberInfo 会员详情：基本信息 + 粉丝/关注数 + 代表头像
type MemberInfo struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Nickname       string          `json:"nickname"`
	Birth          time.Time       `json:"birth"`
	Gender         string          `json:"gender"`
	Visibility     string          `json:"visibility"`
	FollowerCount  int64           `json:"follower_count"`
	FollowingCount int64           `json:"following_count"`
	RepresentImage *RepresentImage `json:"represent_image,omitempty"`
}

// MemberQueryService 会员详情查询
type MemberQueryService struct {
	memberRepo   repository.MemberRepository
	followSvc    *FollowService
	imageSvc     *ProfileImageService
	accessPolicy *AccessPolicy
}

func NewMemberQueryService(
	memberRepo repository.MemberRepository,
	followSvc *FollowService,
	imageSvc *ProfileImageService,
	accessPolicy *AccessPolicy,
) *MemberQueryService {
	return &MemberQueryService{memberRepo: memberRepo, followSvc: followSvc, imageSvc: imageSvc, accessPolicy: accessPolicy}
}

// GetMyInfo 自己的详情，不走权限裁决
func (s *MemberQueryService) GetMyInfo(ctx context.Context, loginID string) (*MemberInfo, error) {
	m, err := s.memberRepo.FindByID(ctx, loginID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundMember
		}
		return nil, err
	}
	return s.buildInfo(ctx, m)
}

// GetMemberInfo 他人详情，自查放行，否则走权限裁决
func (s *MemberQueryService) GetMemberInfo(ctx context.Context, loginID, memberID string) (*MemberInfo, error) {
	if loginID == memberID {
		return s.GetMyInfo(ctx, loginID)
	}

	m, err := s.memberRepo.FindActiveByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundMember
		}
		return nil, err
	}

	if err := s.accessPolicy.Check(ctx, loginID, memberID, m.Visibility); err != nil {
		return nil, err
	}
	return s.buildInfo(ctx, m)
}

func (s *MemberQueryService) buildInfo(ctx context.Context, m *model.Member) (*MemberInfo, error) {
	followerCount, err := s.followSvc.GetFollowerCount(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	followingCount, err := s.followSvc.GetFollowingCount(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	representImage, err := s.imageSvc.GetRepresentImage(ctx, m.ID)
	if err != nil {
		return nil, err
	}

	return &MemberInfo{
		ID:             m.ID,
		Name:           m.Name,
		Nickname:       m.Nickname,
		Birth:          m.Birth,
		Gender:         m.Gender,
		Visibility:     string(m.Visibility),
		FollowerCount:  followerCount,
		FollowingCount: followingCount,
		RepresentImage: representImage,
	}, nil
}
