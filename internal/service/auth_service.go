package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
	"github.com/d60-Lab/sns-service/pkg/jwtauth"
	"github.com/d60-Lab/sns-service/pkg/logger"
)

// LoginRequest 登录入参
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenPair 访问令牌 + 刷新令牌
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthService 认证服务
// 登录校验账号状态，注销登录把访问令牌拉黑到过期为止
type AuthService struct {
	memberRepo repository.MemberRepository
	tokens     *jwtauth.Provider
	cache      *redis.Client
}

func NewAuthService(memberRepo repository.MemberRepository, tokens *jwtauth.Provider, cache *redis.Client) *AuthService {
	return &AuthService{memberRepo: memberRepo, tokens: tokens, cache: cache}
}

// Login 邮箱+密码登录
// SUSPENDED / WAITING_DELETED 分别返回对应错误，方便前端引导
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	member, err := s.memberRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	switch member.Activation {
	case model.ActivationSuspended:
		return nil, ErrSuspendedMember
	case model.ActivationWaitingDeleted:
		return nil, ErrWaitingDeletedMember
	case model.ActivationDeleted:
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(member.Password), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(ctx, member)
}

// Logout 注销登录
// 访问令牌按剩余有效期写入黑名单，刷新令牌直接删除
func (s *AuthService) Logout(ctx context.Context, memberID, accessToken string) error {
	exp, err := s.tokens.TokenExpiration(accessToken)
	if err == nil {
		if ttl := time.Until(exp); ttl > 0 {
			if err := s.cache.Set(ctx, jwtauth.HashToken(accessToken), "1", ttl).Err(); err != nil {
				logger.Warn("blacklist access token failed", zap.String("member_id", memberID), zap.Error(err))
			}
		}
	}
	if err := s.cache.Del(ctx, refreshTokenKey(memberID)).Err(); err != nil {
		logger.Warn("delete refresh token failed", zap.String("member_id", memberID), zap.Error(err))
	}
	return nil
}

// ReissueToken 用刷新令牌换新令牌对
// 必须与 Redis 中保存的副本一致，旧刷新令牌随即作废
func (s *AuthService) ReissueToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	stored, err := s.cache.Get(ctx, refreshTokenKey(claims.MemberID)).Result()
	if err != nil || stored != refreshToken {
		return nil, ErrInvalidToken
	}
	member, err := s.memberRepo.FindActiveByID(ctx, claims.MemberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return s.issueTokens(ctx, member)
}

// IsBlacklisted 访问令牌是否已被注销
func (s *AuthService) IsBlacklisted(ctx context.Context, accessToken string) bool {
	n, err := s.cache.Exists(ctx, jwtauth.HashToken(accessToken)).Result()
	if err != nil {
		logger.Warn("blacklist lookup failed", zap.Error(err))
		return false
	}
	return n > 0
}

func (s *AuthService) issueTokens(ctx context.Context, member *model.Member) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(member.ID, member.Email, string(member.Role))
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(member.ID, member.Email, string(member.Role))
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, refreshTokenKey(member.ID), refresh, s.tokens.RefreshTTL()).Err(); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
