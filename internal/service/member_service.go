package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
	"github.com/d60-Lab/sns-service/pkg/logger"
)

const (
	codeCharPool = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLength   = 10
	codeTTL      = 5 * time.Minute
)

// SignUpRequest 注册入参
type SignUpRequest struct {
	Name     string    `json:"name" binding:"required,max=50"`
	Password string    `json:"password" binding:"required,min=8,max=64"`
	Nickname string    `json:"nickname" binding:"required,max=30"`
	Email    string    `json:"email" binding:"required,email,max=50"`
	Birth    time.Time `json:"birth" binding:"required,notfuture"`
	Gender   string    `json:"gender" binding:"required,oneof=MALE FEMALE"`
}

// CancelDeleteRequest 取消注销入参，四项必须全部匹配
type CancelDeleteRequest struct {
	Name     string    `json:"name" binding:"required"`
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required"`
	Birth    time.Time `json:"birth" binding:"required,notfuture"`
}

// PasswordResetRequest 密码重置入参
type PasswordResetRequest struct {
	Name  string    `json:"name" binding:"required"`
	Email string    `json:"email" binding:"required,email"`
	Birth time.Time `json:"birth" binding:"required,notfuture"`
}

// MemberService 会员服务
// 注册、验证码、重复检查、资料修改、注销/取消注销
type MemberService struct {
	memberRepo repository.MemberRepository
	mailer     Mailer
	cache      *redis.Client
}

func NewMemberService(memberRepo repository.MemberRepository, mailer Mailer, cache *redis.Client) *MemberService {
	return &MemberService{memberRepo: memberRepo, mailer: mailer, cache: cache}
}

// SignUp 注册
// 邮箱/昵称重复先查后插，提交期唯一键冲突同样映射为冲突；
// 成功后往邮箱发验证码（Redis 存 5 分钟）
func (s *MemberService) SignUp(ctx context.Context, req SignUpRequest) (string, error) {
	if exists, err := s.memberRepo.ExistsByEmail(ctx, req.Email); err != nil {
		return "", err
	} else if exists {
		return "", ErrDuplicateEmail
	}

	if exists, err := s.memberRepo.ExistsByNickname(ctx, req.Nickname); err != nil {
		return "", err
	} else if exists {
		return "", ErrDuplicateNickname
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	m := &model.Member{
		ID:         uuid.New().String(),
		Name:       req.Name,
		Password:   string(hash),
		Nickname:   req.Nickname,
		Email:      req.Email,
		Birth:      req.Birth,
		Gender:     req.Gender,
		Role:       model.RoleGuest,
		Activation: model.ActivationActive,
		Visibility: model.VisibilityPublic,
	}
	if err := s.memberRepo.Create(ctx, m); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return "", ErrDuplicateMember
		}
		return "", err
	}

	if err := s.issueCode(ctx, req.Email); err != nil {
		// 注册已落库，验证码失败只告警，可走重发
		logger.Warn("issue verification code", zap.Error(err), zap.String("email", req.Email))
	}
	return m.ID, nil
}

// CheckCode 校验验证码，通过后 GUEST 升级为 MEMBER
func (s *MemberService) CheckCode(ctx context.Context, email, code string) error {
	m, err := s.memberRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidCode
		}
		return err
	}

	if m.Role != model.RoleGuest {
		return ErrAlreadyAuthenticated
	}

	saved, err := s.cache.Get(ctx, verifyCodeKey(email)).Result()
	if err != nil || saved == "" || saved != code {
		return ErrInvalidCode
	}

	m.Role = model.RoleMember
	return s.memberRepo.Save(ctx, m)
}

// ReSendCode 重发验证码
// 邮箱未注册也当成功处理，不暴露注册状态
func (s *MemberService) ReSendCode(ctx context.Context, email string) error {
	if _, err := s.memberRepo.FindActiveByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return s.issueCode(ctx, email)
}

// CheckDuplicateNickname 昵称重复检查
func (s *MemberService) CheckDuplicateNickname(ctx context.Context, nickname string) (bool, error) {
	return s.memberRepo.ExistsByNickname(ctx, nickname)
}

// CheckDuplicateEmail 邮箱重复检查
func (s *MemberService) CheckDuplicateEmail(ctx context.Context, email string) (bool, error) {
	return s.memberRepo.ExistsByEmail(ctx, email)
}

// UpdateNickname 修改昵称，重复为冲突
func (s *MemberService) UpdateNickname(ctx context.Context, memberID, nickname string) error {
	if exists, err := s.memberRepo.ExistsByNickname(ctx, nickname); err != nil {
		return err
	} else if exists {
		return ErrDuplicateNickname
	}

	m, err := s.findMember(ctx, memberID)
	if err != nil {
		return err
	}
	m.Nickname = nickname
	if err := s.memberRepo.Save(ctx, m); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateNickname
		}
		return err
	}
	return nil
}

// UpdatePassword 修改密码
func (s *MemberService) UpdatePassword(ctx context.Context, memberID, password string) error {
	m, err := s.findMember(ctx, memberID)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	m.Password = string(hash)
	return s.memberRepo.Save(ctx, m)
}

// UpdatePrivacy 修改资料公开范围
func (s *MemberService) UpdatePrivacy(ctx context.Context, memberID string, visibility model.Visibility) error {
	switch visibility {
	case model.VisibilityPublic, model.VisibilityFollowerOnly, model.VisibilityPrivate:
	default:
		return ErrInvalidRequest
	}

	m, err := s.findMember(ctx, memberID)
	if err != nil {
		return err
	}
	m.Visibility = visibility
	return s.memberRepo.Save(ctx, m)
}

// DeleteMember 注销：进入 WAITING_DELETED 并记录删除时间，不做物理删除
func (s *MemberService) DeleteMember(ctx context.Context, memberID string) error {
	m, err := s.findMember(ctx, memberID)
	if err != nil {
		return err
	}
	m.MarkDeleted(time.Now())
	return s.memberRepo.Save(ctx, m)
}

// CancelDeleteMember 取消注销
// 姓名、邮箱、生日、密码全部匹配才恢复 ACTIVE
func (s *MemberService) CancelDeleteMember(ctx context.Context, req CancelDeleteRequest) error {
	m, err := s.memberRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFoundMember
		}
		return err
	}

	if m.Activation != model.ActivationWaitingDeleted {
		return ErrInvalidRequest
	}
	if !m.Birth.Equal(req.Birth) {
		return ErrNotFoundMember
	}
	if !strings.EqualFold(m.Name, req.Name) {
		return ErrNotFoundMember
	}
	if bcrypt.CompareHashAndPassword([]byte(m.Password), []byte(req.Password)) != nil {
		return ErrInvalidCredentials
	}

	m.CancelDelete()
	return s.memberRepo.Save(ctx, m)
}

// ResetPassword 密码重置
// 按邮箱找 ACTIVE 会员并核对姓名生日，发临时密码
func (s *MemberService) ResetPassword(ctx context.Context, req PasswordResetRequest) error {
	m, err := s.memberRepo.FindActiveByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFoundMember
		}
		return err
	}

	if !m.Birth.Equal(req.Birth) {
		return ErrNotFoundMember
	}
	if !strings.EqualFold(m.Name, req.Name) {
		return ErrNotFoundMember
	}

	tempPassword, err := randomValue(codeLength)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	m.Password = string(hash)
	if err := s.memberRepo.Save(ctx, m); err != nil {
		return err
	}

	return s.mailer.SendTempPassword(ctx, req.Email, tempPassword)
}

func (s *MemberService) findMember(ctx context.Context, memberID string) (*model.Member, error) {
	m, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFoundMember
		}
		return nil, err
	}
	return m, nil
}

func (s *MemberService) issueCode(ctx context.Context, email string) error {
	code, err := randomValue(codeLength)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, verifyCodeKey(email), code, codeTTL).Err(); err != nil {
		return err
	}
	return s.mailer.SendCode(ctx, email, code)
}

func randomValue(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(codeCharPool)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeCharPool[n.Int64()])
	}
	return b.String(), nil
}
